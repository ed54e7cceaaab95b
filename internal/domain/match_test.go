package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMatches(t *testing.T) {
	d := DumpDescriptor{Language: "en", Type: TypeWiktionary}
	archive := "enwiktionary-NS0-20240601-ENTERPRISE-HTML.json.tar.gz"

	none := ClassifyMatches([]string{"../", "dewiktionary-NS0-x.tar.gz"}, d, MatchLoose)
	assert.Equal(t, MatchNone, none.Kind)
	assert.Empty(t, none.Names)
	assert.Equal(t, "", none.Name())
	assert.NoError(t, none.Err("run/"))

	unique := ClassifyMatches([]string{"../", archive, "enwiktionary-NS0-20240601-ENTERPRISE-STATS.json"}, d, MatchLoose)
	assert.Equal(t, MatchUnique, unique.Kind)
	assert.Equal(t, archive, unique.Name())
	assert.NoError(t, unique.Err("run/"))

	second := "enwiktionary-NS0-20240602-ENTERPRISE-HTML.json.tar.gz"
	ambiguous := ClassifyMatches([]string{second, archive}, d, MatchLoose)
	assert.Equal(t, MatchAmbiguous, ambiguous.Kind)
	assert.Equal(t, []string{second, archive}, ambiguous.Names)
	assert.Equal(t, "", ambiguous.Name())

	var ambErr *AmbiguousDumpError
	require.True(t, errors.As(ambiguous.Err("https://example.org/run/"), &ambErr))
	assert.Equal(t, []string{second, archive}, ambErr.Names)
	assert.Equal(t, "https://example.org/run/", ambErr.RunURL)
}

// Membership must be identical to the literal three-part predicate for every listing entry.
func TestClassifyMatches_PredicateEquivalence(t *testing.T) {
	listing := []string{
		"../",
		"enwiktionary-NS0-20240601-ENTERPRISE-HTML.json.tar.gz",
		"enwiktionary-NS0-20240601-ENTERPRISE-STATS.json",
		"enwiktionary-NS1-20240601-ENTERPRISE-HTML.json.tar.gz",
		"enwiktionary-NS10-20240601-ENTERPRISE-HTML.json.tar.gz",
		"enwiki-NS0-20240601-ENTERPRISE-HTML.json.tar.gz",
		"enwikibooks-NS0-20240601-ENTERPRISE-HTML.json.tar.gz",
		"enwikibooks-NS1-20240601-ENTERPRISE-HTML.json.tar.gz",
		"dewiki-NS0-20240601-ENTERPRISE-HTML.json.tar.gz",
		"frwiktionary-NS0-20240601-ENTERPRISE-HTML.json.tar.gz",
		"xNS0enwiki",
	}

	for _, lang := range []string{"en", "de", "fr"} {
		for _, typ := range DumpTypes {
			for _, ns := range []int{0, 1, 10, 14} {
				d := DumpDescriptor{Language: lang, Type: typ, Namespace: ns}

				var want []string
				for _, name := range listing {
					if strings.HasPrefix(name, lang+string(typ)) &&
						strings.Contains(name, d.NamespaceMarker()) &&
						!strings.Contains(name, "ENTERPRISE-STATS.json") {
						want = append(want, name)
					}
				}

				got := ClassifyMatches(listing, d, MatchLoose)
				assert.Equal(t, want, got.Names, d.String())
				switch len(want) {
				case 0:
					assert.Equal(t, MatchNone, got.Kind)
				case 1:
					assert.Equal(t, MatchUnique, got.Kind)
				default:
					assert.Equal(t, MatchAmbiguous, got.Kind)
				}
			}
		}
	}
}

func TestMatchKind_String(t *testing.T) {
	assert.Equal(t, "none", MatchNone.String())
	assert.Equal(t, "unique", MatchUnique.String())
	assert.Equal(t, "ambiguous", MatchAmbiguous.String())
	assert.Equal(t, "unknown", MatchKind(42).String())
}
