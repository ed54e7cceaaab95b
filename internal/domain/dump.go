package domain

import (
	"fmt"
	"strings"
)

// DumpType is the Wikimedia project family of a dump
type DumpType string

const (
	TypeWiki        DumpType = "wiki"
	TypeWiktionary  DumpType = "wiktionary"
	TypeWikibooks   DumpType = "wikibooks"
	TypeWikinews    DumpType = "wikinews"
	TypeWikisource  DumpType = "wikisource"
	TypeWikiquote   DumpType = "wikiquote"
	TypeWikiversity DumpType = "wikiversity"
	TypeWikivoyage  DumpType = "wikivoyage"
)

// DumpTypes lists every supported project family
var DumpTypes = []DumpType{
	TypeWiki,
	TypeWiktionary,
	TypeWikibooks,
	TypeWikinews,
	TypeWikisource,
	TypeWikiquote,
	TypeWikiversity,
	TypeWikivoyage,
}

// ValidateDumpType checks if a dump type is supported
func ValidateDumpType(t DumpType) bool {
	for _, known := range DumpTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseDumpType converts a string into a supported DumpType
func ParseDumpType(s string) (DumpType, error) {
	t := DumpType(strings.ToLower(strings.TrimSpace(s)))
	if !ValidateDumpType(t) {
		return "", fmt.Errorf("unsupported dump type: %q", s)
	}
	return t, nil
}

// Literal substrings of the upstream filename convention
const (
	statsMarker = "ENTERPRISE-STATS.json"
	partSuffix  = ".part"
)

// DumpDescriptor identifies exactly one archive to find
type DumpDescriptor struct {
	Language  string   `json:"language"`
	Type      DumpType `json:"type"`
	Namespace int      `json:"namespace"`
}

// Validate checks the descriptor fields
func (d DumpDescriptor) Validate() error {
	if d.Language == "" {
		return fmt.Errorf("language code is required")
	}
	if !ValidateDumpType(d.Type) {
		return fmt.Errorf("unsupported dump type: %q", d.Type)
	}
	if d.Namespace < 0 {
		return fmt.Errorf("namespace cannot be negative: %d", d.Namespace)
	}
	return nil
}

// Prefix is the filename prefix shared by all archives of this language and type
func (d DumpDescriptor) Prefix() string {
	return d.Language + string(d.Type)
}

// NamespaceMarker is the namespace substring embedded in archive names
func (d DumpDescriptor) NamespaceMarker() string {
	return fmt.Sprintf("NS%d", d.Namespace)
}

func (d DumpDescriptor) String() string {
	return fmt.Sprintf("%s/%s", d.Prefix(), d.NamespaceMarker())
}

// MatchPolicy controls how strictly archive names are compared to a descriptor
type MatchPolicy string

const (
	// MatchLoose is the upstream substring rule: NS1 also matches NS10, enwiki also matches enwikibooks.
	MatchLoose MatchPolicy = "loose"
	// MatchStrict anchors the name on "<lang><type>-NS<ns>-".
	MatchStrict MatchPolicy = "strict"
)

// MatchesArchive reports whether a listing entry names an archive of the descriptor
func (d DumpDescriptor) MatchesArchive(name string, policy MatchPolicy) bool {
	if strings.Contains(name, statsMarker) {
		return false
	}
	if policy == MatchStrict {
		return strings.HasPrefix(name, d.Prefix()+"-"+d.NamespaceMarker()+"-")
	}
	return strings.HasPrefix(name, d.Prefix()) && strings.Contains(name, d.NamespaceMarker())
}

// MatchesLocalFile is the fallback predicate applied to files already in the download directory
func (d DumpDescriptor) MatchesLocalFile(name string, policy MatchPolicy) bool {
	if strings.HasSuffix(name, partSuffix) {
		return false
	}
	return d.MatchesArchive(name, policy)
}

// PartialName is the name an archive carries while it is being transferred
func PartialName(name string) string {
	return name + partSuffix
}

// DumpSource records how a packed dump came to be on disk
type DumpSource string

const (
	SourceRemote  DumpSource = "remote"  // downloaded by this call
	SourcePresent DumpSource = "present" // matched remotely, already on disk
	SourceLocal   DumpSource = "local"   // not listed remotely, found by local fallback
)

// PackedDump is a downloaded archive on local storage
type PackedDump struct {
	Descriptor DumpDescriptor `json:"descriptor"`
	Path       string         `json:"path"`
	FileName   string         `json:"file_name"`
	Source     DumpSource     `json:"source"`
}

// ExtractMode selects how member content is delivered
type ExtractMode string

const (
	ModeLines ExtractMode = "lines"
	ModeBytes ExtractMode = "bytes"
)

// ValidateExtractMode checks if an extract mode is valid
func ValidateExtractMode(mode ExtractMode) bool {
	return mode == ModeLines || mode == ModeBytes
}
