package domain

// MatchKind tags a MatchOutcome
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchUnique
	MatchAmbiguous
)

func (k MatchKind) String() string {
	switch k {
	case MatchNone:
		return "none"
	case MatchUnique:
		return "unique"
	case MatchAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// MatchOutcome is the result of filtering a run listing for one descriptor
type MatchOutcome struct {
	Kind  MatchKind `json:"-"`
	Names []string  `json:"names"`
}

// ClassifyMatches filters a run listing and tags the result.
// Listing order is preserved in Names.
func ClassifyMatches(links []string, d DumpDescriptor, policy MatchPolicy) MatchOutcome {
	var names []string
	for _, link := range links {
		if d.MatchesArchive(link, policy) {
			names = append(names, link)
		}
	}

	switch len(names) {
	case 0:
		return MatchOutcome{Kind: MatchNone}
	case 1:
		return MatchOutcome{Kind: MatchUnique, Names: names}
	default:
		return MatchOutcome{Kind: MatchAmbiguous, Names: names}
	}
}

// Name returns the matched filename of a unique outcome, or ""
func (o MatchOutcome) Name() string {
	if o.Kind != MatchUnique {
		return ""
	}
	return o.Names[0]
}

// Err converts an ambiguous outcome into an AmbiguousDumpError
func (o MatchOutcome) Err(runURL string) error {
	if o.Kind != MatchAmbiguous {
		return nil
	}
	names := make([]string, len(o.Names))
	copy(names, o.Names)
	return &AmbiguousDumpError{RunURL: runURL, Names: names}
}
