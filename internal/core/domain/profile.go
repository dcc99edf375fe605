package domain

// Domain is a coarse query category used to select retrieval weighting.
// The enumeration is closed: every Domain has an entry in the profile
// table below, so behaviour per domain is statically reviewable.
type Domain string

const (
	// DomainTravel covers trip planning, itineraries and destinations.
	DomainTravel Domain = "travel"
	// DomainResearch covers academic and analytical work.
	DomainResearch Domain = "research"
	// DomainBusiness covers professional, HR and compliance material.
	DomainBusiness Domain = "business"
	// DomainCulinary covers food, recipes and menu planning.
	DomainCulinary Domain = "culinary"
	// DomainGeneral is the default when nothing else matches.
	DomainGeneral Domain = "general"
)

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	switch d {
	case DomainTravel, DomainResearch, DomainBusiness, DomainCulinary, DomainGeneral:
		return true
	}
	return false
}

// WeightProfile holds the score-fusion weighting for one domain.
// EmbeddingWeight is always 1 - BM25Weight.
type WeightProfile struct {
	// BM25Weight scales the normalised lexical score, in [0,1].
	BM25Weight float64

	// EmbeddingWeight scales the normalised vector-similarity score.
	EmbeddingWeight float64

	// ExpansionTerms are appended to (never replacing) the query tokens
	// before lexical scoring.
	ExpansionTerms []string
}

// profiles is the exhaustive Domain -> WeightProfile table. Culinary and
// travel lean on semantic similarity (recipe and itinerary vocabulary
// varies widely); research and business lean on exact terminology.
var profiles = map[Domain]WeightProfile{
	DomainTravel: {
		BM25Weight:      0.45,
		EmbeddingWeight: 0.55,
		ExpansionTerms:  []string{"itinerary", "destination", "accommodation", "sightseeing"},
	},
	DomainResearch: {
		BM25Weight:      0.60,
		EmbeddingWeight: 0.40,
		ExpansionTerms:  []string{"methodology", "results", "findings", "literature"},
	},
	DomainBusiness: {
		BM25Weight:      0.55,
		EmbeddingWeight: 0.45,
		ExpansionTerms:  []string{"policy", "procedure", "compliance", "requirements"},
	},
	DomainCulinary: {
		BM25Weight:      0.40,
		EmbeddingWeight: 0.60,
		ExpansionTerms:  []string{"ingredients", "recipe", "preparation", "serving"},
	},
	DomainGeneral: {
		BM25Weight:      0.50,
		EmbeddingWeight: 0.50,
	},
}

// Profile returns the weight profile for the domain. Unknown values
// fall back to the general profile.
func (d Domain) Profile() WeightProfile {
	if p, ok := profiles[d]; ok {
		return p
	}
	return profiles[DomainGeneral]
}
