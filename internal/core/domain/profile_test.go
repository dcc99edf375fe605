package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDomain_Valid tests the closed enumeration
func TestDomain_Valid(t *testing.T) {
	for _, d := range []Domain{DomainTravel, DomainResearch, DomainBusiness, DomainCulinary, DomainGeneral} {
		assert.True(t, d.Valid(), "domain %q should be valid", d)
	}
	assert.False(t, Domain("sports").Valid())
	assert.False(t, Domain("").Valid())
}

// TestDomain_Profile_WeightsSumToOne tests every profile's weights
func TestDomain_Profile_WeightsSumToOne(t *testing.T) {
	for _, d := range []Domain{DomainTravel, DomainResearch, DomainBusiness, DomainCulinary, DomainGeneral} {
		p := d.Profile()
		assert.InDelta(t, 1.0, p.BM25Weight+p.EmbeddingWeight, 1e-9, "domain %q", d)
		assert.GreaterOrEqual(t, p.BM25Weight, 0.0)
		assert.LessOrEqual(t, p.BM25Weight, 1.0)
	}
}

// TestDomain_Profile_CulinaryFavoursSemantic tests the culinary default weighting
func TestDomain_Profile_CulinaryFavoursSemantic(t *testing.T) {
	p := DomainCulinary.Profile()
	assert.Less(t, p.BM25Weight, 0.5)
}

// TestDomain_Profile_UnknownFallsBackToGeneral tests the fallback
func TestDomain_Profile_UnknownFallsBackToGeneral(t *testing.T) {
	assert.Equal(t, DomainGeneral.Profile(), Domain("nonsense").Profile())
}
