package category

import (
	"testing"

	"github.com/spinspot/server/internal/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestExcludedKeywordRejects(t *testing.T) {
	p := NewPolicy()

	spot := models.Spot{Name: "ABC Plumbing Co", Category: "activity"}
	assert.False(t, p.IsValid(spot, "activity"), "keyword 'plumbing' must reject")

	assert.True(t, p.IsValid(models.Spot{Name: "Joe's Diner"}, "food"))
}

func TestKeywordMatchSpansNameAndDescription(t *testing.T) {
	p := NewPolicy()

	spot := models.Spot{
		Name:        "Corner Shop",
		Description: strPtr("Discount hardware and tools"),
	}
	assert.False(t, p.IsValid(spot, "food"))
}

func TestKeywordMatchIgnoresCaseAndPunctuation(t *testing.T) {
	p := NewPolicy()

	// Normalization strips spaces and symbols, so split spellings still match.
	spot := models.Spot{Name: "P.L.U.M.B.I.N.G. Bros"}
	assert.False(t, p.IsValid(spot, "food"))
}

func TestEmptyIntentUsesSurpriseRule(t *testing.T) {
	p := NewPolicy()

	spots := []models.Spot{
		{Name: "ABC Plumbing Co"},
		{Name: "Joe's Diner"},
		{Name: "Midnight Towing", Category: "services"},
	}
	for _, spot := range spots {
		assert.Equal(t, p.IsValid(spot, SurpriseIntent), p.IsValid(spot, ""),
			"empty intent must behave exactly like surprise for %q", spot.Name)
	}
}

func TestUnknownIntentUsesSurpriseRule(t *testing.T) {
	p := NewPolicy()

	spot := models.Spot{Name: "ABC Plumbing Co"}
	assert.Equal(t, p.IsValid(spot, SurpriseIntent), p.IsValid(spot, "snacks"))
}

func TestCategoryEnforcementConfigurable(t *testing.T) {
	spot := models.Spot{Name: "Quick Fix", Category: "services"}

	strict := NewPolicy()
	assert.False(t, strict.IsValid(spot, "food"), "excluded category must reject when enforced")

	legacy := NewPolicy(WithCategoryEnforcement(false))
	assert.True(t, legacy.IsValid(spot, "food"), "legacy mode checks keywords only")
}

func TestIntentsIncludesFallback(t *testing.T) {
	p := NewPolicy()
	assert.Contains(t, p.Intents(), SurpriseIntent)
}
