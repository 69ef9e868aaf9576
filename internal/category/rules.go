package category

import (
	"regexp"
	"strings"

	"github.com/spinspot/server/internal/models"
)

// SurpriseIntent is the fallback rule applied when the caller gives no
// intent or one we do not recognize.
const SurpriseIntent = "surprise"

// Rule lists what a given intent must never recommend. The policy is a
// safety net behind the server-side filter, not the sole authority.
type Rule struct {
	ExcludedKeywords   []string
	ExcludedCategories []string
}

var rules = map[string]Rule{
	"food": {
		ExcludedKeywords: []string{
			"plumbing", "hardware", "laundry", "pharmacy", "dentist",
			"insurance", "funeral", "towing", "storage", "notary",
		},
		ExcludedCategories: []string{"services", "shopping", "lodging"},
	},
	"activity": {
		ExcludedKeywords: []string{
			"plumbing", "hardware", "laundry", "pharmacy", "dentist",
			"insurance", "funeral", "towing", "storage", "notary",
			"accountant", "lawyer",
		},
		ExcludedCategories: []string{"services", "office"},
	},
	"cafe": {
		ExcludedKeywords: []string{
			"plumbing", "hardware", "laundry", "pharmacy", "dentist",
			"insurance", "funeral", "towing", "bar", "nightclub",
		},
		ExcludedCategories: []string{"services", "nightlife"},
	},
	"nightlife": {
		ExcludedKeywords: []string{
			"plumbing", "hardware", "laundry", "pharmacy", "dentist",
			"insurance", "funeral", "towing", "daycare", "preschool",
		},
		ExcludedCategories: []string{"services", "education"},
	},
	SurpriseIntent: {
		ExcludedKeywords: []string{
			"plumbing", "hardware", "laundry", "pharmacy", "dentist",
			"insurance", "funeral", "towing", "storage", "notary",
		},
		ExcludedCategories: []string{"services"},
	},
}

var nonWordRegex = regexp.MustCompile(`[^\w]`)

// normalizeText removes whitespace and special characters, converts to lowercase
func normalizeText(text string) string {
	if text == "" {
		return ""
	}
	return nonWordRegex.ReplaceAllString(strings.ToLower(text), "")
}

// Policy validates candidate spots against the per-intent rule table.
type Policy struct {
	rules             map[string]Rule
	enforceCategories bool
}

// Option configures a Policy.
type Option func(*Policy)

// WithCategoryEnforcement toggles the excluded-category check. The upstream
// filter historically checked keywords only; category enforcement is on by
// default here and can be switched off for strict compatibility.
func WithCategoryEnforcement(on bool) Option {
	return func(p *Policy) { p.enforceCategories = on }
}

// NewPolicy builds a Policy over the built-in rule table.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		rules:             rules,
		enforceCategories: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Intents returns the known intent names, fallback included.
func (p *Policy) Intents() []string {
	names := make([]string, 0, len(p.rules))
	for name := range p.rules {
		names = append(names, name)
	}
	return names
}

// IsValid reports whether spot may be recommended for the given intent.
// An empty or unknown intent resolves to the surprise rule.
func (p *Policy) IsValid(spot models.Spot, intent string) bool {
	rule := p.resolve(intent)

	haystack := spot.Name
	if spot.Description != nil {
		haystack += " " + *spot.Description
	}
	haystack = normalizeText(haystack)

	for _, keyword := range rule.ExcludedKeywords {
		kw := normalizeText(keyword)
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, kw) {
			return false
		}
	}

	if p.enforceCategories && spot.Category != "" {
		cat := strings.ToLower(strings.TrimSpace(spot.Category))
		for _, excluded := range rule.ExcludedCategories {
			if cat == strings.ToLower(excluded) {
				return false
			}
		}
	}

	return true
}

func (p *Policy) resolve(intent string) Rule {
	if intent == "" {
		return p.rules[SurpriseIntent]
	}
	rule, ok := p.rules[strings.ToLower(strings.TrimSpace(intent))]
	if !ok {
		return p.rules[SurpriseIntent]
	}
	return rule
}
