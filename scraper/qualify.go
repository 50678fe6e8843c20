package scraper

import "strings"

// industryKeywords maps each supported industry tag to the phrases that
// mark a member card as belonging to that trade.
var industryKeywords = map[string][]string{
	"plumbing": {
		"plumber", "plumbing", "pipe repair", "drain", "water heater",
		"sewer", "leak repair", "rooter",
	},
	"hvac": {
		"hvac", "heating", "cooling", "air conditioning", "furnace",
		"ac repair", "refrigeration", "ventilation",
	},
	"electrical": {
		"electrician", "electrical", "wiring", "electric repair",
		"panel upgrade", "lighting install",
	},
	"remodeling": {
		"remodel", "renovation", "general contractor", "kitchen remodel",
		"bathroom remodel", "home improvement", "construction",
	},
	"landscaping": {
		"landscaping", "landscaper", "lawn care", "lawn service",
		"tree service", "mowing", "irrigation", "hardscape",
	},
	"power_washing": {
		"power washing", "pressure washing", "powerwash", "pressurewash",
		"soft wash", "exterior cleaning",
	},
}

// businessIndicators are generic phrases that show up on member cards of
// people running a business regardless of trade.
var businessIndicators = []string{
	"owner", "founder", "ceo", "works at", "self-employed", "llc", "inc",
	"services", "company", "business", "contractor", "handyman",
}

// Industries returns the supported industry tags in a stable order.
func Industries() []string {
	return []string{
		"plumbing", "hvac", "electrical", "remodeling", "landscaping",
		"power_washing",
	}
}

// ValidIndustry reports whether the tag is one the matcher knows about.
func ValidIndustry(tag string) bool {
	_, ok := industryKeywords[tag]
	return ok
}

// MatchesIndustry reports whether the text hits a keyword for the industry.
func MatchesIndustry(text, industry string) bool {
	lower := strings.ToLower(text)
	for _, kw := range industryKeywords[industry] {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// QualifiedProspect decides whether a member card is worth a deep scrape:
// either the card mentions the target industry or it carries a generic
// business indicator.
func QualifiedProspect(text, industry string) bool {
	if MatchesIndustry(text, industry) {
		return true
	}
	lower := strings.ToLower(text)
	for _, ind := range businessIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}
