package services

import (
	"strings"

	"github.com/documint-labs/documint/internal/core/domain"
)

// classifierPriority breaks ties between domains with equal keyword
// scores. Earlier entries win.
var classifierPriority = []domain.Domain{
	domain.DomainTravel,
	domain.DomainCulinary,
	domain.DomainBusiness,
	domain.DomainResearch,
}

// domainKeywords maps each domain to the phrases that signal it in
// persona and task text.
var domainKeywords = map[domain.Domain][]string{
	domain.DomainTravel: {
		"travel", "trip", "vacation", "tourist", "planner",
		"itinerary", "destination",
	},
	domain.DomainResearch: {
		"research", "study", "analysis", "investigation",
		"academic", "paper",
	},
	domain.DomainBusiness: {
		"business", "professional", "hr", "compliance",
		"management", "form",
	},
	domain.DomainCulinary: {
		"food", "cooking", "recipe", "chef", "culinary",
		"menu", "ingredient",
	},
}

// ClassifyDomain derives the retrieval domain from persona and task
// text. Matching is case-insensitive substring scoring; the domain
// with the most keyword hits wins, ties resolved by a fixed priority
// order, and general is the fallback when nothing matches.
func ClassifyDomain(persona, task string) domain.Domain {
	combined := strings.ToLower(persona + " " + task)

	best := domain.DomainGeneral
	bestScore := 0

	for _, d := range classifierPriority {
		score := 0
		for _, kw := range domainKeywords[d] {
			if strings.Contains(combined, kw) {
				score++
			}
		}
		if score > bestScore {
			best = d
			bestScore = score
		}
	}

	return best
}
