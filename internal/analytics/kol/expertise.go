package kol

import (
	"sort"
	"strings"

	"social-insights/internal/models"
)

// GeneralDomain is the primary domain of an author with no keyword hits.
const GeneralDomain = "general"

// DefaultExpertiseKeywords are the built-in domain keyword sets.
func DefaultExpertiseKeywords() map[string][]string {
	return map[string][]string{
		"biotech": {
			"biotech", "biotechnology", "genomics", "crispr", "gene therapy", "clinical trial",
			"drug discovery", "protein", "molecular", "pharma", "antibody", "mrna",
		},
		"finance": {
			"finance", "investing", "investor", "stock", "stocks", "markets", "trading",
			"venture capital", "vc", "hedge fund", "ipo", "earnings", "valuation", "fintech",
		},
		"healthcare": {
			"healthcare", "health", "medical", "medicine", "physician", "doctor", "hospital",
			"patient", "clinical", "nurse", "public health", "fda",
		},
		"technology": {
			"technology", "tech", "software", "ai", "machine learning", "startup", "saas",
			"cloud", "developer", "engineering", "data science", "cybersecurity",
		},
	}
}

// countHits counts keyword occurrences in text. Single words match whole
// tokens; phrases match as substrings.
func countHits(text string, keywords []string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	tokens := map[string]int{}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '#')
	}) {
		tokens[strings.TrimPrefix(tok, "#")]++
	}

	hits := 0
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if strings.Contains(kw, " ") {
			hits += strings.Count(lower, kw)
		} else {
			hits += tokens[kw]
		}
	}
	return hits
}

// ClassifyExpertise scores each domain by keyword hits (bio 2x, posts 1x) and
// normalises to percentages. No hits yields all zeros and GeneralDomain.
func ClassifyExpertise(a models.AuthorProfile, keywords map[string][]string) (map[string]float64, string) {
	domains := make([]string, 0, len(keywords))
	for d := range keywords {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	raw := make(map[string]float64, len(domains))
	var total float64
	for _, d := range domains {
		score := float64(2 * countHits(a.Bio, keywords[d]))
		for _, t := range a.Tweets {
			score += float64(countHits(t.Text, keywords[d]))
		}
		raw[d] = score
		total += score
	}

	pct := make(map[string]float64, len(domains))
	primary, best := GeneralDomain, 0.0
	for _, d := range domains {
		if total == 0 {
			pct[d] = 0
			continue
		}
		pct[d] = raw[d] / total * 100
		if pct[d] > best {
			primary, best = d, pct[d]
		}
	}
	return pct, primary
}
