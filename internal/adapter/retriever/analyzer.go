package retriever

import (
	"regexp"
	"strings"

	"hirarag/internal/domain"
)

// EntityRules holds the pattern tables the query analyzer runs against a
// search query. The families are evaluated in fixed order (drug, disease,
// symptom, procedure) and each matching family overwrites the query type,
// so the last family with a match decides it.
type EntityRules struct {
	Drugs      []*regexp.Regexp
	Diseases   []*regexp.Regexp
	Symptoms   []*regexp.Regexp
	Procedures []*regexp.Regexp

	// Keywords and MedicalTerms are matched by plain substring containment.
	Keywords     []string
	MedicalTerms []string
}

// DefaultEntityRules covers the vocabulary of anti-cancer reimbursement
// queries: monoclonal antibody names, cancer types, common adverse events
// and treatment modalities.
func DefaultEntityRules() EntityRules {
	return EntityRules{
		Drugs: []*regexp.Regexp{
			regexp.MustCompile(`[가-힣]+주맙|키트루다|옵디보|테센트릭|이미피니`),
			regexp.MustCompile(`[A-Z][a-z]+umab|mab$`),
		},
		Diseases: []*regexp.Regexp{
			regexp.MustCompile(`[가-힣]+암|폐암|유방암|대장암|위암|간암|췌장암|전립선암|난소암`),
			regexp.MustCompile(`[가-힣]+증후군|증후군`),
		},
		Symptoms: []*regexp.Regexp{
			regexp.MustCompile(`발열|오한|구역|구토|설사|변비|피로|통증|부종|발진`),
		},
		Procedures: []*regexp.Regexp{
			regexp.MustCompile(`수술|절제술|절개술|화학요법|방사선치료|면역치료|항암치료`),
		},
		Keywords:     []string{"급여기준", "적응증", "용량", "투여방법", "주의사항", "부작용", "상호작용"},
		MedicalTerms: []string{"면역항암제", "항암제", "화학요법", "방사선치료", "면역치료"},
	}
}

// QueryAnalyzer classifies queries and extracts the entities used for
// re-ranking bonuses.
type QueryAnalyzer struct {
	rules EntityRules
}

func NewQueryAnalyzer(rules EntityRules) *QueryAnalyzer {
	return &QueryAnalyzer{rules: rules}
}

// Analyze extracts all entity matches from the query. Matches are kept
// with duplicates, so a query naming a drug twice earns the bonus twice.
func (a *QueryAnalyzer) Analyze(query string) domain.QueryAnalysis {
	analysis := domain.QueryAnalysis{Type: domain.QueryGeneral}

	analysis.Drugs = matchAll(a.rules.Drugs, query)
	if len(analysis.Drugs) > 0 {
		analysis.Type = domain.QueryDrug
	}
	analysis.Diseases = matchAll(a.rules.Diseases, query)
	if len(analysis.Diseases) > 0 {
		analysis.Type = domain.QueryDisease
	}
	analysis.Symptoms = matchAll(a.rules.Symptoms, query)
	if len(analysis.Symptoms) > 0 {
		analysis.Type = domain.QuerySymptom
	}
	analysis.Procedures = matchAll(a.rules.Procedures, query)
	if len(analysis.Procedures) > 0 {
		analysis.Type = domain.QueryProcedure
	}

	analysis.Keywords = containedIn(query, a.rules.Keywords)
	analysis.MedicalTerms = containedIn(query, a.rules.MedicalTerms)

	return analysis
}

func matchAll(patterns []*regexp.Regexp, query string) []string {
	var out []string
	for _, p := range patterns {
		out = append(out, p.FindAllString(query, -1)...)
	}
	return out
}

func containedIn(query string, terms []string) []string {
	var out []string
	for _, t := range terms {
		if strings.Contains(query, t) {
			out = append(out, t)
		}
	}
	return out
}
