package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"hirarag/internal/port"
)

// Protocol is one off-label treatment protocol row parsed from a
// chemotherapy board attachment: a four-digit code followed by cancer
// type, regimen and target condition columns.
type Protocol struct {
	Code       string `json:"code"`
	CancerType string `json:"cancerType"`
	Treatment  string `json:"treatment"`
	Target     string `json:"target"`
}

// ScoredProtocol is a protocol with its relevance to a query. Cancer type
// matches weigh 3, treatment 2, target 1.
type ScoredProtocol struct {
	Protocol
	RelevanceScore int `json:"relevanceScore"`
}

// DecisionFactor is one piece of evidence for or against reimbursement.
type DecisionFactor struct {
	Type        string `json:"type"`   // "indication" or "reimbursement"
	Status      string `json:"status"` // 허가초과, 급여가능
	Description string `json:"description"`
	Impact      string `json:"impact"` // "positive" or "negative"
}

// CriteriaAnalysis is the intermediate result of analyzing a query against
// the protocol database.
type CriteriaAnalysis struct {
	Extracted MedicalInfo      `json:"extractedInfo"`
	Relevant  []ScoredProtocol `json:"relevantCriteria"`
	Factors   []DecisionFactor `json:"decisionFactors"`
}

// MedicalInfo is what could be extracted from the query text itself.
type MedicalInfo struct {
	CancerType     string `json:"cancerType,omitempty"`
	TreatmentStage string `json:"treatmentStage,omitempty"`
}

// Decision is the final reimbursement verdict.
type Decision struct {
	Decision       string           `json:"decision"`
	Confidence     float64          `json:"confidence"`
	Factors        []DecisionFactor `json:"factors"`
	Relevant       []ScoredProtocol `json:"relevantCriteria"`
	Recommendation string           `json:"recommendation"`
}

// StructuredResponse is the API shape of a criteria decision.
type StructuredResponse struct {
	Query      string  `json:"query"`
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"`
	Summary    struct {
		Positive int `json:"급여가능"`
		Negative int `json:"급여불가"`
	} `json:"summary"`
	Details struct {
		Indication    []DecisionFactor `json:"식약처허가사항"`
		Reimbursement []DecisionFactor `json:"HIRA급여기준"`
	} `json:"details"`
	Recommendation    string     `json:"recommendation"`
	RelevantProtocols []Protocol `json:"relevantProtocols"`
}

// Verdict labels. Every parsed off-label protocol carries both a positive
// reimbursement factor and a negative indication factor, so a query that
// matches any protocol lands on 조건부급여; the other verdicts exist for
// rule tables where one side is absent.
const (
	DecisionEligible    = "급여가능"
	DecisionIneligible  = "급여불가"
	DecisionConditional = "조건부급여"
	DecisionUnknown     = "판단불가"
)

const offLabelMarker = "허가초과"

// protocolLine matches a protocol table row. The columns of the source
// tables are tab separated but the extracted text may collapse tabs into
// runs of spaces, hence \s+ between tab-free columns.
var protocolLine = regexp.MustCompile(`(\d{4})\s+([^\t]+)\s+([^\t]+)\s+([^\t]+)`)

// queryTerms maps canonical medical terms to their synonyms. Scanned in
// order; the last term found in a query becomes its cancer type marker.
var queryTerms = []string{
	"B-ALL", "Ph(+)", "MRD", "blinatumomab",
	"induction", "CR", "consolidation",
	"급여", "비급여", "일의비급여", "허가초과용도",
}

// CriteriaAnalyzer turns the off-label protocol tables of the chemotherapy
// board into rule-based reimbursement verdicts.
type CriteriaAnalyzer struct {
	store port.MetadataStore
	log   zerolog.Logger

	protocols map[string]Protocol
}

func NewCriteriaAnalyzer(store port.MetadataStore, log zerolog.Logger) *CriteriaAnalyzer {
	a := &CriteriaAnalyzer{
		store:     store,
		log:       log,
		protocols: map[string]Protocol{},
	}
	a.Refresh()
	return a
}

// Refresh rebuilds the protocol database from the recorded files that
// mention the off-label marker. Call after a sync.
func (a *CriteriaAnalyzer) Refresh() {
	protocols := map[string]Protocol{}
	meta := a.store.Metadata()
	for _, file := range meta.Files {
		if file.TextContent == "" || !strings.Contains(file.TextContent, offLabelMarker) {
			continue
		}
		parseProtocols(file.TextContent, protocols)
	}
	a.protocols = protocols
	a.log.Info().Int("protocols", len(protocols)).Msg("criteria database refreshed")
}

func parseProtocols(content string, out map[string]Protocol) {
	for _, line := range strings.Split(content, "\n") {
		m := protocolLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out[m[1]] = Protocol{
			Code:       m[1],
			CancerType: strings.TrimSpace(m[2]),
			Treatment:  strings.TrimSpace(m[3]),
			Target:     strings.TrimSpace(m[4]),
		}
	}
}

// ProtocolCount reports the size of the protocol database.
func (a *CriteriaAnalyzer) ProtocolCount() int { return len(a.protocols) }

// AnalyzeQuery extracts medical info from the query, finds relevant
// protocols and derives decision factors.
func (a *CriteriaAnalyzer) AnalyzeQuery(query string) CriteriaAnalysis {
	analysis := CriteriaAnalysis{
		Extracted: extractMedicalInfo(query),
		Relevant:  a.searchRelevant(query),
	}
	analysis.Factors = decisionFactors(analysis.Relevant)
	return analysis
}

func extractMedicalInfo(query string) MedicalInfo {
	var info MedicalInfo
	for _, term := range queryTerms {
		if strings.Contains(query, term) {
			info.CancerType = term
		}
	}

	if strings.Contains(query, "induction") || strings.Contains(query, "유도") {
		info.TreatmentStage = "induction"
	}
	if strings.Contains(query, "CR") || strings.Contains(query, "관해") {
		info.TreatmentStage = "remission"
	}
	if strings.Contains(query, "MRD") || strings.Contains(query, "잔존") {
		info.TreatmentStage = "MRD_positive"
	}
	return info
}

func (a *CriteriaAnalyzer) searchRelevant(query string) []ScoredProtocol {
	queryLower := strings.ToLower(query)

	var relevant []ScoredProtocol
	for _, p := range a.protocols {
		score := 0
		if strings.Contains(queryLower, strings.ToLower(p.CancerType)) {
			score += 3
		}
		if strings.Contains(queryLower, strings.ToLower(p.Treatment)) {
			score += 2
		}
		if strings.Contains(queryLower, strings.ToLower(p.Target)) {
			score += 1
		}
		if score > 0 {
			relevant = append(relevant, ScoredProtocol{Protocol: p, RelevanceScore: score})
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		if relevant[i].RelevanceScore != relevant[j].RelevanceScore {
			return relevant[i].RelevanceScore > relevant[j].RelevanceScore
		}
		return relevant[i].Code < relevant[j].Code
	})
	return relevant
}

// decisionFactors derives evidence from the matched protocols. Off-label
// protocols contribute a negative indication factor (outside the approved
// indication) and a positive reimbursement factor (covered by the HIRA
// off-label review track), one pair per matched protocol.
func decisionFactors(relevant []ScoredProtocol) []DecisionFactor {
	var factors []DecisionFactor
	for range relevant {
		factors = append(factors,
			DecisionFactor{
				Type:        "indication",
				Status:      "허가초과",
				Description: "식약처 허가사항을 벗어난 사용",
				Impact:      "negative",
			},
			DecisionFactor{
				Type:        "reimbursement",
				Status:      "급여가능",
				Description: "HIRA 급여기준 충족",
				Impact:      "positive",
			},
		)
	}
	return factors
}

// GenerateDecision turns an analysis into a verdict with confidence.
func (a *CriteriaAnalyzer) GenerateDecision(analysis CriteriaAnalysis) Decision {
	positive, negative := 0, 0
	for _, f := range analysis.Factors {
		switch f.Impact {
		case "positive":
			positive++
		case "negative":
			negative++
		}
	}

	decision := DecisionUnknown
	confidence := 0.0
	switch {
	case positive > 0 && negative == 0:
		decision = DecisionEligible
		confidence = 0.8
	case negative > 0 && positive == 0:
		decision = DecisionIneligible
		confidence = 0.8
	case positive > 0 && negative > 0:
		decision = DecisionConditional
		confidence = 0.6
	}

	return Decision{
		Decision:       decision,
		Confidence:     confidence,
		Factors:        analysis.Factors,
		Relevant:       analysis.Relevant,
		Recommendation: recommendation(decision),
	}
}

func recommendation(decision string) string {
	switch decision {
	case DecisionEligible:
		return "해당 치료는 HIRA 급여기준을 충족하므로 급여 인정이 가능합니다."
	case DecisionIneligible:
		return "허가초과용도로 인해 급여 인정이 어렵습니다. 허가된 적응증 내에서 재검토가 필요합니다."
	case DecisionConditional:
		return "허가초과용도이지만 특정 조건 하에서 급여가 가능할 수 있습니다. 상세한 진료기록과 함께 심사 신청을 권장합니다."
	default:
		return "정확한 판단을 위해 추가적인 임상 정보가 필요합니다."
	}
}

// GenerateStructuredResponse assembles the API payload for a decision.
func (a *CriteriaAnalyzer) GenerateStructuredResponse(query string, d Decision) StructuredResponse {
	resp := StructuredResponse{
		Query:          query,
		Decision:       d.Decision,
		Confidence:     d.Confidence,
		Recommendation: d.Recommendation,
	}
	for _, f := range d.Factors {
		switch f.Impact {
		case "positive":
			resp.Summary.Positive++
		case "negative":
			resp.Summary.Negative++
		}
		switch f.Type {
		case "indication":
			resp.Details.Indication = append(resp.Details.Indication, f)
		case "reimbursement":
			resp.Details.Reimbursement = append(resp.Details.Reimbursement, f)
		}
	}
	for _, p := range d.Relevant {
		resp.RelevantProtocols = append(resp.RelevantProtocols, p.Protocol)
	}
	return resp
}

// Analyze is the one-call convenience used by the CLI and server.
func (a *CriteriaAnalyzer) Analyze(query string) StructuredResponse {
	analysis := a.AnalyzeQuery(query)
	decision := a.GenerateDecision(analysis)
	return a.GenerateStructuredResponse(query, decision)
}
