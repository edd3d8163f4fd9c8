package chunker

import "strings"

// TermRule annotates a Korean medical term with its canonical (usually
// English) name, rewriting occurrences of Korean to "Korean(Canonical)".
// Rules apply in slice order, so put longer terms before their substrings.
type TermRule struct {
	Korean    string
	Canonical string
}

// DefaultTermRules covers the drug names that recur in anti-cancer
// reimbursement notices: immune checkpoint inhibitors, antifungals and
// antivirals that show up in off-label review protocols.
var DefaultTermRules = []TermRule{
	{"펨브롤리주맙", "pembrolizumab"},
	{"키트루다", "Keytruda"},
	{"니볼루맙", "nivolumab"},
	{"옵디보", "Opdivo"},
	{"아테졸리주맙", "atezolizumab"},
	{"테센트릭", "Tecentriq"},
	{"듀발루맙", "durvalumab"},
	{"이미피니", "Imfinzi"},

	{"암포테리신B", "amphotericin B"},
	{"암비솜", "AmBisome"},
	{"보리코나졸", "voriconazole"},
	{"포사코나졸", "posaconazole"},

	{"간시클로비르", "ganciclovir"},
	{"GCV", "ganciclovir"},
	{"마리바비르", "maribavir"},
}

// NormalizeTerms applies the rule table to text. Rules whose canonical
// name equals the Korean term are skipped, annotating a term with itself
// adds nothing and repeated normalization would compound it.
func NormalizeTerms(text string, rules []TermRule) string {
	for _, r := range rules {
		if r.Korean == r.Canonical {
			continue
		}
		text = strings.ReplaceAll(text, r.Korean, r.Korean+"("+r.Canonical+")")
	}
	return text
}
