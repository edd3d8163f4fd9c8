package retriever

import (
	"reflect"
	"testing"

	"hirarag/internal/domain"
)

func TestAnalyzeGeneralQuery(t *testing.T) {
	a := NewQueryAnalyzer(DefaultEntityRules())
	got := a.Analyze("최근 변경된 고시 내용 알려줘")
	if got.Type != domain.QueryGeneral {
		t.Errorf("type = %q, want general", got.Type)
	}
	if len(got.Drugs)+len(got.Diseases)+len(got.Symptoms)+len(got.Procedures) != 0 {
		t.Errorf("unexpected entities: %+v", got)
	}
}

func TestAnalyzeDrugQuery(t *testing.T) {
	a := NewQueryAnalyzer(DefaultEntityRules())
	got := a.Analyze("키트루다 급여기준 알려줘")
	if got.Type != domain.QueryDrug {
		t.Errorf("type = %q, want drug", got.Type)
	}
	if !reflect.DeepEqual(got.Drugs, []string{"키트루다"}) {
		t.Errorf("drugs = %v", got.Drugs)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"급여기준"}) {
		t.Errorf("keywords = %v", got.Keywords)
	}
}

// With several matching families the last one in evaluation order decides
// the type.
func TestAnalyzeLastFamilyWins(t *testing.T) {
	a := NewQueryAnalyzer(DefaultEntityRules())

	got := a.Analyze("키트루다 폐암 적응증")
	if got.Type != domain.QueryDisease {
		t.Errorf("type = %q, want disease", got.Type)
	}
	if len(got.Drugs) == 0 || len(got.Diseases) == 0 {
		t.Errorf("entities lost: %+v", got)
	}

	got = a.Analyze("폐암 수술 후 항암치료")
	if got.Type != domain.QueryProcedure {
		t.Errorf("type = %q, want procedure", got.Type)
	}
}

func TestAnalyzeSymptomQuery(t *testing.T) {
	a := NewQueryAnalyzer(DefaultEntityRules())
	got := a.Analyze("투여 후 발열과 구토가 있어요")
	if got.Type != domain.QuerySymptom {
		t.Errorf("type = %q, want symptom", got.Type)
	}
	if !reflect.DeepEqual(got.Symptoms, []string{"발열", "구토"}) {
		t.Errorf("symptoms = %v", got.Symptoms)
	}
}

func TestAnalyzeMedicalTerms(t *testing.T) {
	a := NewQueryAnalyzer(DefaultEntityRules())
	got := a.Analyze("면역항암제 부작용이 궁금해요")
	want := []string{"면역항암제", "항암제"}
	if !reflect.DeepEqual(got.MedicalTerms, want) {
		t.Errorf("medical terms = %v, want %v", got.MedicalTerms, want)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"부작용"}) {
		t.Errorf("keywords = %v", got.Keywords)
	}
}

func TestAnalyzeKeepsDuplicateMatches(t *testing.T) {
	a := NewQueryAnalyzer(DefaultEntityRules())
	got := a.Analyze("키트루다 그리고 키트루다")
	if len(got.Drugs) != 2 {
		t.Errorf("duplicates should be kept, got %v", got.Drugs)
	}
}
