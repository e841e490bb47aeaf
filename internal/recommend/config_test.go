package recommend

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// The shipped configuration files must load, validate, and satisfy the
// cross-file invariant that every question trigger category is counted by the
// scoring map.
func TestShippedConfigFilesAreConsistent(t *testing.T) {
	root := filepath.Join("..", "..", "configs")

	defs, err := LoadQuestionDefs(filepath.Join(root, "questions.json"))
	if err != nil {
		t.Fatalf("LoadQuestionDefs: %v", err)
	}
	table, err := LoadRuleTable(filepath.Join(root, "rules.json"))
	if err != nil {
		t.Fatalf("LoadRuleTable: %v", err)
	}

	warnings, err := table.Validate(defs)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// The unreachable severe-cognitive-risk gate is a known gap that must be
	// surfaced, not silently accepted.
	found := false
	for _, w := range warnings {
		if strings.Contains(w, FlagSevereCognitiveRisk) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning about %s, got %v", FlagSevereCognitiveRisk, warnings)
	}
}

// The shipped criteria text must not trip the unconditional memory-care
// match, or every run would return the first precedence entry no matter
// what was answered.
func TestShippedConfigRecommendationsVaryByAnswers(t *testing.T) {
	root := filepath.Join("..", "..", "configs")

	defs, err := LoadQuestionDefs(filepath.Join(root, "questions.json"))
	if err != nil {
		t.Fatalf("LoadQuestionDefs: %v", err)
	}
	table, err := LoadRuleTable(filepath.Join(root, "rules.json"))
	if err != nil {
		t.Fatalf("LoadRuleTable: %v", err)
	}

	cases := []struct {
		name    string
		answers AnswerSet
		want    string
	}{
		{"empty answers", AnswerSet{}, OutcomeInHome},
		{"no trigger text", AnswerSet{"living_situation": "lives alone, daughter nearby"}, OutcomeInHome},
		{"mobility only", AnswerSet{"mobility_aids": "uses a wheelchair daily"}, OutcomeInHome},
		{"mobility and cognition", AnswerSet{
			"mobility_aids":   "uses a wheelchair daily",
			"memory_concerns": "memory changes noticed over the past year",
		}, OutcomeAssistedLiving},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Recommend(tc.answers, defs, table, fixedRand{})
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if res.Outcome != tc.want {
				t.Fatalf("outcome = %q, want %q", res.Outcome, tc.want)
			}
		})
	}
}

func TestValidateRejectsMissingPrecedenceEntry(t *testing.T) {
	table := testTable()
	table.DecisionPrecedence = append(table.DecisionPrecedence, "ghost_rule")

	_, err := table.Validate(testDefs())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsMissingFallback(t *testing.T) {
	table := testTable()
	delete(table.FinalRecommendation, FallbackRuleName)
	table.DecisionPrecedence = []string{"al_rule", "memory_rule"}

	_, err := table.Validate(testDefs())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsUnscoredTriggerCategory(t *testing.T) {
	defs := testDefs()
	defs["hearing"] = QuestionDef{
		ID:       "hearing",
		Text:     "Any trouble hearing?",
		Triggers: map[string]string{"hearing aid": "sensory"},
	}

	_, err := testTable().Validate(defs)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for unscored category, got %v", err)
	}
	if !strings.Contains(err.Error(), "sensory") {
		t.Fatalf("expected the offending category in the error, got %v", err)
	}
}

func TestValidateRejectsEmptyTemplates(t *testing.T) {
	table := testTable()
	fb := table.FinalRecommendation[FallbackRuleName]
	fb.MessageTemplate = "   "
	table.FinalRecommendation[FallbackRuleName] = fb

	_, err := table.Validate(testDefs())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
