package recommend

import (
	"errors"
	"reflect"
	"testing"
)

type fixedRand struct{ n int }

func (r fixedRand) Intn(n int) int { return r.n % n }

func testDefs() QuestionDefs {
	return QuestionDefs{
		"mobility_aids": {
			ID:       "mobility_aids",
			Text:     "Do you use any mobility aids?",
			Triggers: map[string]string{"wheelchair": "mobility"},
		},
		"memory_concerns": {
			ID:       "memory_concerns",
			Text:     "Any memory changes lately?",
			Triggers: map[string]string{"memory": "cognition"},
		},
	}
}

func testTable() RuleTable {
	return RuleTable{
		DecisionPrecedence: []string{"al_rule", "memory_rule", FallbackRuleName},
		FinalRecommendation: map[string]Rule{
			"al_rule": {
				Criteria:        "Assisted Living threshold",
				MessageTemplate: "{greeting} assisted: {key_factors}; {preference_clause}",
				Outcome:         OutcomeAssistedLiving,
			},
			"memory_rule": {
				Criteria:        "Memory Care eligibility",
				MessageTemplate: "{greeting} memory: {key_factors}; {preference_clause}",
				Outcome:         OutcomeMemoryCare,
			},
			FallbackRuleName: {
				Criteria:        "Default path",
				MessageTemplate: "{greeting} in-home: {key_factors}; {preference_clause}",
				Outcome:         OutcomeInHome,
			},
		},
		GreetingTemplates:         []string{"Hello.", "Hi."},
		PreferenceClauseTemplates: map[string][]string{"default": {"clause one", "clause two"}},
		Scoring: map[string][]string{
			OutcomeInHome:         {"mobility"},
			OutcomeAssistedLiving: {"mobility", "cognition"},
			OutcomeMemoryCare:     {"cognition"},
		},
	}
}

func TestRecommendWheelchairAnswerDerivesMobilityFlag(t *testing.T) {
	answers := AnswerSet{"mobility_aids": "uses a wheelchair daily"}

	// No memory-care rule in precedence so the mobility path is observable.
	table := testTable()
	table.DecisionPrecedence = []string{"al_rule", FallbackRuleName}

	res, err := Recommend(answers, testDefs(), table, fixedRand{})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if !contains(res.Flags, FlagHighMobilityDependence) {
		t.Fatalf("expected %s flag, got %v", FlagHighMobilityDependence, res.Flags)
	}
	if !contains(res.Reasons, reasonMobility) {
		t.Fatalf("expected mobility reason, got %v", res.Reasons)
	}
	if res.Scores[OutcomeInHome] < 1 {
		t.Fatalf("expected in_home score >= 1, got %d", res.Scores[OutcomeInHome])
	}
	// One flag only: assisted-living threshold not met, fallback wins.
	if res.Outcome != OutcomeInHome {
		t.Fatalf("expected in_home fallback, got %s", res.Outcome)
	}
}

func TestRecommendSevereCognitiveRiskWinsByPrecedence(t *testing.T) {
	// Memory rule listed after the assisted-living rule: with the severe
	// flag set, the first defined precedence entry still resolves to
	// memory care.
	table := RuleTable{
		DecisionPrecedence: []string{"memory_rule", "al_rule", FallbackRuleName},
		FinalRecommendation: map[string]Rule{
			"memory_rule": {
				Criteria:        "Memory Care eligibility",
				MessageTemplate: "memory template {key_factors}",
			},
			"al_rule": {
				Criteria:        "Assisted Living threshold",
				MessageTemplate: "al template",
			},
			FallbackRuleName: {MessageTemplate: "fallback"},
		},
		GreetingTemplates:         []string{"Hello."},
		PreferenceClauseTemplates: map[string][]string{"default": {"clause"}},
	}

	flags := map[string]bool{FlagSevereCognitiveRisk: true}
	name, outcome := selectRule(table, flags, scoreFlags(flags))
	if outcome != OutcomeMemoryCare {
		t.Fatalf("expected memory_care, got %s", outcome)
	}
	if name != "memory_rule" {
		t.Fatalf("expected first precedence rule to win, got %s", name)
	}
}

func TestRecommendAssistedLivingThreshold(t *testing.T) {
	answers := AnswerSet{
		"mobility_aids":   "uses a wheelchair daily",
		"memory_concerns": "memory slips most mornings",
	}
	table := testTable() // al_rule first in precedence

	res, err := Recommend(answers, testDefs(), table, fixedRand{})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.Outcome != OutcomeAssistedLiving {
		t.Fatalf("expected assisted_living with two flags, got %s", res.Outcome)
	}
	if res.Scores[OutcomeAssistedLiving] != 2 {
		t.Fatalf("expected assisted_living score 2, got %d", res.Scores[OutcomeAssistedLiving])
	}
	if res.Scores[OutcomeMemoryCare] != 1 {
		t.Fatalf("expected memory_care score 1, got %d", res.Scores[OutcomeMemoryCare])
	}
}

func TestRecommendMissingDefinitionsAreSkipped(t *testing.T) {
	answers := AnswerSet{
		"unknown_question": "uses a wheelchair daily",
	}
	table := testTable()
	table.DecisionPrecedence = []string{"al_rule", "not_defined", FallbackRuleName}

	res, err := Recommend(answers, testDefs(), table, fixedRand{})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.Flags) != 0 {
		t.Fatalf("expected no flags for unknown question, got %v", res.Flags)
	}
	if res.Outcome != OutcomeInHome {
		t.Fatalf("expected fallback outcome, got %s", res.Outcome)
	}
}

func TestRecommendMissingTemplateIsAnError(t *testing.T) {
	table := testTable()
	fb := table.FinalRecommendation[FallbackRuleName]
	fb.MessageTemplate = ""
	table.FinalRecommendation[FallbackRuleName] = fb
	// The fallback's "Default path" criteria matches nothing, so the walk
	// lands on the fallback with an empty template.
	table.DecisionPrecedence = []string{FallbackRuleName}

	_, err := Recommend(AnswerSet{}, testDefs(), table, fixedRand{})
	if !errors.Is(err, ErrMissingTemplate) {
		t.Fatalf("expected ErrMissingTemplate, got %v", err)
	}
}

func TestRecommendNarrativeIsDeterministicUnderFixedRand(t *testing.T) {
	answers := AnswerSet{"mobility_aids": []any{"walker", "wheelchair for longer trips"}}
	table := testTable()
	table.DecisionPrecedence = []string{FallbackRuleName}

	first, err := Recommend(answers, testDefs(), table, fixedRand{n: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	second, err := Recommend(answers, testDefs(), table, fixedRand{n: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected deterministic result, got %+v then %+v", first, second)
	}
	if first.Narrative != "Hi. in-home: "+reasonMobility+"; clause two" {
		t.Fatalf("unexpected narrative: %q", first.Narrative)
	}
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
