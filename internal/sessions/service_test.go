package sessions

import (
	"context"
	"errors"
	"testing"

	"careplan-backend/internal/recommend"
)

type fixedRand struct{ n int }

func (r fixedRand) Intn(int) int { return r.n }

func testQuestions() recommend.QuestionDefs {
	return recommend.QuestionDefs{
		"mobility_aids": {
			ID:       "mobility_aids",
			Text:     "Any mobility aids?",
			Triggers: map[string]string{"wheelchair": "mobility"},
		},
		"memory_concerns": {
			ID:       "memory_concerns",
			Text:     "Any memory changes?",
			Triggers: map[string]string{"memory": "cognition"},
		},
	}
}

func testRules() recommend.RuleTable {
	return recommend.RuleTable{
		DecisionPrecedence: []string{"assisted_living_threshold", recommend.FallbackRuleName},
		FinalRecommendation: map[string]recommend.Rule{
			"assisted_living_threshold": {
				Criteria:        "Assisted Living threshold: two or more indicators",
				MessageTemplate: "{greeting} assisted: {key_factors}; {preference_clause}",
				Outcome:         recommend.OutcomeAssistedLiving,
			},
			recommend.FallbackRuleName: {
				Criteria:        "Default path",
				MessageTemplate: "{greeting} in-home: {key_factors}; {preference_clause}",
				Outcome:         recommend.OutcomeInHome,
			},
		},
		GreetingTemplates:         []string{"Hi."},
		PreferenceClauseTemplates: map[string][]string{"default": {"clause one"}},
		Scoring: map[string][]string{
			recommend.OutcomeInHome:         {"mobility"},
			recommend.OutcomeAssistedLiving: {"mobility", "cognition"},
			recommend.OutcomeMemoryCare:     {"cognition"},
		},
	}
}

func newTestService() *Service {
	svc := NewService(NewMemoryRepo(), testQuestions(), testRules())
	svc.Rand = fixedRand{}
	return svc
}

func TestServiceMergeFinancialsIsKeyByKey(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "guest:u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.MergeFinancials(ctx, "guest:u1", sess.ID, map[string]any{"inc_A": 2500, "care_total": 4800}); err != nil {
		t.Fatalf("MergeFinancials: %v", err)
	}
	merged, err := svc.MergeFinancials(ctx, "guest:u1", sess.ID, map[string]any{"care_total": 5000, "assets_common": 46000})
	if err != nil {
		t.Fatalf("MergeFinancials second: %v", err)
	}

	if merged.Financials["inc_A"] != 2500 {
		t.Fatalf("expected earlier field preserved, got %v", merged.Financials["inc_A"])
	}
	if merged.Financials["care_total"] != 5000 {
		t.Fatalf("expected later value to win, got %v", merged.Financials["care_total"])
	}
	if merged.Financials["assets_common"] != 46000 {
		t.Fatalf("expected new field merged, got %v", merged.Financials["assets_common"])
	}
}

func TestServiceRunRecommendationStoresResult(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "guest:u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.PutAnswers(ctx, "guest:u1", sess.ID, map[string]any{
		"mobility_aids":   "wheelchair",
		"memory_concerns": "memory is slipping",
	}); err != nil {
		t.Fatalf("PutAnswers: %v", err)
	}

	result, err := svc.RunRecommendation(ctx, "guest:u1", sess.ID)
	if err != nil {
		t.Fatalf("RunRecommendation: %v", err)
	}
	if result.Outcome != recommend.OutcomeAssistedLiving {
		t.Fatalf("expected assisted_living, got %q", result.Outcome)
	}

	stored, err := svc.Get(ctx, "guest:u1", sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Recommendation == nil || stored.Recommendation.Outcome != result.Outcome {
		t.Fatalf("expected recommendation persisted, got %+v", stored.Recommendation)
	}
}

func TestServiceRunRecommendationWithoutAnswers(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "guest:u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.RunRecommendation(ctx, "guest:u1", sess.ID); !errors.Is(err, ErrNoAnswers) {
		t.Fatalf("expected ErrNoAnswers, got %v", err)
	}
}

func TestServiceComputeTotalsNeverStored(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "guest:u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.MergeFinancials(ctx, "guest:u1", sess.ID, map[string]any{
		"inc_A":         2500,
		"care_total":    4800,
		"assets_common": 46000,
	}); err != nil {
		t.Fatalf("MergeFinancials: %v", err)
	}

	tot, err := svc.ComputeTotals(ctx, "guest:u1", sess.ID)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if tot.Gap != 2300 || tot.MonthsRunway != 20 {
		t.Fatalf("unexpected totals: %+v", tot)
	}

	again, err := svc.ComputeTotals(ctx, "guest:u1", sess.ID)
	if err != nil {
		t.Fatalf("ComputeTotals again: %v", err)
	}
	if again != tot {
		t.Fatalf("expected identical recomputation, got %+v vs %+v", again, tot)
	}
}

func TestServiceScopesSessionsToUser(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "guest:u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Get(ctx, "guest:u2", sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}
