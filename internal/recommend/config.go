package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	// ErrInvalidConfig marks configuration-shape problems found at load time.
	ErrInvalidConfig = errors.New("invalid recommendation config")
	// ErrMissingTemplate marks a winning rule without a usable narrative template.
	ErrMissingTemplate = errors.New("missing message template")
)

type questionsFile struct {
	Questions []QuestionDef `json:"questions"`
}

// LoadQuestionDefs reads and indexes the question definition file.
func LoadQuestionDefs(path string) (QuestionDefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question config: %w", err)
	}
	var file questionsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse question config: %w", err)
	}

	defs := make(QuestionDefs, len(file.Questions))
	for _, q := range file.Questions {
		if strings.TrimSpace(q.ID) == "" {
			return nil, fmt.Errorf("%w: question with empty id", ErrInvalidConfig)
		}
		if _, dup := defs[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidConfig, q.ID)
		}
		defs[q.ID] = q
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no questions defined", ErrInvalidConfig)
	}
	return defs, nil
}

// LoadRuleTable reads the recommendation rule file.
func LoadRuleTable(path string) (RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleTable{}, fmt.Errorf("read rule config: %w", err)
	}
	var table RuleTable
	if err := json.Unmarshal(data, &table); err != nil {
		return RuleTable{}, fmt.Errorf("parse rule config: %w", err)
	}
	return table, nil
}

// Validate checks the rule table shape eagerly so misconfiguration fails at
// startup instead of producing silently wrong recommendations. The returned
// warnings are non-fatal gaps worth logging.
func (t RuleTable) Validate(defs QuestionDefs) ([]string, error) {
	if len(t.DecisionPrecedence) == 0 {
		return nil, fmt.Errorf("%w: decision_precedence is empty", ErrInvalidConfig)
	}
	for _, name := range t.DecisionPrecedence {
		if _, ok := t.FinalRecommendation[name]; !ok {
			return nil, fmt.Errorf("%w: precedence rule %q has no final_recommendation entry", ErrInvalidConfig, name)
		}
	}

	fallback, ok := t.FinalRecommendation[FallbackRuleName]
	if !ok {
		return nil, fmt.Errorf("%w: fallback rule %q is missing", ErrInvalidConfig, FallbackRuleName)
	}
	if strings.TrimSpace(fallback.MessageTemplate) == "" {
		return nil, fmt.Errorf("%w: fallback rule %q has no message template", ErrInvalidConfig, FallbackRuleName)
	}

	if len(t.GreetingTemplates) == 0 {
		return nil, fmt.Errorf("%w: greeting_templates is empty", ErrInvalidConfig)
	}
	if len(t.PreferenceClauseTemplates["default"]) == 0 {
		return nil, fmt.Errorf("%w: preference_clause_templates.default is empty", ErrInvalidConfig)
	}

	if err := t.checkScoringCoverage(defs); err != nil {
		return nil, err
	}
	return t.lint(), nil
}

// checkScoringCoverage enforces the cross-file invariant: every condition
// category a question can trigger must be counted by the scoring map.
func (t RuleTable) checkScoringCoverage(defs QuestionDefs) error {
	scored := make(map[string]bool)
	for _, categories := range t.Scoring {
		for _, cat := range categories {
			scored[cat] = true
		}
	}

	var missing []string
	seen := make(map[string]bool)
	for _, q := range defs {
		for _, cat := range q.Triggers {
			if !scored[cat] && !seen[cat] {
				seen[cat] = true
				missing = append(missing, cat)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: trigger categories %v are not covered by the scoring map", ErrInvalidConfig, missing)
	}
	return nil
}

// lint reports rule references that answer derivation can never satisfy.
// The severe-cognitive-risk gate is known to be unreachable: no question
// trigger produces that flag, so only the "memory care" criteria text can
// select the memory-care outcome.
func (t RuleTable) lint() []string {
	warnings := []string{
		fmt.Sprintf("rule gate flag %q is referenced by the decision walk but never produced by answer derivation",
			FlagSevereCognitiveRisk),
	}
	for name, rule := range t.FinalRecommendation {
		if strings.TrimSpace(rule.Criteria) == "" {
			warnings = append(warnings, fmt.Sprintf("rule %q has empty criteria text and can never match", name))
		}
		if strings.Contains(strings.ToLower(rule.Criteria), "memory care") {
			warnings = append(warnings, fmt.Sprintf(
				"rule %q matches unconditionally: the decision walk treats any criteria mentioning memory care as an immediate match", name))
		}
	}
	sort.Strings(warnings)
	return warnings
}
