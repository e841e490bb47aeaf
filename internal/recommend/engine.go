// Package recommend selects a care-type outcome for a planning session by
// deriving condition flags from questionnaire answers and walking an ordered,
// configuration-driven rule list until one matches.
package recommend

import (
	"fmt"
	"sort"
	"strings"
)

// Rand supplies the randomness behind narrative variation. *math/rand.Rand
// satisfies it; tests inject a fixed source for deterministic output.
type Rand interface {
	Intn(n int) int
}

const (
	reasonMobility  = "daily reliance on a wheelchair points to substantial mobility support needs"
	reasonCognition = "reported memory changes suggest some cognitive decline"

	defaultKeyFactors = "your overall situation and preferences"
)

// Fixed narrative values for placeholders the answers do not determine.
var fixedNarrativeValues = map[string]string{
	"timeline":       "over the coming months",
	"support_circle": "your family",
}

// Recommend derives flags and scores from the answers and selects an outcome
// by precedence order. It returns an error only for configuration problems
// (a winning rule without a usable message template); absent questions and
// absent rules are simply skipped.
func Recommend(answers AnswerSet, defs QuestionDefs, table RuleTable, rng Rand) (Result, error) {
	flags, reasons := deriveFlags(answers, defs)
	scores := scoreFlags(flags)

	ruleName, outcome := selectRule(table, flags, scores)
	rule, ok := table.FinalRecommendation[ruleName]
	if !ok || strings.TrimSpace(rule.MessageTemplate) == "" {
		return Result{}, fmt.Errorf("rule %q for outcome %q: %w", ruleName, outcome, ErrMissingTemplate)
	}

	narrative := fillTemplate(rule.MessageTemplate, table, reasons, rng)

	return Result{
		Outcome:   outcome,
		Flags:     sortedFlags(flags),
		Scores:    scores,
		Reasons:   reasons,
		Narrative: narrative,
	}, nil
}

// deriveFlags inspects each answered question's text for trigger substrings.
// Questions missing from either the answers or the definitions contribute
// nothing. Iteration is by sorted question ID so reasons are stable.
func deriveFlags(answers AnswerSet, defs QuestionDefs) (map[string]bool, []string) {
	flags := make(map[string]bool)
	var reasons []string

	ids := make([]string, 0, len(defs))
	for id := range defs {
		if _, answered := answers[id]; answered {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, text := range answerTexts(answers[id]) {
			lowered := strings.ToLower(text)
			if strings.Contains(lowered, "wheelchair") && !flags[FlagHighMobilityDependence] {
				flags[FlagHighMobilityDependence] = true
				reasons = append(reasons, reasonMobility)
			}
			if strings.Contains(lowered, "memory") && !flags[FlagModerateCognitiveDecline] {
				flags[FlagModerateCognitiveDecline] = true
				reasons = append(reasons, reasonCognition)
			}
		}
	}
	return flags, reasons
}

// answerTexts extracts the textual parts of a free-form answer value.
// Non-textual scalars never trigger flags.
func answerTexts(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func scoreFlags(flags map[string]bool) map[string]int {
	scores := map[string]int{
		OutcomeInHome:         0,
		OutcomeAssistedLiving: len(flags),
		OutcomeMemoryCare:     0,
	}
	for f := range flags {
		if strings.Contains(f, "mobility") {
			scores[OutcomeInHome]++
		}
	}
	if flags[FlagModerateCognitiveDecline] {
		scores[OutcomeMemoryCare] = 1
	}
	return scores
}

// selectRule walks the precedence list; the first satisfied rule wins
// regardless of score magnitude. Names without a table entry are skipped.
func selectRule(table RuleTable, flags map[string]bool, scores map[string]int) (string, string) {
	for _, name := range table.DecisionPrecedence {
		rule, ok := table.FinalRecommendation[name]
		if !ok {
			continue
		}
		criteria := strings.ToLower(rule.Criteria)
		if flags[FlagSevereCognitiveRisk] || strings.Contains(criteria, "memory care") {
			return name, OutcomeMemoryCare
		}
		if strings.Contains(criteria, "assisted living") && scores[OutcomeAssistedLiving] >= 2 {
			return name, OutcomeAssistedLiving
		}
	}

	outcome := OutcomeInHome
	if fb, ok := table.FinalRecommendation[FallbackRuleName]; ok && strings.TrimSpace(fb.Outcome) != "" {
		outcome = fb.Outcome
	}
	return FallbackRuleName, outcome
}

func fillTemplate(tpl string, table RuleTable, reasons []string, rng Rand) string {
	keyFactors := defaultKeyFactors
	if len(reasons) > 0 {
		keyFactors = strings.Join(reasons, "; ")
	}

	pairs := []string{
		"{greeting}", pick(table.GreetingTemplates, rng),
		"{key_factors}", keyFactors,
		"{preference_clause}", pick(table.PreferenceClauseTemplates["default"], rng),
	}
	for name, value := range fixedNarrativeValues {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

func pick(options []string, rng Rand) string {
	if len(options) == 0 {
		return ""
	}
	if rng == nil {
		return options[0]
	}
	return options[rng.Intn(len(options))]
}

func sortedFlags(flags map[string]bool) []string {
	out := make([]string, 0, len(flags))
	for f := range flags {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
