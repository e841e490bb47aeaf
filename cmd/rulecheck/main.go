package main

// Validate the questionnaire and rule configs without starting the server:
//   go run ./cmd/rulecheck -questions configs/questions.json -rules configs/rules.json

import (
	"flag"
	"fmt"
	"os"

	"careplan-backend/internal/recommend"
)

func main() {
	questionsPath := flag.String("questions", "configs/questions.json", "path to the questionnaire config")
	rulesPath := flag.String("rules", "configs/rules.json", "path to the rule table config")
	flag.Parse()

	questions, err := recommend.LoadQuestionDefs(*questionsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "questions: %v\n", err)
		os.Exit(1)
	}
	rules, err := recommend.LoadRuleTable(*rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rules: %v\n", err)
		os.Exit(1)
	}

	warnings, err := rules.Validate(questions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Printf("ok: %d questions, %d rules\n", len(questions), len(rules.DecisionPrecedence))
}
