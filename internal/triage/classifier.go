// README: Urgency triage contract and response parsing.
package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAssessment = errors.New("invalid triage assessment")

// Input is the free text a citizen submitted with a report.
type Input struct {
	CrimeType   string
	Title       string
	Description string
}

// Assessment is the classifier verdict. Priority is one of low, medium, high.
type Assessment struct {
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// Classifier suggests a priority for a new report.
type Classifier interface {
	Classify(ctx context.Context, in Input) (Assessment, error)
}

// text returns the classifier input, "Missing Info" when nothing was supplied.
func (in Input) text() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{in.CrimeType, in.Title, in.Description} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Missing Info"
	}
	return strings.Join(parts, "\n")
}

func parseAssessment(raw string) (Assessment, error) {
	cleaned := cleanJSONString(raw)
	var a Assessment
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return Assessment{}, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleaned)
	}
	a.Priority = strings.ToLower(strings.TrimSpace(a.Priority))
	switch a.Priority {
	case "low", "medium", "high":
		return a, nil
	}
	return Assessment{}, fmt.Errorf("%w: priority %q", ErrInvalidAssessment, a.Priority)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
