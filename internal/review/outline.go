package review

import (
	"errors"
	"fmt"
	"strings"

	"draftdesk/internal/providers"
)

// Theme is one planned body section of a detailed-mode review.
type Theme struct {
	Title string `json:"title"`
	Plan  string `json:"plan"`
}

// OutlinePlan is the schema-constrained result of the planning stage. Every
// later stage of a detailed run is driven by it, so a plan that fails
// validation aborts the run before any draft version exists.
type OutlinePlan struct {
	IntroductionPlan string  `json:"introduction_plan"`
	Themes           []Theme `json:"themes"`
	ConclusionPlan   string  `json:"conclusion_plan"`
}

type outlinePayload struct {
	IntroductionPlan *string `json:"introduction_plan"`
	Themes           *[]struct {
		Title *string `json:"title"`
		Plan  *string `json:"plan"`
	} `json:"themes"`
	ConclusionPlan *string `json:"conclusion_plan"`
}

// DecodeOutline parses and validates a raw outline response.
func DecodeOutline(raw string) (OutlinePlan, error) {
	var payload outlinePayload
	if err := providers.DecodeJSON(raw, &payload); err != nil {
		return OutlinePlan{}, err
	}
	if payload.IntroductionPlan == nil || payload.Themes == nil || payload.ConclusionPlan == nil {
		return OutlinePlan{}, errors.New("outline response violates schema: missing required field")
	}
	plan := OutlinePlan{
		IntroductionPlan: strings.TrimSpace(*payload.IntroductionPlan),
		ConclusionPlan:   strings.TrimSpace(*payload.ConclusionPlan),
	}
	for _, t := range *payload.Themes {
		if t.Title == nil || t.Plan == nil {
			return OutlinePlan{}, errors.New("outline response violates schema: missing theme field")
		}
		plan.Themes = append(plan.Themes, Theme{
			Title: strings.TrimSpace(*t.Title),
			Plan:  strings.TrimSpace(*t.Plan),
		})
	}
	if err := plan.Validate(); err != nil {
		return OutlinePlan{}, err
	}
	return plan, nil
}

func (p OutlinePlan) Validate() error {
	if p.IntroductionPlan == "" || p.ConclusionPlan == "" {
		return errors.New("outline response violates schema: empty plan")
	}
	if len(p.Themes) < 2 || len(p.Themes) > 3 {
		return fmt.Errorf("outline response violates schema: %d themes, want 2 or 3", len(p.Themes))
	}
	for _, t := range p.Themes {
		if t.Title == "" || t.Plan == "" {
			return errors.New("outline response violates schema: empty theme")
		}
	}
	return nil
}

// Render formats the plan as the plain-text draft version that opens a
// detailed run, so readers can watch what the later stages will follow.
func (p OutlinePlan) Render() string {
	var b strings.Builder
	b.WriteString("Outline\n\nIntroduction: ")
	b.WriteString(p.IntroductionPlan)
	for i, t := range p.Themes {
		fmt.Fprintf(&b, "\n\nTheme %d: %s\n%s", i+1, t.Title, t.Plan)
	}
	b.WriteString("\n\nConclusion: ")
	b.WriteString(p.ConclusionPlan)
	return b.String()
}
