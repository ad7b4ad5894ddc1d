package review

import (
	"strings"
	"testing"

	"draftdesk/internal/models"
)

func TestDecodeOutlineValid(t *testing.T) {
	raw := `{"introduction_plan":"set up the field","themes":[{"title":"Methods","plan":"compare methods"},{"title":"Results","plan":"contrast findings"}],"conclusion_plan":"synthesize"}`
	plan, err := DecodeOutline(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(plan.Themes) != 2 || plan.Themes[0].Title != "Methods" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestDecodeOutlineMissingFieldFails(t *testing.T) {
	raw := `{"introduction_plan":"x","themes":[{"title":"A","plan":"p"},{"title":"B","plan":"p"}]}`
	if _, err := DecodeOutline(raw); err == nil {
		t.Fatal("missing conclusion_plan should fail validation")
	}
}

func TestDecodeOutlineThemeCountBounds(t *testing.T) {
	one := `{"introduction_plan":"x","themes":[{"title":"A","plan":"p"}],"conclusion_plan":"y"}`
	if _, err := DecodeOutline(one); err == nil {
		t.Fatal("a single theme should fail validation")
	}
	four := `{"introduction_plan":"x","themes":[{"title":"A","plan":"p"},{"title":"B","plan":"p"},{"title":"C","plan":"p"},{"title":"D","plan":"p"}],"conclusion_plan":"y"}`
	if _, err := DecodeOutline(four); err == nil {
		t.Fatal("four themes should fail validation")
	}
}

func TestOutlineRenderMentionsEveryTheme(t *testing.T) {
	plan := OutlinePlan{
		IntroductionPlan: "intro plan",
		Themes:           []Theme{{Title: "Alpha", Plan: "a"}, {Title: "Beta", Plan: "b"}},
		ConclusionPlan:   "wrap up",
	}
	text := plan.Render()
	for _, want := range []string{"intro plan", "Theme 1: Alpha", "Theme 2: Beta", "wrap up"} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendered outline missing %q:\n%s", want, text)
		}
	}
}

func TestThemePromptInstructsSourceComparison(t *testing.T) {
	p := ThemePrompt("attention", "sources", "intro so far", "Methods", "compare methods")
	for _, want := range []string{"Compare, contrast, and evaluate", "(Author, Year)", "Methods"} {
		if !strings.Contains(p, want) {
			t.Fatalf("theme prompt missing %q:\n%s", want, p)
		}
	}
}

func TestKnowledgeContextKeepsStoreOrder(t *testing.T) {
	docs := []models.Document{
		{Name: "b.pdf", Author: "Brown", Year: "2021", Summary: "second alphabetically, first ingested"},
		{Name: "a.pdf", Author: "Adams", Year: "2019", Summary: "first alphabetically"},
	}
	out := KnowledgeContext(docs)
	if strings.Index(out, "Brown") > strings.Index(out, "Adams") {
		t.Fatal("context must keep store order, not sort")
	}
	if !strings.Contains(out, "Name: a.pdf") || !strings.Contains(out, "Year: 2021") {
		t.Fatalf("context missing fields:\n%s", out)
	}
}
