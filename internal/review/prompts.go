package review

import "fmt"

const citationRule = `Cite sources in APA style using the exact in-text form "(Author, Year)" with the author surname and year given for each source. Only cite sources from the provided list.`

const concisePromptTemplate = `You are writing a literature review on the topic: %s

Below are the sources you may draw on:

%s

Write a single cohesive paragraph that compares and contrasts the findings
across the sources, highlighting agreements, tensions, and gaps relevant to
the topic.
%s
Write plain prose paragraphs only. Do not use markdown, headings, or lists.`

// ConcisePrompt builds the one-shot review prompt for concise mode.
func ConcisePrompt(topic, knowledgeContext string) string {
	return fmt.Sprintf(concisePromptTemplate, topic, knowledgeContext, citationRule)
}

const outlinePromptTemplate = `You are planning a literature review on the topic: %s

Below are the sources you may draw on:

%s

Produce a writing plan. Output STRICT JSON with this schema, all fields
required:
{
  "introduction_plan": "what the introduction should establish",
  "themes": [
    {"title": "theme title", "plan": "what this theme section should argue and which sources it draws on"}
  ],
  "conclusion_plan": "what the conclusion should synthesize"
}

Use between two and three themes. Never omit a field and never add fields.`

// OutlinePrompt builds the planning prompt that opens a detailed-mode run.
func OutlinePrompt(topic, knowledgeContext string) string {
	return fmt.Sprintf(outlinePromptTemplate, topic, knowledgeContext)
}

const introductionPromptTemplate = `You are writing a literature review on the topic: %s

Sources:

%s

Plan for the introduction: %s

Write the introduction section now. %s
Write plain prose paragraphs only, with no heading and no markup.`

func IntroductionPrompt(topic, knowledgeContext, plan string) string {
	return fmt.Sprintf(introductionPromptTemplate, topic, knowledgeContext, plan, citationRule)
}

const themePromptTemplate = `You are writing a literature review on the topic: %s

Sources:

%s

The review so far:

%s

Next section theme: %s
Plan for this section: %s

Write the body of this section now, continuing naturally from the text so
far. Compare, contrast, and evaluate the sources relevant to this theme. %s
Write plain prose paragraphs only, with no heading and no markup.`

func ThemePrompt(topic, knowledgeContext, draftSoFar, title, plan string) string {
	return fmt.Sprintf(themePromptTemplate, topic, knowledgeContext, draftSoFar, title, plan, citationRule)
}

const conclusionPromptTemplate = `You are writing a literature review on the topic: %s

Sources:

%s

The review so far:

%s

Plan for the conclusion: %s

Write the concluding section now. %s
Write plain prose paragraphs only, with no heading and no markup.`

func ConclusionPrompt(topic, knowledgeContext, draftSoFar, plan string) string {
	return fmt.Sprintf(conclusionPromptTemplate, topic, knowledgeContext, draftSoFar, plan, citationRule)
}
