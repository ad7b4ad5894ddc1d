package workflows

import (
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"draftdesk/internal/activities"
	"draftdesk/internal/review"
)

const (
	QueryGetIngestProgress = "GetIngestProgress"
	QueryGetReviewProgress = "GetReviewProgress"
)

// Provider calls get one attempt each inside an activity; retrying the
// activity would re-run the whole failover pass, so Temporal never retries.
func withSingleAttempt(ctx workflow.Context, timeout time.Duration) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
}

// IngestBatchWorkflow processes items strictly in order. One failed item
// does not stop the batch, and the chat session is invalidated only when at
// least one document actually entered the store.
func IngestBatchWorkflow(ctx workflow.Context, input IngestBatchInput) (IngestBatchResult, error) {
	progress := IngestBatchProgress{
		Total:   len(input.Items),
		PerItem: map[string]IngestItemStatus{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetIngestProgress, func() (IngestBatchProgress, error) {
		return progress, nil
	}); err != nil {
		return IngestBatchResult{}, err
	}

	ctx = withSingleAttempt(ctx, 2*time.Minute)
	var result IngestBatchResult

	for _, item := range input.Items {
		progress.PerItem[item.Name] = IngestItemStatus{Status: "processing"}

		var exists activities.HasDocumentOutput
		if err := workflow.ExecuteActivity(ctx, "HasDocumentActivity", activities.HasDocumentInput{Name: item.Name}).Get(ctx, &exists); err != nil {
			result.Failed++
			progress.Failed++
			progress.PerItem[item.Name] = IngestItemStatus{Status: "failed", Reason: err.Error()}
			continue
		}
		if exists.Exists {
			result.Skipped++
			progress.Skipped++
			progress.PerItem[item.Name] = IngestItemStatus{Status: "skipped", Reason: "document already in knowledge store"}
			continue
		}

		var text activities.ExtractTextOutput
		if err := workflow.ExecuteActivity(ctx, "ExtractTextActivity", activities.ExtractTextInput{
			Name:    item.Name,
			Path:    item.Path,
			RawText: item.RawText,
		}).Get(ctx, &text); err != nil {
			result.Failed++
			progress.Failed++
			progress.PerItem[item.Name] = IngestItemStatus{Status: "failed", Reason: err.Error()}
			continue
		}

		var md activities.ExtractMetadataOutput
		if err := workflow.ExecuteActivity(ctx, "ExtractMetadataActivity", activities.ExtractMetadataInput{
			Name: item.Name,
			Text: text.Text,
		}).Get(ctx, &md); err != nil {
			result.Failed++
			progress.Failed++
			progress.PerItem[item.Name] = IngestItemStatus{Status: "failed", Reason: err.Error()}
			continue
		}

		var added activities.AddDocumentOutput
		if err := workflow.ExecuteActivity(ctx, "AddDocumentActivity", activities.AddDocumentInput{
			Name:     item.Name,
			Text:     text.Text,
			Metadata: md.Metadata,
		}).Get(ctx, &added); err != nil {
			result.Failed++
			progress.Failed++
			progress.PerItem[item.Name] = IngestItemStatus{Status: "failed", Reason: err.Error()}
			continue
		}
		if !added.Added {
			result.Skipped++
			progress.Skipped++
			progress.PerItem[item.Name] = IngestItemStatus{Status: "skipped", Reason: "document already in knowledge store"}
			continue
		}

		result.Added++
		progress.Done++
		progress.PerItem[item.Name] = IngestItemStatus{Status: "done"}
	}

	if result.Added > 0 {
		if err := workflow.ExecuteActivity(ctx, "InvalidateChatActivity").Get(ctx, nil); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ReviewWorkflow generates a literature review over the knowledge store.
// Concise mode appends a single version; detailed mode appends one version
// per stage so partial progress survives a mid-run failure.
func ReviewWorkflow(ctx workflow.Context, input ReviewInput) (ReviewResult, error) {
	progress := ReviewProgress{Mode: input.Mode}
	if err := workflow.SetQueryHandler(ctx, QueryGetReviewProgress, func() (ReviewProgress, error) {
		return progress, nil
	}); err != nil {
		return ReviewResult{}, err
	}

	if input.Mode != ModeConcise && input.Mode != ModeDetailed {
		return ReviewResult{}, fmt.Errorf("unknown review mode %q", input.Mode)
	}

	ctx = withSingleAttempt(ctx, 5*time.Minute)

	var kc activities.BuildKnowledgeContextOutput
	if err := workflow.ExecuteActivity(ctx, "BuildKnowledgeContextActivity").Get(ctx, &kc); err != nil {
		return ReviewResult{}, err
	}
	if kc.Count == 0 {
		return ReviewResult{}, errors.New("knowledge store is empty")
	}

	if err := workflow.ExecuteActivity(ctx, "ResetDraftsActivity").Get(ctx, nil); err != nil {
		return ReviewResult{}, err
	}

	if input.Mode == ModeConcise {
		progress.TotalStages = 1
		progress.Description = "writing review"
		var out activities.GenerateOutput
		if err := workflow.ExecuteActivity(ctx, "GenerateActivity", activities.GenerateInput{
			Operation: "review_concise",
			Prompt:    review.ConcisePrompt(input.Topic, kc.Context),
		}).Get(ctx, &out); err != nil {
			return ReviewResult{Versions: progress.Versions}, err
		}
		if err := appendVersion(ctx, out.Text, &progress); err != nil {
			return ReviewResult{Versions: progress.Versions}, err
		}
		progress.Stage = 1
		progress.Description = "completed"
		return ReviewResult{Versions: progress.Versions}, nil
	}

	progress.Description = "planning outline"
	var outline activities.GenerateOutlineOutput
	if err := workflow.ExecuteActivity(ctx, "GenerateOutlineActivity", activities.GenerateOutlineInput{
		Topic:   input.Topic,
		Context: kc.Context,
	}).Get(ctx, &outline); err != nil {
		return ReviewResult{}, err
	}
	plan := outline.Plan

	// outline + introduction + one per theme + conclusion
	progress.TotalStages = len(plan.Themes) + 3

	if err := appendVersion(ctx, plan.Render(), &progress); err != nil {
		return ReviewResult{Versions: progress.Versions}, err
	}
	progress.Stage = 1

	progress.Description = "writing introduction"
	var intro activities.GenerateOutput
	if err := workflow.ExecuteActivity(ctx, "GenerateActivity", activities.GenerateInput{
		Operation: "review_introduction",
		Prompt:    review.IntroductionPrompt(input.Topic, kc.Context, plan.IntroductionPlan),
	}).Get(ctx, &intro); err != nil {
		return ReviewResult{Versions: progress.Versions}, err
	}
	draft := intro.Text
	if err := appendVersion(ctx, draft, &progress); err != nil {
		return ReviewResult{Versions: progress.Versions}, err
	}
	progress.Stage = 2

	for i, theme := range plan.Themes {
		progress.Description = "writing theme: " + theme.Title
		var body activities.GenerateOutput
		if err := workflow.ExecuteActivity(ctx, "GenerateActivity", activities.GenerateInput{
			Operation: "review_theme",
			Prompt:    review.ThemePrompt(input.Topic, kc.Context, draft, theme.Title, theme.Plan),
		}).Get(ctx, &body); err != nil {
			return ReviewResult{Versions: progress.Versions}, err
		}
		draft = draft + "\n\n" + body.Text
		if err := appendVersion(ctx, draft, &progress); err != nil {
			return ReviewResult{Versions: progress.Versions}, err
		}
		progress.Stage = 3 + i
	}

	progress.Description = "writing conclusion"
	var concl activities.GenerateOutput
	if err := workflow.ExecuteActivity(ctx, "GenerateActivity", activities.GenerateInput{
		Operation: "review_conclusion",
		Prompt:    review.ConclusionPrompt(input.Topic, kc.Context, draft, plan.ConclusionPlan),
	}).Get(ctx, &concl); err != nil {
		return ReviewResult{Versions: progress.Versions}, err
	}
	draft = draft + "\n\n" + concl.Text
	if err := appendVersion(ctx, draft, &progress); err != nil {
		return ReviewResult{Versions: progress.Versions}, err
	}
	progress.Stage = progress.TotalStages
	progress.Description = "completed"

	return ReviewResult{Versions: progress.Versions}, nil
}

func appendVersion(ctx workflow.Context, text string, progress *ReviewProgress) error {
	var out activities.AppendDraftOutput
	if err := workflow.ExecuteActivity(ctx, "AppendDraftActivity", activities.AppendDraftInput{Text: text}).Get(ctx, &out); err != nil {
		return err
	}
	progress.Versions = out.Index + 1
	return nil
}
