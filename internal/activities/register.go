package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractTextActivity)
	w.RegisterActivity(a.ExtractMetadataActivity)
	w.RegisterActivity(a.HasDocumentActivity)
	w.RegisterActivity(a.AddDocumentActivity)
	w.RegisterActivity(a.InvalidateChatActivity)
	w.RegisterActivity(a.BuildKnowledgeContextActivity)
	w.RegisterActivity(a.GenerateActivity)
	w.RegisterActivity(a.GenerateOutlineActivity)
	w.RegisterActivity(a.ResetDraftsActivity)
	w.RegisterActivity(a.AppendDraftActivity)
}
