package workflows

// IngestItem is one document in a batch. Exactly one of Path or RawText is
// set; Kind records how it arrived for the progress view.
type IngestItem struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	RawText string `json:"raw_text"`
	Kind    string `json:"kind"`
}

type IngestBatchInput struct {
	Items []IngestItem `json:"items"`
}

type IngestItemStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type IngestBatchProgress struct {
	Total   int                         `json:"total"`
	Done    int                         `json:"done"`
	Skipped int                         `json:"skipped"`
	Failed  int                         `json:"failed"`
	PerItem map[string]IngestItemStatus `json:"per_item"`
}

type IngestBatchResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

const (
	ModeConcise  = "concise"
	ModeDetailed = "detailed"
)

type ReviewInput struct {
	Mode  string `json:"mode"`
	Topic string `json:"topic"`
}

type ReviewProgress struct {
	Mode        string `json:"mode"`
	Stage       int    `json:"stage"`
	TotalStages int    `json:"total_stages"`
	Description string `json:"description"`
	Versions    int    `json:"versions"`
}

type ReviewResult struct {
	Versions int `json:"versions"`
}
