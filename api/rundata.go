package api

// RunData describes how one execution attempt ended, before normalization.
type RunData struct {
	Outcome   string `json:"outcome"`
	Stdout    string `json:"out"`
	Stderr    string `json:"err"`
	ExitCode  int64  `json:"exit"`
	WallMs    int64  `json:"wall_ms"`
	Truncated bool   `json:"truncated"`
}
