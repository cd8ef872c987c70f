package domain

// ExecResult is the structured outcome of running a single node. Execution
// never panics past its own boundary; callers always get one of these.
type ExecResult struct {
	NodeID  string `json:"nodeId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NodeError pairs a node with the message it failed with.
type NodeError struct {
	NodeID  string `json:"nodeId"`
	Message string `json:"message"`
}

// RunReport aggregates a whole-graph run. Independent branches proceed even
// when one fails, so Completed and Failed can both be non-empty.
type RunReport struct {
	Success   bool        `json:"success"`
	Stopped   bool        `json:"stopped,omitempty"`
	Completed []string    `json:"completed"`
	Failed    []string    `json:"failed"`
	Errors    []NodeError `json:"errors,omitempty"`
}

// GenerationRequest is the normalized parameter set handed to a generation or
// editing collaborator. Every optional field is defaulted by the adapter
// before the call; an unset field never silently varies between calls.
type GenerationRequest struct {
	Kind        NodeKind `json:"kind"`
	Prompt      string   `json:"prompt,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	VideoURL    string   `json:"videoUrl,omitempty"`
	VideoURLs   []string `json:"videoUrls,omitempty"`
	FirstFrame  string   `json:"firstFrame,omitempty"`
	LastFrame   string   `json:"lastFrame,omitempty"`
	Duration    float64  `json:"duration,omitempty"`
	Resolution  string   `json:"resolution,omitempty"`
	AspectRatio string   `json:"aspectRatio,omitempty"`
	Effect      string   `json:"effect,omitempty"`
	TrimStart   float64  `json:"trimStart,omitempty"`
	TrimEnd     float64  `json:"trimEnd,omitempty"`
	Language    string   `json:"language,omitempty"`
	Transitions []string `json:"transitions,omitempty"`
}

// GenerationResult is the success payload from a collaborator.
type GenerationResult struct {
	ImageURL    string `json:"imageUrl,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	Seed        int64  `json:"seed,omitempty"`
}
