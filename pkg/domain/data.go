package domain

// NodeData holds the kind-specific configuration and output of a node.
// The Kind tag on the owning Node decides which fields are meaningful; the
// field set itself is closed so workflows stay serializable and diffable.
//
// IsGenerating is true only while the node's adapter has an in-flight call.
// It is always false at rest, on success and on failure alike.
type NodeData struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`

	// Generation lifecycle.
	IsGenerating bool   `json:"isGenerating" yaml:"isGenerating" mapstructure:"isGenerating"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty" mapstructure:"error"`

	// Committed outputs. A failed run leaves the last good output untouched.
	ImageURL    string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty" mapstructure:"imageUrl"`
	VideoURL    string `json:"videoUrl,omitempty" yaml:"videoUrl,omitempty" mapstructure:"videoUrl"`
	AspectRatio string `json:"aspectRatio,omitempty" yaml:"aspectRatio,omitempty" mapstructure:"aspectRatio"`
	Seed        int64  `json:"seed,omitempty" yaml:"seed,omitempty" mapstructure:"seed"`

	// Prompt source.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`

	// Raw file input.
	FileURL  string `json:"fileUrl,omitempty" yaml:"fileUrl,omitempty" mapstructure:"fileUrl"`
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty" mapstructure:"mimeType"`

	// Video generation knobs.
	Duration   float64 `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
	Resolution string  `json:"resolution,omitempty" yaml:"resolution,omitempty" mapstructure:"resolution"`
	Effect     string  `json:"effect,omitempty" yaml:"effect,omitempty" mapstructure:"effect"`

	// Editing knobs.
	TrimStart   float64  `json:"trimStart,omitempty" yaml:"trimStart,omitempty" mapstructure:"trimStart"`
	TrimEnd     float64  `json:"trimEnd,omitempty" yaml:"trimEnd,omitempty" mapstructure:"trimEnd"`
	Language    string   `json:"language,omitempty" yaml:"language,omitempty" mapstructure:"language"`
	Transitions []string `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`
}

// Clone returns a deep copy of the data record.
func (d NodeData) Clone() NodeData {
	out := d
	if d.Transitions != nil {
		out.Transitions = make([]string, len(d.Transitions))
		copy(out.Transitions, d.Transitions)
	}
	return out
}

// ClearOutputs drops everything a previous run produced. Pasted nodes go
// through this so they come out ready to be executed, never silently
// inheriting another node's media.
func (d *NodeData) ClearOutputs() {
	d.IsGenerating = false
	d.Error = ""
	d.ImageURL = ""
	d.VideoURL = ""
	d.Seed = 0
}
