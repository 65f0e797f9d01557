// Package protocol defines the NDJSON messages streamed by the checker backend and a tolerant line parser for them.
//
// A run's stream carries one metadata message near the start, one result message per finished tool, and a final done message. Anything else on the wire is
// preserved as Unknown so callers can count or ignore it without breaking the stream.
package protocol

// Message is one parsed line of a run stream: Metadata, Result, Done, or Unknown.
type Message interface {
	isMessage()
}

// Metadata carries run-wide context, sent once when the backend accepts a run.
type Metadata struct {
	ToolVersions        map[string]string `json:"tool_versions"`
	ToolOrder           []string          `json:"tool_order"`
	EnabledTools        []string          `json:"enabled_tools"`
	RuffRepoPath        string            `json:"ruff_repo_path"`
	PythonToolRepoPaths map[string]string `json:"python_tool_repo_paths"`
	TempDir             string            `json:"temp_dir"`
}

// Result reports one finished tool.
type Result struct {
	Tool string     `json:"tool"`
	Data ResultData `json:"data"`
}

// ResultData is the payload of a Result.
//
// Returncode is nil when the backend couldn't produce one. Negative values are backend-synthesized: -1 tool binary missing, -2 timed out, -3 internal
// backend error.
type ResultData struct {
	Command    string  `json:"command"`
	Returncode *int    `json:"returncode"`
	DurationMS float64 `json:"duration_ms"`
	Output     string  `json:"output"`
}

// Done marks the end of a run stream.
type Done struct{}

// Unknown is a structurally valid message whose type discriminator we don't recognize (including an empty one).
type Unknown struct {
	Type string
}

func (Metadata) isMessage() {}
func (Result) isMessage()   {}
func (Done) isMessage()     {}
func (Unknown) isMessage()  {}
