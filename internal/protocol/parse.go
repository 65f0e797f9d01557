package protocol

import (
	"encoding/json"
	"strings"

	"github.com/codalotl/checkdeck/internal/simplelogger"
)

type envelope struct {
	Type string `json:"type"`
}

// ParseLine parses one framed stream line into a Message. It returns (nil, false) for blank lines, lines that aren't a JSON object, and objects whose
// shape doesn't match their declared type; the stream continues either way. A well-formed object with an unrecognized (or empty) type parses as Unknown.
//
// ParseLine never panics and never fails a stream.
func ParseLine(line string) (Message, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, false
	}
	if trimmed[0] != '{' {
		simplelogger.Log("protocol: skipping non-object line: %.120q", trimmed)
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		simplelogger.Log("protocol: dropping malformed line: %v", err)
		return nil, false
	}

	switch env.Type {
	case "metadata":
		var m Metadata
		if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
			simplelogger.Log("protocol: dropping bad metadata message: %v", err)
			return nil, false
		}
		return m, true
	case "result":
		var r Result
		if err := json.Unmarshal([]byte(trimmed), &r); err != nil {
			simplelogger.Log("protocol: dropping bad result message: %v", err)
			return nil, false
		}
		return r, true
	case "done":
		return Done{}, true
	default:
		return Unknown{Type: env.Type}, true
	}
}
