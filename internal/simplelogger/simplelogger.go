package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

var (
	mu       sync.Mutex
	override string
)

// SetPath routes subsequent Log calls to the file at path, overriding the CHECKDECK_LOG_FILE environment variable. Pass "" to fall back to the env var.
func SetPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	override = path
}

// Log is a minimal printf-style logger. It appends formatted output to the file set with SetPath, or else the file named by the CHECKDECK_LOG_FILE
// environment variable.
//
// If neither is set or the path can't be opened as a file, Log is a no-op.
func Log(format string, args ...any) {
	// Serialize open/write/close to reduce interleaving within a single process.
	mu.Lock()
	defer mu.Unlock()

	path := override
	if path == "" {
		path = os.Getenv("CHECKDECK_LOG_FILE")
	}
	if path == "" {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Len() == 0 || b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}
