package jsonl

import (
	"bytes"
	"strings"
)

// Framer splits a byte stream into lines across arbitrary chunk boundaries. Chunks are buffered as raw bytes and split on \n only, so a multi-byte UTF-8
// sequence straddling two chunks comes out intact once its line completes.
//
// The zero value is ready to use.
type Framer struct {
	buf []byte
}

// Feed appends chunk to the buffer and returns all newly completed lines, in order. The trailing unterminated fragment (if any) stays buffered for the
// next Feed or Flush. Completed lines have the terminating \n (and a preceding \r, if present) removed; invalid UTF-8 is replaced with U+FFFD.
func (f *Framer) Feed(chunk []byte) []string {
	f.buf = append(f.buf, chunk...)

	var lines []string
	for {
		idx := bytes.IndexByte(f.buf, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, decodeLine(f.buf[:idx]))
		f.buf = f.buf[idx+1:]
	}
	if len(f.buf) == 0 {
		f.buf = nil
	}

	return lines
}

// Flush drains the buffered unterminated tail and resets the framer. The tail is only returned if it contains non-whitespace; a stream that ended cleanly
// on a newline (or with trailing blanks) flushes to nothing.
func (f *Framer) Flush() (string, bool) {
	tail := f.buf
	f.buf = nil

	line := decodeLine(tail)
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	return line, true
}

func decodeLine(raw []byte) string {
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	return strings.ToValidUTF8(string(raw), "�")
}
