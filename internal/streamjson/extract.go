// Package streamjson parses JSON out of a growing text buffer.
//
// LLM streams deliver JSON a few bytes at a time, often wrapped in a fenced
// code block. TryParse returns the best-effort parse of whatever prefix is
// already syntactically complete, so callers can act on finished array
// elements without waiting for the closing bracket.
package streamjson

import (
	"encoding/json"
	"strings"
)

// Result is the outcome of one TryParse pass.
//
// Value is nil when nothing parseable has arrived yet. Start is the offset
// the scan actually began at (after any opening fence), End the offset just
// past the last byte consumed, or -1 when no value was produced.
type Result struct {
	Value any
	Start int
	End   int
}

const fence = "```"

// TryParse parses the largest complete JSON value available in text at or
// after start. A fenced code block, terminated or not, is looked through.
// For a top-level array whose tail is still streaming, the elements closed
// so far are returned and End marks the position just past the last one.
func TryParse(text string, start int) Result {
	base, limit := fencedInterior(text)
	if start < base {
		start = base
	}
	if start >= limit {
		return Result{Start: start, End: -1}
	}
	seg := text[start:limit]

	// Fast path: the whole remaining segment already parses.
	var whole any
	if err := json.Unmarshal([]byte(seg), &whole); err == nil {
		if whole != nil || strings.TrimSpace(seg) == "null" {
			return Result{Value: whole, Start: start, End: limit}
		}
	}

	open := -1
	for i := 0; i < len(seg); i++ {
		if seg[i] == '[' || seg[i] == '{' {
			open = i
			break
		}
	}
	if open < 0 {
		return Result{Start: start, End: -1}
	}
	arrayMode := seg[open] == '['

	depth := 0
	inString := false
	escaped := false
	lastElemEnd := -1 // offset in seg just past the last closed top-level element
	for i := open; i < len(seg); i++ {
		c := seg[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				// Entire top-level value closed mid-buffer.
				var v any
				if err := json.Unmarshal([]byte(seg[open:i+1]), &v); err != nil {
					return Result{Start: start, End: -1}
				}
				return Result{Value: v, Start: start, End: start + i + 1}
			}
			if arrayMode && depth == 1 {
				lastElemEnd = i + 1
			}
		}
	}

	if !arrayMode || lastElemEnd < 0 {
		return Result{Start: start, End: -1}
	}

	// Stream still open: re-close the array at the last complete element.
	inner := strings.TrimSpace(seg[open+1 : lastElemEnd])
	inner = strings.TrimSuffix(inner, ",")
	var partial any
	if err := json.Unmarshal([]byte("["+inner+"]"), &partial); err != nil {
		return Result{Start: start, End: -1}
	}
	return Result{Value: partial, Start: start, End: start + lastElemEnd}
}

// fencedInterior locates the interior of the first ``` code block, if any,
// and returns its bounds in text coordinates. Without a fence the whole
// buffer is the interior. An unterminated fence extends to the end.
func fencedInterior(text string) (int, int) {
	openAt := strings.Index(text, fence)
	if openAt < 0 {
		return 0, len(text)
	}
	begin := openAt + len(fence)
	if nl := strings.IndexByte(text[begin:], '\n'); nl >= 0 {
		// Skip the language tag line ("```json").
		begin += nl + 1
	}
	end := len(text)
	if closeAt := strings.Index(text[begin:], fence); closeAt >= 0 {
		end = begin + closeAt
	}
	if begin > end {
		begin = end
	}
	return begin, end
}
