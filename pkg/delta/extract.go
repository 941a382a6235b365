package delta

import "strings"

// Extraction is the tolerant phase: locate a delta block inside free-form
// prose without judging its contents. Two block forms are accepted, a
// fenced region with the "delta" info string and a tag-delimited region:
//
//	```delta
//	{ ... }
//	```
//
//	[DELTA]
//	{ ... }
//	[/DELTA]
//
// Validation of what is inside the block happens in the strict phase.

const (
	fenceOpen = "```delta"
	fence     = "```"
	tagOpen   = "[DELTA]"
	tagClose  = "[/DELTA]"
)

// extractBlock returns the inner text of the first delta block found in
// raw, or ok=false when no recognizable block exists.
func extractBlock(raw string) (string, bool) {
	if inner, ok := extractFenced(raw); ok {
		return inner, true
	}
	return extractTagged(raw)
}

func extractFenced(raw string) (string, bool) {
	start := strings.Index(raw, fenceOpen)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(fenceOpen):]
	// The info string must end the line; "```deltaish" is not a delta fence.
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 || strings.TrimSpace(rest[:nl]) != "" {
		return "", false
	}
	rest = rest[nl+1:]
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func extractTagged(raw string) (string, bool) {
	start := strings.Index(raw, tagOpen)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(tagOpen):]
	end := strings.Index(rest, tagClose)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
