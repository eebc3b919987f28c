package llm

import "strings"

// StripCodeFence removes a surrounding Markdown code fence from model output.
// Models frequently wrap JSON answers in ```json ... ``` even when told not
// to; parsing must tolerate that. Text without a fence is returned trimmed.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop a language tag on the opening fence line, e.g. "json".
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "[{") {
			text = text[idx+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
