package gemini

import (
	"encoding/json"
	"strings"

	"github.com/lescale-paris/escale-backend/internal/domain"
)

// parseDiscoveryReply turns the raw model reply into events. Priority order:
//
//  1. strict decode of the whole text as {"events": [...]} or a bare array;
//  2. decode of the first balanced bracket substring, for replies where the
//     model wrapped the payload in explanatory prose;
//  3. no events at all, reported via ok=false.
//
// Parse failure is a degraded state, not an error: the caller renders an
// empty list.
func parseDiscoveryReply(text string) ([]domain.EventItem, bool) {
	if events, ok := decodeEvents(text); ok {
		return events, true
	}
	if candidate, ok := extractBalanced(text); ok {
		if events, ok := decodeEvents(candidate); ok {
			return events, true
		}
	}
	return nil, false
}

func decodeEvents(text string) ([]domain.EventItem, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	var envelope struct {
		Events []domain.EventItem `json:"events"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Events != nil {
		return envelope.Events, true
	}

	var list []domain.EventItem
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list, true
	}
	return nil, false
}

// extractBalanced returns the first balanced {...} or [...] substring,
// honoring JSON string literals and escapes.
func extractBalanced(text string) (string, bool) {
	start := -1
	for i, r := range text {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
