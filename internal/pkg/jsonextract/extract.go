// Package jsonextract pulls a JSON array or object out of free-form LLM text.
//
// Three strategies are tried in order: a fenced ```json block, any fenced
// code block, then a balanced bracket/brace scan that is aware of strings and
// escape sequences. If nothing parses, the empty-array sentinel "[]" is
// returned so callers can treat the result as "no candidates".
package jsonextract

import (
	"encoding/json"
	"strings"
)

const emptyArray = "[]"

// Extract returns the first JSON value embedded in s, or "[]".
func Extract(s string) string {
	if out, ok := fromJSONFence(s); ok {
		return out
	}
	if out, ok := fromAnyFence(s); ok {
		return out
	}
	if out, ok := fromBalancedScan(s); ok {
		return out
	}
	return emptyArray
}

// fromJSONFence looks for a ```json fenced block.
func fromJSONFence(s string) (string, bool) {
	lower := strings.ToLower(s)
	start := strings.Index(lower, "```json")
	if start == -1 {
		return "", false
	}
	body := s[start+len("```json"):]
	end := strings.Index(body, "```")
	if end == -1 {
		return "", false
	}
	candidate := strings.TrimSpace(body[:end])
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}
	return "", false
}

// fromAnyFence looks for any fenced code block whose body is valid JSON.
func fromAnyFence(s string) (string, bool) {
	rest := s
	for {
		start := strings.Index(rest, "```")
		if start == -1 {
			return "", false
		}
		body := rest[start+3:]
		// Skip the info string on the opening fence line.
		if nl := strings.IndexByte(body, '\n'); nl != -1 {
			body = body[nl+1:]
		}
		end := strings.Index(body, "```")
		if end == -1 {
			return "", false
		}
		candidate := strings.TrimSpace(body[:end])
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
		rest = body[end+3:]
	}
}

// fromBalancedScan finds the first '[' or '{' and walks the text with a
// bracket-depth counter, honoring string literals and escape sequences, until
// the opening bracket closes.
func fromBalancedScan(s string) (string, bool) {
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return "", false
	}

	open := s[start]
	var close byte = ']'
	if open == '{' {
		close = '}'
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}

	return "", false
}
