package console

import (
	"strings"
	"unicode"
)

// splitStatements breaks src into single SQL statements at top-level
// semicolons. Quoted strings, identifiers and comments are skipped, and a
// CREATE TRIGGER body runs to its closing END. Statements holding nothing
// but whitespace and comments are dropped.
func splitStatements(src string) []string {
	var (
		out   []string
		start int
		words []string // leading keywords of the current statement
		blank = true   // nothing but whitespace and comments so far
		body  bool     // inside BEGIN ... END of a trigger
		cases int
	)

	flush := func(end int) {
		if !blank {
			out = append(out, strings.TrimSpace(src[start:end]))
		}
		start, words, blank, body, cases = end+1, nil, true, false, 0
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '-' && i+1 < len(src) && src[i+1] == '-':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				i = len(src)
			} else {
				i += end + 3
			}
		case c == '\'' || c == '"' || c == '`' || c == '[':
			closer := c
			if c == '[' {
				closer = ']'
			}
			blank = false
			i++
			for i < len(src) {
				if src[i] == closer {
					// Doubled quotes escape themselves.
					if closer != ']' && i+1 < len(src) && src[i+1] == closer {
						i += 2
						continue
					}
					break
				}
				i++
			}
		case c == ';':
			if isTrigger(words) && (body || cases > 0) {
				continue
			}
			flush(i)
		case isWordByte(c):
			j := i
			for j < len(src) && isWordByte(src[j]) {
				j++
			}
			word := strings.ToUpper(src[i:j])
			blank = false
			if len(words) < 4 {
				words = append(words, word)
			}
			if isTrigger(words) {
				switch word {
				case "BEGIN":
					body = true
				case "CASE":
					cases++
				case "END":
					if cases > 0 {
						cases--
					} else {
						body = false
					}
				}
			}
			i = j - 1
		case !unicode.IsSpace(rune(c)):
			blank = false
		}
	}
	if start < len(src) {
		flush(len(src))
	}
	return out
}

// isTrigger reports whether the leading keywords open CREATE [TEMP] TRIGGER.
func isTrigger(words []string) bool {
	if len(words) < 2 || words[0] != "CREATE" {
		return false
	}
	if words[1] == "TRIGGER" {
		return true
	}
	return len(words) > 2 && (words[1] == "TEMP" || words[1] == "TEMPORARY") && words[2] == "TRIGGER"
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}
