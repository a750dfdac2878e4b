// File path: internal/sqlguard/validator.go

// Package sqlguard gates generated SQL so that only read-only statements ever
// reach a data source. It never executes anything.
package sqlguard

import (
	"regexp"
	"strings"
	"unicode"
)

// forbidden is the set of statement keywords that disqualify a query.
var forbidden = map[string]struct{}{
	"DROP": {}, "DELETE": {}, "INSERT": {}, "UPDATE": {}, "ALTER": {},
	"TRUNCATE": {}, "GRANT": {}, "REVOKE": {}, "CREATE": {}, "REPLACE": {},
}

var forbiddenWord = regexp.MustCompile(`(?i)\b(DROP|DELETE|INSERT|UPDATE|ALTER|TRUNCATE|GRANT|REVOKE|CREATE|REPLACE)\b`)

// Validate reports whether sql is safe to execute. A statement is safe only
// when both independent checks pass: a lexical pass over word tokens (string
// literals, quoted identifiers and comments excluded) finds no forbidden
// keyword, and a whole-word scan of the raw text finds none either. The
// second pass catches constructs the tokenizer might misclassify.
func Validate(sql string) bool {
	if strings.TrimSpace(sql) == "" {
		return false
	}
	for _, token := range lexWords(sql) {
		if _, bad := forbidden[strings.ToUpper(token)]; bad {
			return false
		}
	}
	return !forbiddenWord.MatchString(sql)
}

// lexWords extracts bare word tokens from the statement, skipping single- and
// double-quoted regions, backtick and bracket identifiers, and both comment
// styles. Semicolons just end a token, so every statement of a multi-statement
// input is inspected.
func lexWords(sql string) []string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			flush()
			i = skipQuoted(runes, i, c)
		case c == '[':
			flush()
			i = skipQuoted(runes, i, ']')
		case c == '-' && i+1 < len(runes) && runes[i+1] == '-':
			flush()
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(runes) && runes[i+1] == '*':
			flush()
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i++
		case unicode.IsLetter(c) || c == '_' || (current.Len() > 0 && unicode.IsDigit(c)):
			current.WriteRune(c)
		default:
			flush()
		}
	}
	flush()
	return words
}

// skipQuoted advances past a region opened at runes[start] and closed by
// closer, honoring doubled-quote escapes.
func skipQuoted(runes []rune, start int, closer rune) int {
	for i := start + 1; i < len(runes); i++ {
		if runes[i] == closer {
			if i+1 < len(runes) && runes[i+1] == closer {
				i++
				continue
			}
			return i
		}
	}
	return len(runes) - 1
}
