package completion

import (
	"strconv"
	"strings"
)

// pathMetaChars are the bytes that force a candidate into quoted form: a
// value containing any of them would be re-tokenized on insertion.
const pathMetaChars = " \t#'\"`(){}[]|;$^&*?!<>,:="

// needsQuoting reports whether value must be quoted to survive the lexer
// unchanged: shell metacharacters, or a token that would parse as a flag or
// a number.
func needsQuoting(value string) bool {
	if value == "" {
		return false
	}
	if strings.ContainsAny(value, pathMetaChars) {
		return true
	}
	if value[0] == '-' {
		return true
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return true
	}
	return false
}

// quoteValue wraps value for insertion. A delimiter the user already typed
// is kept; otherwise backticks are preferred, falling back to single then
// double quotes when the value contains the delimiter itself.
func quoteValue(value string, quote byte) string {
	if quote != 0 && !strings.ContainsRune(value, rune(quote)) {
		return string(quote) + value + string(quote)
	}
	if quote == 0 && !needsQuoting(value) {
		return value
	}
	if !strings.Contains(value, "`") {
		return "`" + value + "`"
	}
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
}
