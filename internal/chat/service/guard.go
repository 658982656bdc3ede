package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/smallbiznis/spendlens/internal/chat/domain"
)

var writeKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "MERGE": {},
	"DROP": {}, "ALTER": {}, "TRUNCATE": {}, "CREATE": {}, "RENAME": {},
	"GRANT": {}, "REVOKE": {}, "COPY": {}, "CALL": {}, "EXECUTE": {},
	"VACUUM": {}, "REINDEX": {}, "CLUSTER": {}, "LOCK": {}, "INTO": {},
	"ATTACH": {}, "DETACH": {}, "PRAGMA": {},
}

// CheckReadOnly accepts a single SELECT or WITH statement that names no
// write keyword outside of quoted text. It is a verb allow-list, not a parser.
func CheckReadOnly(statement string) error {
	body, err := stripLiteralsAndComments(statement)
	if err != nil {
		return err
	}
	body = strings.TrimSpace(body)
	body = strings.TrimRight(body, "; \t\r\n")

	if body == "" {
		return fmt.Errorf("%w: empty statement", domain.ErrStatementRejected)
	}
	if strings.Contains(body, ";") {
		return fmt.Errorf("%w: multiple statements", domain.ErrStatementRejected)
	}

	words := strings.FieldsFunc(strings.ToUpper(body), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	if len(words) == 0 {
		return fmt.Errorf("%w: empty statement", domain.ErrStatementRejected)
	}
	if words[0] != "SELECT" && words[0] != "WITH" {
		return fmt.Errorf("%w: only SELECT or WITH is allowed, got %s", domain.ErrStatementRejected, words[0])
	}
	for _, word := range words[1:] {
		if _, found := writeKeywords[word]; found {
			return fmt.Errorf("%w: %s is not allowed", domain.ErrStatementRejected, word)
		}
	}
	return nil
}

// stripLiteralsAndComments walks the statement once, tracking quote and
// comment state, and returns the code with every literal collapsed to ''
// and every comment replaced by a space.
//
// Where dialects disagree the scan keeps more text as code: "--" only opens
// a comment when followed by whitespace, and backslashes inside literals or
// MySQL executable comments are rejected outright.
func stripLiteralsAndComments(statement string) (string, error) {
	src := []rune(statement)
	var out strings.Builder
	out.Grow(len(statement))

	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			end, err := closingQuote(src, i)
			if err != nil {
				return "", err
			}
			out.WriteString("''")
			i = end
		case ch == '-' && i+1 < len(src) && src[i+1] == '-' && (i+2 == len(src) || unicode.IsSpace(src[i+2])):
			for i < len(src) && src[i] != '\n' {
				i++
			}
			out.WriteRune(' ')
		case ch == '/' && i+1 < len(src) && src[i+1] == '*':
			if i+2 < len(src) && (src[i+2] == '!' || src[i+2] == '+') {
				return "", fmt.Errorf("%w: executable comments are not allowed", domain.ErrStatementRejected)
			}
			end := -1
			for j := i + 2; j+1 < len(src); j++ {
				if src[j] == '*' && src[j+1] == '/' {
					end = j + 1
					break
				}
			}
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated comment", domain.ErrStatementRejected)
			}
			i = end
			out.WriteRune(' ')
		default:
			out.WriteRune(ch)
		}
	}
	return out.String(), nil
}

// closingQuote returns the index of the quote that ends the literal opened
// at start. A doubled quote is an escaped quote.
func closingQuote(src []rune, start int) (int, error) {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			return 0, fmt.Errorf("%w: backslash inside quoted text", domain.ErrStatementRejected)
		case quote:
			if i+1 < len(src) && src[i+1] == quote {
				i++
				continue
			}
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unterminated quoted text", domain.ErrStatementRejected)
}
