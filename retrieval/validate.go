package retrieval

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError reports a query that cannot be retrieved.
type ValidationError struct {
	MinLength int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Query must be at least %d characters.", e.MinLength)
}

// ValidateQuery checks the trimmed query length against minLength.
func ValidateQuery(query string, minLength int) error {
	if minLength <= 0 {
		minLength = DefaultMinQueryLength
	}
	if utf8.RuneCountInString(strings.TrimSpace(query)) < minLength {
		return &ValidationError{MinLength: minLength}
	}
	return nil
}
