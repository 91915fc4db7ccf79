// Package security provides token handling and credential sanitization for
// auto-release. Registry, GitHub and GitLab credentials travel as [SecureToken]
// values and any free-form text that may embed one goes through
// [SanitizeString] before it is logged.
package security

import "fmt"

const (
	// Minimum token length to show partial masking (show last 4 chars).
	minTokenLengthForPartialMask = 8
	// Number of characters to show when masking.
	maskShowChars = 4
	// maskEmpty is returned for empty tokens.
	maskEmpty = "[empty]"
	// maskRedacted is returned for short tokens.
	maskRedacted = "[redacted]"
)

// SecureToken wraps a credential together with the place it was read from.
// The String() method returns a masked value, making it safe to use in logs,
// error messages, and fmt operations.
//
// Example:
//
//	token := NewSecureToken("glpat-secret123456", "CI_JOB_TOKEN")
//	fmt.Printf("Token: %s", token)  // Output: "Token: [token:****3456]"
//	token.Source()                  // "CI_JOB_TOKEN"
type SecureToken struct {
	value  string
	source string
}

// NewSecureToken creates a new SecureToken from a value and its source
// (environment variable name or file path).
func NewSecureToken(token, source string) SecureToken {
	return SecureToken{value: token, source: source}
}

// String implements fmt.Stringer and returns a masked representation.
func (t SecureToken) String() string {
	if t.value == "" {
		return maskEmpty
	}

	if len(t.value) < minTokenLengthForPartialMask {
		return maskRedacted
	}

	return fmt.Sprintf("[token:****%s]", t.value[len(t.value)-maskShowChars:])
}

// GoString implements fmt.GoStringer to prevent leaking in %#v formatting.
func (t SecureToken) GoString() string {
	return t.String()
}

// Value returns the actual token value.
// Only call this when the real token is needed for authentication. Never log the result.
func (t SecureToken) Value() string {
	return t.value
}

// Source returns where the token was read from.
func (t SecureToken) Source() string {
	return t.source
}

// IsEmpty returns true if the token is empty.
func (t SecureToken) IsEmpty() bool {
	return t.value == ""
}
