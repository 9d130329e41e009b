package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateBuildName validates a build label supplied by an API client.
// Empty names are allowed; the store generates an id either way.
func ValidateBuildName(name string) error {
	if len(name) > 120 {
		return New(ErrCodeInvalidName, "build name too long (max 120 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "build name contains control characters")
		}
	}
	return nil
}

// ValidateDocumentName validates a document name for safety. Names end up in
// log lines and error messages, so anything that smells like path injection
// is rejected.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path traversal sequences (..)
//   - No absolute paths or backslashes
//   - Maximum length of 256 characters
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDocument, "document name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidDocument, "document name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "document name contains control characters")
		}
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidDocument, "document name must be relative")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidDocument, "document name cannot contain path traversal sequences (..)")
	}
	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidDocument, "document name cannot contain backslashes")
	}

	return nil
}

// vocabularyTermRegex matches custom entity type names. The charset mirrors
// the reference sigil grammar, so a custom type stays referenceable.
var vocabularyTermRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateVocabularyTerm validates a custom entity type name.
func ValidateVocabularyTerm(term string) error {
	if term == "" {
		return New(ErrCodeInvalidVocabulary, "vocabulary term cannot be empty")
	}

	if !vocabularyTermRegex.MatchString(term) {
		return New(ErrCodeInvalidVocabulary, "invalid vocabulary term: %q", term)
	}

	return nil
}
