// Package extract turns uploaded files into clean plain text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Supported document types.
const (
	TypeText     = "txt"
	TypeMarkdown = "md"
)

// MinTextChars is the shortest cleaned text accepted as a document.
const MinTextChars = 10

var (
	// ErrUnsupportedType is returned for files that are neither plain text nor Markdown.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoText is returned when a file yields too little readable text.
	ErrNoText = errors.New("no readable text")
)

// TypeFromName returns the document type for a file name based on its extension.
func TypeFromName(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return TypeText, nil
	case ".md", ".markdown":
		return TypeMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(name))
	}
}

// Text extracts and cleans the text of a file of the given type.
// It returns ErrNoText when fewer than MinTextChars characters remain.
func Text(fileType string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		data = []byte(strings.ToValidUTF8(string(data), " "))
	}

	var raw string
	switch fileType {
	case TypeText:
		raw = string(data)
	case TypeMarkdown:
		raw = MarkdownText(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, fileType)
	}

	text := Clean(raw)
	if utf8.RuneCountInString(text) < MinTextChars {
		return "", fmt.Errorf("%w: %d characters after cleaning", ErrNoText, utf8.RuneCountInString(text))
	}
	return text, nil
}

// Clean applies NFKC normalisation, replaces control characters with spaces, collapses
// whitespace runs into a single space and trims the result.
func Clean(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
