// Package id generates the identifiers used in persisted reading state.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// base36 matches the character set of the identifiers the web client produced.
const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generate creates a prefixed unique ID: prefix-nanoid (e.g. "h-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Suffix returns n random lowercase base-36 characters.
func Suffix(n int) (string, error) {
	s, err := gonanoid.Generate(base36, n)
	if err != nil {
		return "", fmt.Errorf("generate suffix: %w", err)
	}
	return s, nil
}
