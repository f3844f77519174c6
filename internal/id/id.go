// Package id generates identifiers: random prefixed ids for import batches
// and sequential decimal tokens for catalog records.
package id

import (
	"fmt"
	"strconv"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// BatchPrefix prefixes import batch ids.
const BatchPrefix = "batch"

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "batch-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Sequential formats the n-th catalog identifier.
func Sequential(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// ParseSequential returns the counter value of a sequential identifier.
// Identifiers supplied verbatim by a spreadsheet may not be numeric; those
// report false.
func ParseSequential(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
