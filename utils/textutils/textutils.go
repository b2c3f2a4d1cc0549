// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds small string helpers shared by the aggregators and
// the command line.
package textutils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// DedupKey folds s and collapses inner whitespace so that "Grey  Heron" and
// "grey heron" compare equal. Blank input yields "".
func DedupKey(s string) string {
	return strings.Join(strings.Fields(LowerASCIIFolding(s)), " ")
}

// CountDistinct counts the distinct non-blank DedupKey values.
func CountDistinct(values []string) int {
	seen := make(map[string]struct{}, len(values))

	for _, v := range values {
		if k := DedupKey(v); k != "" {
			seen[k] = struct{}{}
		}
	}

	return len(seen)
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	sign := ""
	if n < 0 {
		sign, in = "-", in[1:]
	}

	var sb strings.Builder

	for i, r := range in {
		if i > 0 && (len(in)-i)%3 == 0 {
			sb.WriteByte(',')
		}

		sb.WriteRune(r)
	}

	return sign + sb.String()
}
