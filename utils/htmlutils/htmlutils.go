// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// elements whose text content is never shown to a reader.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Head:     true,
}

// Node2string appends the visible text below n to sb, one space between text
// runs.
func Node2string(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if tmp == "" {
			return
		}

		if sb.Len() != 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(tmp)
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}

		fallthrough
	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			Node2string(child, sb)
		}
	}
}

// PlainText strips markup from untrusted input and returns its visible text
// with whitespace collapsed. Invalid UTF-8 sequences are dropped.
func PlainText(s string) (string, error) {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " "), nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", fmt.Errorf("parsing input as HTML: %w", err)
	}

	sb := strings.Builder{}
	for _, n := range nodes {
		Node2string(n, &sb)
	}

	return sb.String(), nil
}

// PlainTextLines is PlainText applied per line, keeping line breaks of
// multi-line input such as a message body.
func PlainTextLines(s string) (string, error) {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		text, err := PlainText(line)
		if err != nil {
			return "", err
		}

		out = append(out, text)
	}

	return strings.TrimSpace(strings.Join(out, "\n")), nil
}
