package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer, false)
	return buffer.String()
}

// GetLines returns the text of a node where block level elements (rows,
// cells, paragraphs, list items, line breaks) begin a new line. Empty lines
// are dropped and every line is trimmed.
func GetLines(node *html.Node) []string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer, true)

	var lines []string
	for _, line := range strings.Split(buffer.String(), "\n") {
		line = CleanText(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Tr, atom.Td, atom.Th, atom.P, atom.Li, atom.Br,
		atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.Ul, atom.Ol, atom.Table:
		return true
	}
	return false
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer, breakBlocks bool) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	block := breakBlocks && node.Type == html.ElementNode && isBlock(node.DataAtom)
	if block {
		buffer.WriteByte('\n')
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer, breakBlocks)
		child = child.NextSibling
	}
	if block {
		buffer.WriteByte('\n')
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if c != '\n' && unicode.IsSpace(c) {
			c = ' '
		}
		if unicode.IsPrint(c) || c == '\n' {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText removes non-printable characters, collapses runs of whitespace and
// trims the result.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = removeNonPrintable(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
