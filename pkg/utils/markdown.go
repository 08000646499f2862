package utils

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"[", "\\[",
	"]", "\\]",
	"#", "\\#",
	"|", "\\|",
)

// EscapeMarkdown escaped Zeichen, die in Überschriften und Tabellen stören
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// Elemente, nach denen ein Zeilenumbruch folgt
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Tr: true, atom.Figure: true, atom.Figcaption: true,
}

// PlainText macht aus Basecamp Rich-Text (HTML) lesbaren Text.
// Kommentare, Attribute, script und style fallen weg, Block-Elemente werden zu Zeilen.
func PlainText(richText string) string {
	if strings.TrimSpace(richText) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(richText))
	if err != nil {
		return strings.TrimSpace(richText)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.CommentNode, html.DoctypeNode:
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.Br:
				b.WriteString("\n")
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			b.WriteString("\n")
		}
	}
	walk(doc)

	return collapseLines(b.String())
}

// collapseLines trimmt jede Zeile und lässt höchstens eine Leerzeile am Stück stehen.
func collapseLines(text string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// TruncateText kürzt Text auf maximale Länge (in Zeichen, nicht Bytes)
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return string(runes[:max(maxLength, 0)])
	}
	return string(runes[:maxLength-3]) + "..."
}
