package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText returns the concatenated text of every text node under `node`,
// unlike goquery's Text() it does not skip the contents of <script> tags
// parsed as raw text.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// ScriptContents returns the inline source of every <script> element in document order,
// scripts with a src attribute and no body are skipped.
func ScriptContents(doc *goquery.Document) []string {
	var out []string
	for _, script := range doc.Find("script").Nodes {
		text := GetText(script)
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText trims a selection's text and collapses runs of whitespace.
func CleanText(sel *goquery.Selection) string {
	text := removeNonPrintable(sel.Text())
	text = strings.TrimSpace(text)
	return innerWhitespace.ReplaceAllString(text, " ")
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// NumericText strips every character that is not a digit or a decimal point,
// "$1,249.50 / night" becomes "1249.50".
func NumericText(s string) string {
	return nonNumeric.ReplaceAllString(s, "")
}
