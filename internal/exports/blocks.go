// Package exports renders stored document content to downloadable PDF and
// DOCX attachments.
package exports

import (
	"strings"

	"golang.org/x/net/html"
)

// BlockKind classifies a block-level element extracted from stored HTML.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBullet
)

// Block is one renderable unit: plain text plus enough structure to pick a
// style. Styling and attributes from the source HTML are not preserved.
type Block struct {
	Kind  BlockKind
	Level int // heading level 1..6, zero otherwise
	Text  string
}

// ParseBlocks extracts block-level content from an HTML fragment. The parser
// is tolerant: malformed markup never fails, it just yields whatever text
// the tree contains. Paragraphs, divs, headings h1 to h6 and list items each
// produce one block; a heading with an unparsable level falls back to a
// paragraph.
func ParseBlocks(fragment string) []Block {
	if strings.TrimSpace(fragment) == "" {
		return []Block{}
	}

	// html.Parse never returns an error for token garbage, it repairs the
	// tree instead. An error here means a broken reader, which a string
	// reader cannot produce.
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return []Block{{Kind: BlockParagraph, Text: strings.TrimSpace(fragment)}}
	}

	blocks := []Block{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if block, ok := blockFor(n); ok {
				if block.Text != "" {
					blocks = append(blocks, block)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	// A fragment with no recognized block elements still carries text.
	if len(blocks) == 0 {
		if text := collapseSpace(textContent(root)); text != "" {
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: text})
		}
	}
	return blocks
}

func blockFor(n *html.Node) (Block, bool) {
	text := collapseSpace(textContent(n))
	switch n.Data {
	case "p", "div":
		// A div that only wraps other block elements is a container, not a
		// paragraph.
		if containsBlockChild(n) {
			return Block{}, false
		}
		return Block{Kind: BlockParagraph, Text: text}, true
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		if level < 1 || level > 6 {
			return Block{Kind: BlockParagraph, Text: text}, true
		}
		return Block{Kind: BlockHeading, Level: level, Text: text}, true
	case "li":
		return Block{Kind: BlockBullet, Text: text}, true
	}
	return Block{}, false
}

func containsBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li":
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BlocksFromPlainText converts raw extracted text into paragraph blocks,
// one per non-empty line.
func BlocksFromPlainText(text string) []Block {
	blocks := []Block{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: line})
	}
	return blocks
}
