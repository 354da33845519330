package urldoc

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// minContentLen is the minimum text length for a subtree to count as
// content.
const minContentLen = 50

// boilerplatePattern matches class and id values that mark page
// chrome. The boundaries keep "nav" from matching "navy".
var boilerplatePattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget|aside|` +
		`cookie|advert|social|share|comment|related|popup|modal)([^a-z]|$)`)

// isBoilerplate reports whether a node is navigation or other page
// chrome, by semantic tag, ARIA role, or class/id pattern.
func isBoilerplate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Nav, atom.Footer, atom.Header, atom.Aside:
		return true
	}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "class", "id":
			if boilerplatePattern.MatchString(attr.Val) {
				return true
			}
		case "role":
			switch attr.Val {
			case "navigation", "banner", "contentinfo", "complementary":
				return true
			}
		}
	}
	return false
}

// contentNodes picks the subtrees most likely to hold the page's main
// content: semantic landmarks first, then the densest content node,
// then the whole body.
func contentNodes(doc *html.Node) []*html.Node {
	for _, tag := range []atom.Atom{atom.Main, atom.Article} {
		var landmarks []*html.Node
		for _, n := range findAllByTag(doc, tag) {
			if !isBoilerplate(n) && len(collectText(n)) >= minContentLen {
				landmarks = append(landmarks, n)
			}
		}
		if len(landmarks) > 0 {
			return landmarks
		}
	}

	body := findByTag(doc, atom.Body)
	if body == nil {
		body = doc
	}
	if best := densestNode(body); best != nil {
		return []*html.Node{best}
	}
	return []*html.Node{body}
}

// densestNode returns the content node with the best text-to-markup
// ratio, discounted by link density. Subtrees that are mostly links
// are treated as navigation and never win.
func densestNode(root *html.Node) *html.Node {
	var best *html.Node
	var bestScore float64

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode || isBoilerplate(n) {
			return
		}
		if isContentTag(n.DataAtom) || n.DataAtom == atom.Body {
			text := collectText(n)
			if len(text) >= minContentLen {
				markupLen := len(renderNode(n))
				if markupLen == 0 {
					markupLen = 1
				}
				linkDensity := float64(len(linkText(n))) / float64(len(text))
				if linkDensity <= 0.5 {
					score := float64(len(text)) / float64(markupLen) * logScale(len(text)) * (1 - linkDensity)
					if score > bestScore {
						bestScore = score
						best = n
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return best
}

// logScale grows slowly with text length so long passages beat short
// dense snippets without dominating outright.
func logScale(n int) float64 {
	if n <= 0 {
		return 0
	}
	scale := 1.0
	for v := n; v > 100; v /= 2 {
		scale++
	}
	return scale
}

// collectText extracts the visible text of a subtree, space-joined.
func collectText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// linkText extracts only the text inside <a> elements.
func linkText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inLink bool) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			inLink = true
		}
		if n.Type == html.TextNode && inLink {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inLink)
		}
	}
	walk(n, false)
	return sb.String()
}

// isContentTag returns true for tags likely to hold main content.
func isContentTag(a atom.Atom) bool {
	switch a {
	case atom.Main, atom.Article, atom.Section, atom.Div, atom.P,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Ul, atom.Ol, atom.Li,
		atom.Table, atom.Td, atom.Th, atom.Dl, atom.Dd, atom.Dt,
		atom.Figure, atom.Figcaption, atom.Details, atom.Summary:
		return true
	}
	return false
}

// renderNode serialises a subtree back to HTML.
func renderNode(n *html.Node) string {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// findByTag returns the first element with the given tag.
func findByTag(root *html.Node, tag atom.Atom) *html.Node {
	if root.Type == html.ElementNode && root.DataAtom == tag {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := findByTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findAllByTag returns every element with the given tag, in document
// order.
func findAllByTag(root *html.Node, tag atom.Atom) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == tag {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}
