// Package htmldoc converts HTML documents to Markdown.
//
// The document is parsed once, script, style and noscript subtrees are
// dropped, and the body is rendered to Markdown. When the document
// carries a <title> and the body does not open with a heading, the
// title becomes a top-level heading.
package htmldoc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// Config holds converter options.
type Config struct {
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter converts HTML files and strings to Markdown.
type Converter struct {
	logger *slog.Logger
	md     *converter.Converter
}

// New creates a Converter with the given configuration.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{
		logger: cfg.Logger,
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Convert reads the HTML file at path and returns its Markdown
// rendition.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read html file: %w", err)
	}

	c.logger.Debug("converting html", "path", path, "bytes", len(data))

	return c.Markdown(string(data))
}

// Markdown converts an HTML string to Markdown.
func (c *Converter) Markdown(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	title := strings.TrimSpace(textContent(findElement(doc, "title")))
	dropNonContent(doc)

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}

	var buf strings.Builder
	if err := html.Render(&buf, body); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}

	markdown, err := c.md.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert html: %w", err)
	}

	markdown = cleanMarkdown(markdown)
	if title != "" && !strings.HasPrefix(markdown, "#") {
		markdown = strings.TrimSpace("# " + title + "\n\n" + markdown)
	}
	return markdown, nil
}

// findElement returns the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tagName); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// dropNonContent removes script, style and noscript subtrees.
func dropNonContent(root *html.Node) {
	var doomed []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				switch c.Data {
				case "script", "style", "noscript":
					doomed = append(doomed, c)
					continue
				}
			}
			walk(c)
		}
	}
	walk(root)
	for _, n := range doomed {
		n.Parent.RemoveChild(n)
	}
}

// cleanMarkdown collapses runs of blank lines to one and trims the
// result.
func cleanMarkdown(markdown string) string {
	lines := strings.Split(markdown, "\n")
	cleaned := make([]string, 0, len(lines))
	prevBlank := false
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		cleaned = append(cleaned, line)
		prevBlank = blank
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
