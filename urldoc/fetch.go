// Package urldoc fetches web pages and converts their main content to
// Markdown.
//
// Pages are fetched with a plain HTTP GET, the main content subtree is
// located by semantic landmarks or text density, sanitized, and
// rendered to Markdown with the page title as a top-level heading.
package urldoc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/babissal/filetomd/htmldoc"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; filetomd/0.1)"
)

// Config holds converter options.
type Config struct {
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
	// Timeout bounds the whole fetch. Defaults to 30 seconds.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
}

// Converter fetches web pages and converts them to Markdown.
type Converter struct {
	logger    *slog.Logger
	client    *http.Client
	userAgent string
	policy    *bluemonday.Policy
	html      *htmldoc.Converter
}

// New creates a Converter with the given configuration.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{
		logger:    cfg.Logger,
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		policy:    bluemonday.UGCPolicy(),
		html:      htmldoc.New(htmldoc.Config{Logger: cfg.Logger}),
	}
}

// Convert fetches the page at rawURL and returns the Markdown
// rendition of its main content.
func (c *Converter) Convert(ctx context.Context, rawURL string) (string, error) {
	page, err := c.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	title := strings.TrimSpace(collectText(findByTag(doc, atom.Title)))

	var parts []string
	for _, node := range contentNodes(doc) {
		fragment := c.policy.Sanitize(renderNode(node))
		markdown, err := c.html.Markdown(fragment)
		if err != nil {
			return "", fmt.Errorf("failed to convert content: %w", err)
		}
		if markdown != "" {
			parts = append(parts, markdown)
		}
	}
	markdown := strings.Join(parts, "\n\n")

	if title != "" {
		markdown = "# " + title + "\n\n" + markdown
	}
	return strings.TrimSpace(markdown), nil
}

func (c *Converter) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch url: status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("fetched page", "url", rawURL, "bytes", len(body))
	return string(body), nil
}
