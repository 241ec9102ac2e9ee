package converter

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// HTMLConverter extracts the main content of an HTML document with
// readability and renders it as markdown.
type HTMLConverter struct{}

func (c *HTMLConverter) Signatures() []string {
	return []string{"html", "htm", "xhtml"}
}

func (c *HTMLConverter) Convert(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading HTML: %w", err)
	}
	html := string(data)

	article, err := readability.FromReader(strings.NewReader(html), baseURL(filename))
	if err != nil {
		return nil, fmt.Errorf("extracting main content: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(article.Content)
	if err != nil {
		// Readability always has a plain-text rendition to fall back on.
		markdown = article.TextContent
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		markdown = strings.TrimSpace(article.TextContent)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = documentTitle(html)
	}
	if title != "" && !strings.HasPrefix(markdown, "#") {
		markdown = fmt.Sprintf("# %s\n\n%s", title, markdown)
	}

	return &Result{Markdown: markdown, Title: title}, nil
}

// baseURL resolves relative links against the source URL when the filename
// hint is one, or a placeholder origin for plain uploads.
func baseURL(filename string) *url.URL {
	if u, err := url.Parse(filename); err == nil && u.Scheme != "" && u.Host != "" {
		return u
	}
	u, _ := url.Parse("http://localhost/")
	return u
}

// documentTitle pulls <title> (or og:title) when readability found none.
func documentTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
}
