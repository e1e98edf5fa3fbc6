package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// navChromeSelector matches the navigation/boilerplate regions excluded from
// full-body extraction.
const navChromeSelector = "nav, header, footer, aside, .menu, .sidebar, .navigation, #header, #footer, #menu, #nav"

// ExtractMainContent pulls the readable text of a page, trying in order: a
// semantic main-content container, the body with navigation chrome removed,
// and finally a concatenation of paragraph/heading/list elements.
func ExtractMainContent(doc *goquery.Document) string {
	if main := doc.Find(`main, article, [role="main"], .content, #content`).First(); main.Length() > 0 {
		if text := strings.TrimSpace(main.Text()); text != "" {
			return text
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		clone := body.Clone()
		clone.Find(navChromeSelector).Remove()
		if text := strings.TrimSpace(clone.Text()); len(text) >= minContentChars {
			return text
		}
	}

	var blocks []string
	doc.Find("p, h1, h2, h3, h4, h5, h6, li").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n\n")
}

// recognized meta names, besides the og:/twitter: prefixes
var metaAllowList = map[string]bool{
	"description": true,
	"keywords":    true,
	"author":      true,
}

// ExtractMetaTags collects the restricted set of meta tags: description,
// keywords, author, and anything namespaced og: or twitter:. Other names are
// ignored rather than propagated.
func ExtractMetaTags(doc *goquery.Document) map[string]string {
	metadata := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			name, _ = s.Attr("property")
		}
		content, _ := s.Attr("content")
		if name == "" || content == "" {
			return
		}
		if metaAllowList[name] || strings.HasPrefix(name, "og:") || strings.HasPrefix(name, "twitter:") {
			metadata[name] = content
		}
	})
	return metadata
}

// extractAllText walks every text node in the document, skipping script-like
// elements. Fallback for pages where structured extraction found nothing.
func extractAllText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "svg":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String())
}
