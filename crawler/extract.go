package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SelectorNotFoundError reports a CSS selector that matched nothing on the
// fetched page.
type SelectorNotFoundError struct {
	Selector string
}

func (e *SelectorNotFoundError) Error() string {
	return fmt.Sprintf("Selector %q not found on page.", e.Selector)
}

// ExtractText pulls the text of the first element matching selector. An
// empty selector extracts the whole body text.
func ExtractText(html, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}

	if strings.TrimSpace(selector) == "" {
		return strings.TrimSpace(doc.Find("body").Text()), nil
	}

	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return "", &SelectorNotFoundError{Selector: selector}
	}
	return strings.TrimSpace(sel.First().Text()), nil
}

// ChapterLink is one entry discovered on a table-of-contents page.
type ChapterLink struct {
	Title string
	URL   string
}

// ExtractChapterLinks collects anchors under the container matched by
// selector (the whole document when selector is empty), resolving relative
// hrefs against baseURL. Links without a title or usable href are skipped.
func ExtractChapterLinks(html, selector, baseURL string) ([]ChapterLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", baseURL, err)
	}

	root := doc.Selection
	if strings.TrimSpace(selector) != "" {
		root = doc.Find(selector)
	}

	links := []ChapterLink{}
	root.Find("a").Each(func(_ int, a *goquery.Selection) {
		title := strings.TrimSpace(a.Text())
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if resolved == "" {
			return
		}
		links = append(links, ChapterLink{Title: title, URL: resolved})
	})

	return links, nil
}
