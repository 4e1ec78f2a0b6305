package crawler

import (
	"errors"
	"testing"
)

func TestExtractTextWithSelector(t *testing.T) {
	html := `<html><body><div class="junk">nav</div><div id="content">  Chapter text here.  </div></body></html>`

	got, err := ExtractText(html, "#content")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "Chapter text here." {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextEmptySelectorUsesBody(t *testing.T) {
	html := `<html><body><p>First.</p></body></html>`

	got, err := ExtractText(html, "")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "First." {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextSelectorMiss(t *testing.T) {
	_, err := ExtractText(`<html><body><p>x</p></body></html>`, ".missing")

	var notFound *SelectorNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want SelectorNotFoundError, got %v", err)
	}
	if notFound.Selector != ".missing" {
		t.Fatalf("selector = %q", notFound.Selector)
	}
}

func TestExtractChapterLinksResolvesAndFilters(t *testing.T) {
	html := `<div class="c"><a href="/p1">Ch 1</a><a href="">Bad</a></div>`

	links, err := ExtractChapterLinks(html, ".c", "https://site.test/toc")
	if err != nil {
		t.Fatalf("ExtractChapterLinks: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1: %+v", len(links), links)
	}
	if links[0].Title != "Ch 1" || links[0].URL != "https://site.test/p1" {
		t.Fatalf("got %+v", links[0])
	}
}

func TestExtractChapterLinksKeepsDocumentOrder(t *testing.T) {
	html := `<ul class="toc">
		<li><a href="/c/2">Chapter 2</a></li>
		<li><a href="/c/1">Chapter 1</a></li>
		<li><a href="https://other.test/c/3">Chapter 3</a></li>
	</ul>`

	links, err := ExtractChapterLinks(html, ".toc", "https://site.test/novel")
	if err != nil {
		t.Fatalf("ExtractChapterLinks: %v", err)
	}
	want := []ChapterLink{
		{Title: "Chapter 2", URL: "https://site.test/c/2"},
		{Title: "Chapter 1", URL: "https://site.test/c/1"},
		{Title: "Chapter 3", URL: "https://other.test/c/3"},
	}
	if len(links) != len(want) {
		t.Fatalf("got %d links, want %d", len(links), len(want))
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("link %d = %+v, want %+v", i, links[i], want[i])
		}
	}
}

func TestExtractChapterLinksMissingContainerIsEmpty(t *testing.T) {
	links, err := ExtractChapterLinks(`<div><a href="/x">X</a></div>`, ".toc", "https://site.test/")
	if err != nil {
		t.Fatalf("ExtractChapterLinks: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("got %+v, want empty", links)
	}
}
