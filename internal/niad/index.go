package niad

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	japaneseTermsHeading = "h2#term_jp"
	englishTermsHeading  = "h2#term_en"
	termListBlock        = "ul.term_list"
	termListLink         = "li > a[href]"
)

// DefaultIndexURL is the glossary index of the NIAD-QE site.
const DefaultIndexURL = "https://niadqe.jp/glossary/"

// IndexExtractor turns the glossary index page into term references.
type IndexExtractor struct {
	baseURL     *url.URL
	linkPattern *regexp.Regexp
}

// NewIndexExtractor accepts detail links of the form <indexURL><segment>/.
// When indexURL names a file such as index.html, its directory is used.
// Relative links are resolved against indexURL before they are matched.
func NewIndexExtractor(indexURL string) (*IndexExtractor, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse(%s) > %w", indexURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("index url must be absolute: %s", indexURL)
	}

	dir := base.Path
	if path.Ext(dir) != "" {
		dir = path.Dir(dir)
	}
	prefix := strings.TrimSuffix(base.Scheme+"://"+base.Host+dir, "/") + "/"
	linkPattern, err := regexp.Compile("^" + regexp.QuoteMeta(prefix) + `[^/\s?#]+/$`)
	if err != nil {
		return nil, fmt.Errorf("regexp.Compile > %w", err)
	}
	return &IndexExtractor{
		baseURL:     base,
		linkPattern: linkPattern,
	}, nil
}

// ExtractIndex is a shortcut for an IndexExtractor on DefaultIndexURL.
func ExtractIndex(page string) ([]TermRef, error) {
	extractor, err := NewIndexExtractor(DefaultIndexURL)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(page)
}

// Extract returns the Japanese term list in page order. Only the part of the
// page between the Japanese and English term headings is read, and a page
// without those headings is a ParseError.
func (e *IndexExtractor) Extract(page string) ([]TermRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &ParseError{URL: e.baseURL.String(), Reason: "invalid html", Err: err}
	}

	start := doc.Find(japaneseTermsHeading).First()
	if start.Length() == 0 {
		return nil, &ParseError{URL: e.baseURL.String(), Reason: "missing the Japanese terms heading " + japaneseTermsHeading}
	}
	end := doc.Find(englishTermsHeading).First()
	if end.Length() == 0 {
		return nil, &ParseError{URL: e.baseURL.String(), Reason: "missing the English terms heading " + englishTermsHeading}
	}

	termLists := make(map[*html.Node]bool)
	for _, n := range doc.Find(termListBlock).Nodes {
		termLists[n] = true
	}
	blocks, ok := nodesBetween(doc.Get(0), start.Get(0), end.Get(0), func(n *html.Node) bool {
		return termLists[n]
	})
	if !ok {
		return nil, &ParseError{URL: e.baseURL.String(), Reason: "the English terms heading precedes the Japanese one"}
	}

	var refs []TermRef
	for _, block := range blocks {
		goquery.NewDocumentFromNode(block).Find(termListLink).Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			detailURL, ok := e.detailURL(href)
			if !ok {
				return
			}
			term := normalizeText(a.Text())
			if term == "" {
				return
			}
			refs = append(refs, TermRef{Term: term, DetailURL: detailURL})
		})
	}
	return refs, nil
}

func (e *IndexExtractor) detailURL(href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	resolved := e.baseURL.ResolveReference(ref).String()
	if !e.linkPattern.MatchString(resolved) {
		return "", false
	}
	return resolved, true
}

// nodesBetween walks the tree in document order and collects the outermost
// nodes matching match that appear after start and before end. ok is false
// when end is reached before start.
func nodesBetween(root, start, end *html.Node, match func(*html.Node) bool) (nodes []*html.Node, ok bool) {
	inside := false
	done := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if done {
			return
		}
		switch {
		case n == end:
			done = true
			return
		case n == start:
			inside = true
			// the heading itself holds no term lists
			return
		case inside && n.Type == html.ElementNode && match(n):
			nodes = append(nodes, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return nodes, inside
}
