package niad

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	japaneseHeading = "h2#jp"
	englishHeading  = "h2#en"
	termDetailBlock = "div.term_detail"
)

// ExtractDetail reads one detail page. The Japanese heading and the detail
// block right after it are required; the English pair is optional and left
// empty when the site has no English text for the term.
func ExtractDetail(page, sourceURL string) (Record, error) {
	return extractDetail(page, sourceURL, slog.Default())
}

func extractDetail(page, sourceURL string, logger *slog.Logger) (Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Record{}, &ParseError{URL: sourceURL, Reason: "invalid html", Err: err}
	}

	termJA, detailJA, ok := section(doc, japaneseHeading)
	if !ok {
		return Record{}, &ParseError{URL: sourceURL, Reason: "missing the Japanese section " + japaneseHeading + " + " + termDetailBlock}
	}
	if termJA == "" {
		return Record{}, &ParseError{URL: sourceURL, Reason: "empty Japanese term"}
	}
	if detailJA == "" {
		logger.Info("the Japanese detail block is empty", "url", sourceURL, "term", termJA)
	}

	termEN, detailEN, ok := section(doc, englishHeading)
	if !ok {
		logger.Info("no English section, leaving the English fields empty", "url", sourceURL, "term", termJA)
	}

	return Record{
		TermJA:    termJA,
		TermEN:    termEN,
		DetailJA:  detailJA,
		DetailEN:  detailEN,
		SourceURL: sourceURL,
	}, nil
}

// section finds a heading followed directly by its detail block.
func section(doc *goquery.Document, headingSelector string) (term, detail string, ok bool) {
	heading := doc.Find(headingSelector).First()
	if heading.Length() == 0 {
		return "", "", false
	}
	block := heading.Next()
	if !block.Is(termDetailBlock) {
		return "", "", false
	}
	return headingText(heading.Get(0)), nodeText(block.Get(0)), true
}
