// Package niad scrapes the NIAD-QE glossary site into bilingual records.
package niad

import "fmt"

// TermRef is one entry of the glossary index page.
type TermRef struct {
	Term      string
	DetailURL string
}

// Record is one term's Japanese/English text taken from its detail page.
// TermEN and DetailEN are empty when the page has no English section.
type Record struct {
	TermJA    string
	TermEN    string
	DetailJA  string
	DetailEN  string
	SourceURL string
}

// ParseError means a page no longer has the structure the extractors rely on,
// which usually means the site changed its markup.
type ParseError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "failed to parse"
	if e.URL != "" {
		msg += " " + e.URL
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
