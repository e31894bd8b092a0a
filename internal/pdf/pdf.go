// Package pdf renders the merged glossary as a printable document.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

// RenderGlossaryMarkdown lays out term pairs as a two-column Markdown table.
// Each row holds the Japanese term first and the English term second.
func RenderGlossaryMarkdown(title string, rows [][]string) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	sb.WriteString("| 日本語 | English |\n")
	sb.WriteString("| --- | --- |\n")
	for _, row := range rows {
		var ja, en string
		if len(row) > 0 {
			ja = row[0]
		}
		if len(row) > 1 {
			en = row[1]
		}
		fmt.Fprintf(&sb, "| %s | %s |\n", cellEscaper.Replace(ja), cellEscaper.Replace(en))
	}
	return []byte(sb.String())
}

// WriteGlossary writes the Markdown rendering of rows to markdownPath and
// converts it to a PDF next to it. It returns the path of the PDF.
func WriteGlossary(markdownPath, title string, rows [][]string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(markdownPath), 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(markdownPath), err)
	}
	if err := os.WriteFile(markdownPath, RenderGlossaryMarkdown(title, rows), 0644); err != nil {
		return "", fmt.Errorf("os.WriteFile(%s) > %w", markdownPath, err)
	}
	return ConvertMarkdownToPDF(markdownPath)
}

// ConvertMarkdownToPDF converts a markdown file to PDF using mdtopdf package
// The PDF file will be created in the same directory as the markdown file
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"

	// TODO: register a CJK TrueType font; the core PDF fonts have no Japanese glyphs.
	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}

	return absPath, nil
}
