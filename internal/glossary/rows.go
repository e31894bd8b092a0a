package glossary

import (
	"github.com/at-ishikawa/termbase/internal/niad"
)

// ExternalHeader is the first line of the external glossary file.
var ExternalHeader = Row{"JA", "EN", "DETAILS_JA", "DETAILS_EN", "URL"}

// RecordRows lays records out as external glossary rows, header first.
func RecordRows(records []niad.Record) []Row {
	rows := make([]Row, 0, len(records)+1)
	rows = append(rows, ExternalHeader)
	for _, r := range records {
		rows = append(rows, Row{r.TermJA, r.TermEN, r.DetailJA, r.DetailEN, r.SourceURL})
	}
	return rows
}

// RowsOf converts plain string rows, as returned by the spreadsheet source.
func RowsOf(values [][]string) []Row {
	if values == nil {
		return nil
	}
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = v
	}
	return rows
}
