package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/draftmill/draftmill/internal/document"
)

// CSVParser handles CSV files. The whole file becomes one table block,
// first row as headers, so spreadsheets come out as styled DOCX tables.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &document.Document{Title: docTitle(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	doc.Blocks = append(doc.Blocks, document.Table{
		Headers: records[0],
		Rows:    records[1:],
	})
	return doc, nil
}
