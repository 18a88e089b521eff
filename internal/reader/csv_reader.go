package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

type CSVReader struct {
	r         io.Reader
	delimiter rune
	comment   rune
}

type CSVOption func(*CSVReader)

func WithDelimiter(d rune) CSVOption {
	return func(c *CSVReader) { c.delimiter = d }
}

// WithComment skips lines starting with ch.
func WithComment(ch rune) CSVOption {
	return func(c *CSVReader) { c.comment = ch }
}

func NewCSVReader(r io.Reader, opts ...CSVOption) *CSVReader {
	c := &CSVReader{r: r, delimiter: ','}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read consumes the whole input. The first line is the header; every row
// must have as many cells as the header.
func (c *CSVReader) Read() (*Records, error) {
	cr := csv.NewReader(c.r)
	cr.Comma = c.delimiter
	cr.Comment = c.comment
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	recs := &Records{Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", len(recs.Rows)+1, err)
		}
		recs.Rows = append(recs.Rows, row)
	}
	return recs, nil
}

// ReadCSVFile reads the CSV file at path.
func ReadCSVFile(path string, opts ...CSVOption) (*Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return NewCSVReader(f, opts...).Read()
}
