package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/paramseq"
)

// WriteCSV writes one header line followed by one line per row. Missing
// values are written as empty cells.
func WriteCSV(r *Report, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	line := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		for j, v := range row {
			if v == nil {
				line[j] = ""
				continue
			}
			line[j] = paramseq.FormatValue(v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteCSVFile(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(r, f); err != nil {
		return err
	}
	return f.Close()
}
