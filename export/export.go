// Package export serializes extracted rate tables to delimited output.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/sig-0/tcventanilla/provider/bccr"
)

// Write writes the table as CSV: the header line first, one line per
// row, standard quoting for cells containing delimiters or quotes
func Write(w io.Writer, table *bccr.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.WriteAll(table.Records()); err != nil {
		return fmt.Errorf("unable to write CSV: %w", err)
	}

	return nil
}

// WriteFile writes the table as CSV to the given path
func WriteFile(path string, table *bccr.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}

	if err := Write(file, table); err != nil {
		_ = file.Close()

		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("unable to close output file: %w", err)
	}

	return nil
}
