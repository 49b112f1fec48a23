// Package export writes displayed tables as delimited text.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/okian/bankdash/internal/view"
)

// ErrNoColumns is returned for a table without a header.
var ErrNoColumns = errors.New("table has no columns")

// ContentType is the media type of WriteCSV output.
const ContentType = "text/csv; charset=utf-8"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// WriteCSV writes the header and every row of t. It returns the number of
// data rows written.
func WriteCSV(w io.Writer, t view.Table) (int, error) {
	if len(t.Columns) == 0 {
		return 0, ErrNoColumns
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	n := 0
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return n, fmt.Errorf("write row %d: %w", i, err)
		}
		n++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flush: %w", err)
	}
	return n, nil
}

// Filename returns a download name for t.
func Filename(t view.Table) string {
	name := strings.Trim(unsafeName.ReplaceAllString(t.Name, "_"), "_")
	if name == "" {
		name = "export"
	}
	return name + ".csv"
}
