// Package export renders projected logbook tables as CSV, JSON or a simple
// paginated text PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oplog/oplog/logbook"

	"github.com/goccy/go-json"
	"github.com/natefinch/atomic"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPDF, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// Extension is the file name suffix for f, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// WriteCSV writes the table with exactly one header row.
func WriteCSV(w io.Writer, table logbook.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteJSON writes the table as an array of header-keyed objects.
func WriteJSON(w io.Writer, table logbook.Table) error {
	objs := make([]map[string]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		obj := make(map[string]string, len(table.Headers))
		for i, h := range table.Headers {
			if i < len(row) {
				obj[h] = row[i]
			}
		}
		objs = append(objs, obj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objs)
}

// Write renders table in format f.
func Write(w io.Writer, f Format, table logbook.Table, title string) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatJSON:
		return WriteJSON(w, table)
	case FormatPDF:
		return WritePDF(w, table, title)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteFile renders table into path. The file is replaced atomically, so an
// earlier export is never left half-written.
func WriteFile(path string, f Format, table logbook.Table, title string) error {
	var buf bytes.Buffer
	if err := Write(&buf, f, table, title); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return os.Chmod(path, 0o644)
}

// FileName builds a default export file name such as "logbook-alice.pdf".
func FileName(owner string, f Format) string {
	owner = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, owner)
	if owner == "" {
		owner = "all"
	}
	return fmt.Sprintf("logbook-%s.%s", owner, f.Extension())
}
