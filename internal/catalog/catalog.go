// Package catalog holds the read-only emiten code list loaded at startup.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"StockAssistant/internal/model"
)

// ErrUnknownEmiten means a code is not in the catalog.
var ErrUnknownEmiten = errors.New("unknown emiten code")

const (
	codeColumn = "Kode"
	nameColumn = "Nama Perusahaan"
)

// Catalog maps emiten codes to company names. It is safe for concurrent
// reads and never mutated after Load.
type Catalog struct {
	list  []model.Emiten
	index map[string]int
}

// LoadFile reads the catalog from a CSV file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a CSV with a header row containing "Kode" and
// "Nama Perusahaan" columns. Other columns are ignored; duplicate codes keep
// the first row.
func Load(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	codeIdx, nameIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case codeColumn:
			codeIdx = i
		case nameColumn:
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("catalog header must contain %q and %q, got %v", codeColumn, nameColumn, header)
	}

	c := &Catalog{index: make(map[string]int)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog line %d: %w", line, err)
		}
		if codeIdx >= len(rec) || nameIdx >= len(rec) {
			return nil, fmt.Errorf("catalog line %d: expected at least %d fields", line, max(codeIdx, nameIdx)+1)
		}
		code := normalize(rec[codeIdx])
		if code == "" {
			continue
		}
		if _, dup := c.index[code]; dup {
			continue
		}
		c.index[code] = len(c.list)
		c.list = append(c.list, model.Emiten{Code: code, Name: strings.TrimSpace(rec[nameIdx])})
	}
	if len(c.list) == 0 {
		return nil, errors.New("catalog is empty")
	}
	return c, nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Codes returns all codes in file order.
func (c *Catalog) Codes() []string {
	out := make([]string, len(c.list))
	for i, e := range c.list {
		out[i] = e.Code
	}
	return out
}

// List returns a copy of all entries in file order.
func (c *Catalog) List() []model.Emiten {
	out := make([]model.Emiten, len(c.list))
	copy(out, c.list)
	return out
}

// Lookup returns the entry for code, case-insensitively.
func (c *Catalog) Lookup(code string) (model.Emiten, error) {
	i, ok := c.index[normalize(code)]
	if !ok {
		return model.Emiten{}, fmt.Errorf("%w: %q", ErrUnknownEmiten, code)
	}
	return c.list[i], nil
}

// Name returns the company name for code, or "" if unknown.
func (c *Catalog) Name(code string) string {
	e, err := c.Lookup(code)
	if err != nil {
		return ""
	}
	return e.Name
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.list) }
