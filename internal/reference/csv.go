package reference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"geosampler/internal/models"
)

// DefaultComma is the separator of the bundled reference files.
const DefaultComma = ';'

var headerAliases = map[string]string{
	"cityname":   "name",
	"name":       "name",
	"city":       "name",
	"postalcode": "postal_code",
	"zipcode":    "postal_code",
	"zip":        "postal_code",
	"plz":        "postal_code",
	"latitude":   "latitude",
	"lat":        "latitude",
	"longitude":  "longitude",
	"lng":        "longitude",
	"lon":        "longitude",
}

// CSVSource reads a delimited file whose first line is a header naming the
// name, postal code, latitude and longitude columns.
type CSVSource struct {
	Path  string
	Comma rune
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, Comma: DefaultComma}
}

func (s *CSVSource) Load(ctx context.Context) (*Result, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer f.Close()

	comma := s.Comma
	if comma == 0 {
		comma = DefaultComma
	}
	return ParseCSV(ctx, f, comma)
}

// ParseCSV reads reference rows from r.
func ParseCSV(ctx context.Context, r io.Reader, comma rune) (*Result, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read reference header: %w", err)
	}
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.skip("csv", line, parseErr.Err.Error())
				continue
			}
			return nil, fmt.Errorf("failed to read reference row %d: %w", line, err)
		}

		row, err := columns.row(record)
		if err != nil {
			res.skip("csv", line, err.Error())
			continue
		}
		res.accept(row)
	}
	return res, nil
}

type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, error) {
	cols := columnIndex{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.NewReplacer("_", "", " ", "", "-", "", "\ufeff", "").Replace(key)
		if field, ok := headerAliases[key]; ok {
			if _, seen := cols[field]; !seen {
				cols[field] = i
			}
		}
	}
	for _, field := range []string{"name", "postal_code", "latitude", "longitude"} {
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("reference header %v has no %s column", header, field)
		}
	}
	return cols, nil
}

func (c columnIndex) field(record []string, name string) (string, error) {
	i := c[name]
	if i >= len(record) {
		return "", fmt.Errorf("missing %s", name)
	}
	return strings.TrimSpace(record[i]), nil
}

func (c columnIndex) row(record []string) (models.Row, error) {
	var row models.Row
	var err error
	if row.Name, err = c.field(record, "name"); err != nil {
		return row, err
	}
	if row.PostalCode, err = c.field(record, "postal_code"); err != nil {
		return row, err
	}
	if row.Latitude, err = c.float(record, "latitude"); err != nil {
		return row, err
	}
	if row.Longitude, err = c.float(record, "longitude"); err != nil {
		return row, err
	}
	return row, row.Validate()
}

func (c columnIndex) float(record []string, name string) (float64, error) {
	raw, err := c.field(record, name)
	if err != nil {
		return 0, err
	}
	// Some exports use a decimal comma.
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable %s %q", name, raw)
	}
	return v, nil
}
