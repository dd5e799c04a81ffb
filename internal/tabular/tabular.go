package tabular

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/printer-harvest/internal/model"
)

// Format is an artifact file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("tabular: unsupported extension for %q (want .csv or .xlsx)", path)
	}
}

// WriteURLs overwrites path with the collected URLs.
func WriteURLs(path string, urls []model.CollectedURL) error {
	if err := write(path, urlRows(urls), URLRow{}); err != nil {
		return err
	}
	zap.L().Info("tabular: wrote urls", zap.String("path", path), zap.Int("rows", len(urls)))
	return nil
}

// WriteProducts overwrites path with the product records.
func WriteProducts(path string, records []model.ProductRecord) error {
	if err := write(path, productRows(records), ProductRow{}); err != nil {
		return err
	}
	zap.L().Info("tabular: wrote products", zap.String("path", path), zap.Int("rows", len(records)))
	return nil
}

// ReadURLs loads a collected-URL artifact.
func ReadURLs(path string) ([]model.CollectedURL, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case FormatXLSX:
		records, err = readXLSX(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	records = squareUp(records)
	if len(records) == 0 {
		return nil, nil
	}

	var rows []URLRow
	if err := decode(records, &rows); err != nil {
		return nil, eris.Wrapf(err, "tabular: decode %s", path)
	}
	return collected(rows), nil
}

// write encodes rows with a header taken from the zero value, so an empty
// artifact still carries its schema.
func write[T any](path string, rows []T, zero T) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	records, err := encode(rows, zero)
	if err != nil {
		return eris.Wrapf(err, "tabular: encode %s", path)
	}

	return replaceFile(path, func(w io.Writer) error {
		if format == FormatXLSX {
			return writeXLSX(w, records)
		}
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(records); err != nil {
			return eris.Wrap(err, "tabular: write csv")
		}
		return nil
	})
}

func encode[T any](rows []T, zero T) ([][]string, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(zero); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return csv.NewReader(&buf).ReadAll()
}

func decode[T any](records [][]string, out *[]T) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(records); err != nil {
		return err
	}

	dec, err := csvutil.NewDecoder(csv.NewReader(&buf))
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	for {
		var v T
		if err := dec.Decode(&v); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		*out = append(*out, v)
	}
}

// squareUp drops blank rows and pads or truncates the rest to the header
// width. Spreadsheets omit trailing empty cells.
func squareUp(records [][]string) [][]string {
	var out [][]string
	width := 0
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		if width == 0 {
			width = len(rec)
		}
		for len(rec) < width {
			rec = append(rec, "")
		}
		out = append(out, rec[:width])
	}
	return out
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: read csv %s", path)
	}
	return records, nil
}

// replaceFile writes through a temp file in the target directory and renames
// it over path, so readers never see a partial artifact.
func replaceFile(path string, fill func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "tabular: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "tabular: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := fill(tmp); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return err
	}
	// CreateTemp opens 0600; artifacts are shared like any written file.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return eris.Wrap(err, "tabular: chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "tabular: close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "tabular: replace %s", path)
	}
	return nil
}
