// Package export renders pipeline results to disk: one JSON document per
// result plus flat CSV tables for composition, properties and regulatory
// listings. Column sets keep enough provenance to trace every row back to
// the parser that produced it.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/a3tai/msds-extract/internal/pipeline"
)

// Writer writes all artifacts for results into a directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create dir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// baseName derives the per-document file stem from the result source.
func baseName(r *pipeline.Result) string {
	b := filepath.Base(r.Source)
	if ext := filepath.Ext(b); ext != "" {
		b = strings.TrimSuffix(b, ext)
	}
	if b == "" || b == "." {
		b = "document"
	}
	return b
}

// WriteResult writes the full JSON result for one document.
func (w *Writer) WriteResult(r *pipeline.Result) (string, error) {
	path := filepath.Join(w.dir, baseName(r)+".json")
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: marshal %s: %w", r.Source, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}

var compositionHeader = []string{"source", "name", "alias", "cas", "conc_raw", "low", "high", "value", "cmp", "unit", "rep", "parser"}

// WriteCompositionCSV writes the combined composition table for a batch.
func (w *Writer) WriteCompositionCSV(results []*pipeline.Result) (string, error) {
	path := filepath.Join(w.dir, "composition.csv")
	return path, w.writeCSV(path, compositionHeader, func(cw *csv.Writer) error {
		for _, r := range results {
			if r.Failed() {
				continue
			}
			for _, row := range r.Composition {
				rec := []string{
					r.Source, row.Name, row.Alias, row.CAS, row.ConcRaw,
					fstr(row.Low), fstr(row.High), fstr(row.Value),
					row.Cmp, row.Unit, fstr(row.Rep), row.Source,
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

var propertiesHeader = []string{"source", "key", "label", "value", "parser"}

// WritePropertiesCSV writes the combined physical/chemical property table.
func (w *Writer) WritePropertiesCSV(results []*pipeline.Result) (string, error) {
	path := filepath.Join(w.dir, "properties.csv")
	return path, w.writeCSV(path, propertiesHeader, func(cw *csv.Writer) error {
		for _, r := range results {
			if r.Failed() {
				continue
			}
			for _, p := range r.Properties {
				if err := cw.Write([]string{r.Source, p.Key, p.Label, p.Value, p.Source}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

var regulatoryHeader = []string{"source", "chemical", "raw", "norm", "threshold", "match_category", "match_score", "match_source"}

// WriteRegulatoryCSV writes the combined regulatory listing table.
func (w *Writer) WriteRegulatoryCSV(results []*pipeline.Result) (string, error) {
	path := filepath.Join(w.dir, "regulatory.csv")
	return path, w.writeCSV(path, regulatoryHeader, func(cw *csv.Writer) error {
		for _, r := range results {
			if r.Failed() {
				continue
			}
			for _, it := range r.Regulatory {
				rec := []string{
					r.Source, it.Chemical, it.Raw, it.Norm, it.Threshold,
					it.Category, strconv.Itoa(it.Score), it.Source,
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// WriteAll writes every artifact for a batch: per-document JSON plus the
// three combined CSV tables.
func (w *Writer) WriteAll(results []*pipeline.Result) error {
	for _, r := range results {
		if _, err := w.WriteResult(r); err != nil {
			return err
		}
	}
	if _, err := w.WriteCompositionCSV(results); err != nil {
		return err
	}
	if _, err := w.WritePropertiesCSV(results); err != nil {
		return err
	}
	_, err := w.WriteRegulatoryCSV(results)
	return err
}

func (w *Writer) writeCSV(path string, header []string, body func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header %s: %w", path, err)
	}
	if err := body(cw); err != nil {
		return fmt.Errorf("export: write rows %s: %w", path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush %s: %w", path, err)
	}
	return nil
}

func fstr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
