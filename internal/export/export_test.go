package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/msds-extract/internal/extract"
	"github.com/a3tai/msds-extract/internal/pipeline"
)

func f(v float64) *float64 { return &v }

func sampleResults() []*pipeline.Result {
	ok := &pipeline.Result{
		Source: "/data/sheet-a.pdf",
		Composition: []extract.Ingredient{
			{Name: "Sodium hydroxide", Alias: "가성소다", CAS: "1310-73-2", ConcRaw: "4~5%",
				Low: f(4), High: f(5), Unit: "%", Rep: f(4.5), Source: "table:textgrid"},
		},
		Properties: []extract.Property{
			{Key: "ph", Label: "pH", Value: "13", Source: "table"},
		},
		Regulatory: []extract.RegulatoryItem{
			{Chemical: "1310-73-2", Raw: "작업환경측정 대상물질", Norm: "작업환경측정대상물질",
				Category: "작업환경측정물질", Score: 100, Source: "regex"},
		},
	}
	failed := &pipeline.Result{
		Source: "/data/broken.pdf",
		Err:    errors.New("no usable text"),
	}
	failed.ErrMessage = failed.Err.Error()
	return []*pipeline.Result{ok, failed}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()
	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteResultJSON(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.WriteResult(sampleResults()[0])
	require.NoError(t, err)
	assert.Equal(t, "sheet-a.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back pipeline.Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "/data/sheet-a.pdf", back.Source)
	require.Len(t, back.Composition, 1)
	assert.Equal(t, "1310-73-2", back.Composition[0].CAS)
}

func TestCompositionCSVSkipsFailedResults(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.WriteCompositionCSV(sampleResults())
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2) // header + one row
	assert.Equal(t, compositionHeader, rows[0])
	assert.Equal(t, []string{
		"/data/sheet-a.pdf", "Sodium hydroxide", "가성소다", "1310-73-2", "4~5%",
		"4", "5", "", "", "%", "4.5", "table:textgrid",
	}, rows[1])
}

func TestPropertiesCSVCarriesParser(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.WritePropertiesCSV(sampleResults())
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, propertiesHeader, rows[0])
	assert.Equal(t, []string{"/data/sheet-a.pdf", "ph", "pH", "13", "table"}, rows[1])
}

func TestRegulatoryCSV(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.WriteRegulatoryCSV(sampleResults())
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "작업환경측정물질", rows[1][5])
	assert.Equal(t, "100", rows[1][6])
	assert.Equal(t, "regex", rows[1][7])
}

func TestWriteAllProducesEveryArtifact(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	require.NoError(t, w.WriteAll(sampleResults()))

	for _, name := range []string{
		"sheet-a.json", "broken.json",
		"composition.csv", "properties.csv", "regulatory.csv",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestBaseNameFallback(t *testing.T) {
	assert.Equal(t, "document", baseName(&pipeline.Result{Source: ""}))
	assert.Equal(t, "sheet", baseName(&pipeline.Result{Source: "dir/sheet.PDF"}))
}
