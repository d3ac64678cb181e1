package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/msds-extract/internal/engine"
	"github.com/a3tai/msds-extract/internal/template"
)

func newCompExtractor() *CompositionExtractor {
	return NewCompositionExtractor([]engine.TableEngine{engine.NewTextGrid()}, nil)
}

func TestExtractCompositionTableRow(t *testing.T) {
	body := `화학물질명	CAS No.	함유량
Sodium hydroxide	1310-73-2	4~5%
Etchant base	64-17-5	10~20%`

	rows, missed, _ := newCompExtractor().Extract(body, template.Generic())
	require.Len(t, rows, 2)
	assert.Empty(t, missed)

	r := rows[0]
	assert.Equal(t, "Sodium hydroxide", r.Name)
	assert.Equal(t, "1310-73-2", r.CAS)
	assert.Equal(t, 4.0, *r.Low)
	assert.Equal(t, 5.0, *r.High)
	assert.Equal(t, 4.5, *r.Rep)
}

func TestExtractCompositionForbiddenCASDropped(t *testing.T) {
	body := `물질명	CAS No.	함유량
정제수	7732-18-5	90~95%
수산화나트륨	1310-73-2	4~5%`

	rows, _, _ := newCompExtractor().Extract(body, template.Generic())
	require.Len(t, rows, 1)
	assert.Equal(t, "1310-73-2", rows[0].CAS)
}

func TestExtractCompositionLineParseConcOnNextLine(t *testing.T) {
	body := `수산화나트륨 1310-73-2
4~5%`

	rows, _, _ := newCompExtractor().Extract(body, template.Generic())
	require.Len(t, rows, 1)
	assert.Equal(t, "1310-73-2", rows[0].CAS)
	assert.Equal(t, 4.5, *rows[0].Rep)
	assert.Equal(t, "line", rows[0].Source)
}

func TestExtractCompositionCommaSeparatedLine(t *testing.T) {
	body := `Sodium hydroxide, 1310-73-2, 4~5%
물, 7732-18-5, 95~96%`

	rows, missed, _ := newCompExtractor().Extract(body, template.Generic())
	require.Len(t, rows, 1)
	assert.Empty(t, missed)
	assert.Equal(t, "Sodium hydroxide", rows[0].Name)
	assert.Equal(t, "1310-73-2", rows[0].CAS)
	assert.Equal(t, 4.5, *rows[0].Rep)
}

func TestExtractCompositionMissedLineReported(t *testing.T) {
	body := "수산화나트륨 1310-73-2 함유량 비공개"

	rows, missed, _ := newCompExtractor().Extract(body, template.Generic())
	assert.Empty(t, rows)
	require.Len(t, missed, 1)
	assert.Contains(t, missed[0], "1310-73-2")
}

func TestExtractCompositionBlockerTruncates(t *testing.T) {
	body := `물질명	CAS No.	함유량
수산화나트륨	1310-73-2	4~5%
표기되지 않은 구성성분
나쁜행	64-17-5	10~20%`

	rows, _, diags := newCompExtractor().Extract(body, template.Generic())
	require.Len(t, rows, 1)
	assert.Equal(t, "1310-73-2", rows[0].CAS)
	assert.Contains(t, diags, "composition: blocker matched, body truncated")
}

func TestExtractCompositionExposureTableDropped(t *testing.T) {
	body := `국내기준 ACGIH TWA
개인보호구를 착용할 것`

	rows, _, diags := newCompExtractor().Extract(body, template.Generic())
	assert.Empty(t, rows)
	assert.Contains(t, diags, "composition: looks like exposure table, body dropped")
}

func TestExtractCompositionDedup(t *testing.T) {
	// the duplicated table row must appear once
	body := `물질명	CAS No.	함유량
Sodium hydroxide	1310-73-2	4~5%
Sodium hydroxide	1310-73-2	4~5%`

	rows, _, _ := newCompExtractor().Extract(body, template.Generic())
	require.Len(t, rows, 1)
}

type stubEngine struct{ name string }

func (s stubEngine) Name() string                 { return s.name }
func (s stubEngine) Tables(string) []engine.Table { return nil }

func TestOrderEnginesHonorsProfileOrder(t *testing.T) {
	a, b, c := stubEngine{"a"}, stubEngine{"b"}, stubEngine{"c"}
	got := orderEngines([]engine.TableEngine{a, b, c}, []string{"c", "a"})

	var names []string
	for _, e := range got {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestStackedHeaderLayout(t *testing.T) {
	// column labels stacked on their own lines, then value blocks of the
	// same stride
	body := `화학물질명
관용명
CAS No.
함유량
Sodium hydroxide
가성소다
1310-73-2
4~5%
Ethanol
에탄올
64-17-5
10%`

	rows, _, diags := newCompExtractor().Extract(body, template.Generic())
	require.Len(t, rows, 2)
	assert.Equal(t, "Sodium hydroxide", rows[0].Name)
	assert.Equal(t, "가성소다", rows[0].Alias)
	assert.Equal(t, "1310-73-2", rows[0].CAS)
	assert.Equal(t, 4.5, *rows[0].Rep)
	assert.Equal(t, "block_stack", rows[0].Source)
	assert.Contains(t, diags, "composition: stacked header layout matched")
}

func TestLabelAnchoredLayout(t *testing.T) {
	body := `물질명 : 수산화나트륨
CAS No. : 1310-73-2
함유량 : 4~5%
물질명 : 에탄올
CAS No. : 64-17-5
함유량 : 10%`

	rows, _, diags := newCompExtractor().Extract(body, template.Generic())
	require.Len(t, rows, 2)
	assert.Equal(t, "수산화나트륨", rows[0].Name)
	assert.Equal(t, "1310-73-2", rows[0].CAS)
	assert.Equal(t, "labeled", rows[0].Source)
	assert.Equal(t, 10.0, *rows[1].Value)
	assert.Contains(t, diags, "composition: labeled layout matched")
}

func TestBlockTTBLayout(t *testing.T) {
	tpl := template.Generic()
	tpl.Composition.Block = template.BlockLayout{Mode: "ttb", FieldOrder: []string{"name", "cas", "conc"}, MaxGapLines: 3}

	body := `수산화나트륨
1310-73-2
4~5%
에탄올
64-17-5
10%`

	rows := blockRows(body, tpl.Composition, defaultCAS)
	require.Len(t, rows, 2)
	assert.Equal(t, "수산화나트륨", rows[0].Name)
	assert.Equal(t, "64-17-5", rows[1].CAS)
	assert.Equal(t, 10.0, *rows[1].Value)
}

func TestBlockLTRStride(t *testing.T) {
	tpl := template.Generic()
	tpl.Composition.Block = template.BlockLayout{Mode: "ltr", Stride: 4, FieldOrder: []string{"name", "alias", "cas", "conc"}}

	body := `Sodium hydroxide
수산화나트륨
1310-73-2
4~5%
잡담 한 줄`

	rows := blockRows(body, tpl.Composition, defaultCAS)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sodium hydroxide", rows[0].Name)
	assert.Equal(t, "1310-73-2", rows[0].CAS)
}
