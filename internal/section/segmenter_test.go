package section

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/msds-extract/internal/textnorm"
)

const sampleSheet = `---- PAGE 1 ----
1. 화학제품과 회사에 관한 정보
제품명: 수산화나트륨 수용액
회사명: 테스트케미칼(주)
2. 유해성·위험성
심한 피부 화상과 눈 손상을 일으킴
3. 구성성분의 명칭 및 함유량
Sodium hydroxide, 1310-73-2, 4~5%
물, 7732-18-5, 95~96%
---- PAGE 2 ----
9. 물리화학적 특성
외관: 무색 액체
pH: 13
15. 법적 규제 현황
산업안전보건법에 의한 규제
`

func TestSegment_Scenario_CompositionBoundedByHeaders(t *testing.T) {
	text := textnorm.Normalize(sampleSheet)
	seg := NewSegmenter(nil)

	sections, order, _ := seg.Segment(text)
	require.Contains(t, sections, KeyComposition)

	comp := sections[KeyComposition]
	assert.Equal(t, strings.Index(text, "3. 구성성분"), comp.Start)
	assert.Contains(t, comp.Body, "Sodium hydroxide, 1310-73-2, 4~5%")
	assert.NotContains(t, comp.Body, "물리화학적")

	// The composition body ends where section 9 begins.
	phys := sections[KeyPhysChem]
	assert.LessOrEqual(t, comp.End, phys.Start)

	// Sections come back in offset order and never overlap.
	prevEnd := 0
	for _, key := range order {
		sec := sections[key]
		assert.GreaterOrEqual(t, sec.Start, prevEnd, "section %s overlaps predecessor", key)
		assert.Less(t, sec.Start, sec.End)
		prevEnd = sec.Start
	}
}

func TestSegment_Idempotent(t *testing.T) {
	text := textnorm.Normalize(sampleSheet)
	seg := NewSegmenter(nil)

	first, order1, _ := seg.Segment(text)
	second, order2, _ := seg.Segment(text)

	assert.Equal(t, order1, order2)
	require.Equal(t, len(first), len(second))
	for key, sec := range first {
		assert.Equal(t, sec, second[key])
	}
}

func TestSegment_NoHeaders(t *testing.T) {
	seg := NewSegmenter(nil)

	sections, order, diags := seg.Segment("plain paragraph with none of the expected headers anywhere in sight")
	assert.Empty(t, sections)
	assert.Empty(t, order)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0], "no section headers")
}

func TestSegment_EnglishHeaders(t *testing.T) {
	text := textnorm.Normalize(`---- PAGE 1 ----
1. Product and Company Identification
Product name: Test solution
3. Composition / Information on Ingredients
Sodium chloride 7647-14-5 10%
9. Physical and Chemical Properties
Appearance: clear liquid
`)
	seg := NewSegmenter(nil)

	sections, _, _ := seg.Segment(text)
	assert.Contains(t, sections, KeyIdentification)
	assert.Contains(t, sections, KeyComposition)
	assert.Contains(t, sections, KeyPhysChem)
	assert.Contains(t, sections[KeyComposition].Body, "7647-14-5")
}

func TestSegment_SharedAnchorLineDoesNotPanic(t *testing.T) {
	// One header-less line carries both the hazards and the toxicology
	// keywords, so two anchors hit the same offset. The first section's
	// end clamps to its own header end instead of running backwards.
	text := textnorm.Normalize(`---- PAGE 1 ----
유해성 및 독성 정보 요약
피부 화상을 일으킬 수 있으며 흡입 시 해로움
`)
	seg := NewSegmenter(nil)

	sections, order, _ := seg.Segment(text)
	require.NotEmpty(t, order)
	for _, key := range order {
		sec := sections[key]
		assert.GreaterOrEqual(t, sec.End, sec.HeaderEnd, "section %s", key)
	}
}

func TestSegment_HintCutsMissingHeader(t *testing.T) {
	// Section 4 lost its numbered header; the first-aid keyword line inside
	// the composition body must still terminate the composition section.
	text := textnorm.Normalize(`---- PAGE 1 ----
3. 구성성분의 명칭 및 함유량
Ethanol, 64-17-5, 20~30%
응급조치 요령
눈에 들어간 경우 즉시 씻어낼 것
`)
	seg := NewSegmenter(nil)

	sections, _, _ := seg.Segment(text)
	require.Contains(t, sections, KeyComposition)
	body := sections[KeyComposition].Body
	assert.Contains(t, body, "64-17-5")
	assert.NotContains(t, body, "응급조치")
}
