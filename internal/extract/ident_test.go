package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/msds-extract/internal/template"
)

const identSec1 = `1. 화학제품과 회사에 관한 정보
제품명: 테스트 세정제 A-100
제조사: 테스트케미칼(주)
주소: 서울특별시 강남구 테스트로 123
4층 연구동
TEL: 02-1234-5678
`

func TestExtractIdentificationFields(t *testing.T) {
	id := ExtractIdentification(identSec1, identSec1, template.Generic())

	assert.Equal(t, "테스트 세정제 A-100", id.ProductName)
	assert.Equal(t, "테스트케미칼(주)", id.Company)
	assert.Contains(t, id.Address, "서울특별시 강남구")
	assert.Contains(t, id.Address, "연구동")
	assert.NotContains(t, id.Address, "TEL")
}

func TestExtractIdentificationFullTextFallback(t *testing.T) {
	full := "머리말\nProduct name: Etch-99\nSupplier: Acme Chem\n"
	id := ExtractIdentification("관련 없는 섹션 본문", full, template.Generic())

	assert.Equal(t, "Etch-99", id.ProductName)
	assert.Equal(t, "Acme Chem", id.Company)
}

func TestExtractIdentificationKVTable(t *testing.T) {
	full := "제품명      슈퍼 클리너\n"
	id := ExtractIdentification("", full, template.Generic())
	assert.Equal(t, "슈퍼 클리너", id.ProductName)
}

func TestExtractIdentificationDocNo(t *testing.T) {
	full := "MSDS 관리번호: AB12-CD34567890\n제품명: X\n"
	id := ExtractIdentification(full, full, template.Generic())
	assert.Equal(t, "AB12-CD34567890", id.DocNo)
}

func TestExtractIdentificationProfilePatterns(t *testing.T) {
	tpl := template.Generic()
	tpl.Ident.ProductPatterns = []string{`(?mi)^\s*품명쓰기\s*[:：]\s*(.+)$`}

	id := ExtractIdentification("품명쓰기: 비표준 라벨 제품", "", tpl)
	assert.Equal(t, "비표준 라벨 제품", id.ProductName)
}
