package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionResult_Valid(t *testing.T) {
	tests := []struct {
		name   string
		result ExtractionResult
		want   bool
	}{
		{"both present", ExtractionResult{CompanyName: "Acme", PositionName: "Engineer"}, true},
		{"missing company", ExtractionResult{PositionName: "Engineer"}, false},
		{"whitespace position", ExtractionResult{CompanyName: "Acme", PositionName: "  "}, false},
		{"zero value", ExtractionResult{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Valid())
		})
	}
}

func TestExtractionResult_IsNotFound(t *testing.T) {
	assert.True(t, ExtractionResult{}.IsNotFound())
	assert.False(t, ExtractionResult{Requirements: "Go"}.IsNotFound())
}

func TestExtractionResult_CompanyPossessive(t *testing.T) {
	assert.Equal(t, "Acme's", ExtractionResult{CompanyName: "Acme"}.CompanyPossessive())
	assert.Equal(t, "Siemens’", ExtractionResult{CompanyName: "Siemens"}.CompanyPossessive())
}

func TestCleanedPosting_IsEmpty(t *testing.T) {
	assert.True(t, CleanedPosting{}.IsEmpty())
	assert.True(t, CleanedPosting{Text: " \n "}.IsEmpty())
	assert.False(t, CleanedPosting{Text: "Go"}.IsEmpty())
}
