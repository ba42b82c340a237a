package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func paramsFor(query string) Params {
	return FromRequest(httptest.NewRequest(http.MethodGet, "/api/products"+query, nil))
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
		wantOffset  int
	}{
		{"no query", "", 1, 12, 0},
		{"both set", "?page=3&per_page=50", 3, 50, 100},
		{"negative page", "?page=-1", 1, 12, 0},
		{"zero page", "?page=0", 1, 12, 0},
		{"page not a number", "?page=abc", 1, 12, 0},
		{"per_page over cap", "?per_page=200", 1, 12, 0},
		{"per_page at cap", "?per_page=100", 1, 100, 0},
		{"per_page zero", "?per_page=0", 1, 12, 0},
		{"deep page", "?page=5&per_page=20", 5, 20, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paramsFor(tt.query)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPerPage, p.PerPage)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestNewResult_SinglePage(t *testing.T) {
	result := NewResult([]string{"mirror", "dresser", "clock"}, 3, Params{Page: 1, PerPage: 10})

	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 1, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.False(t, result.HasPrev)
}

func TestNewResult_MiddlePage(t *testing.T) {
	result := NewResult([]string{"a", "b"}, 10, Params{Page: 2, PerPage: 2, Offset: 2})

	assert.Equal(t, 5, result.TotalPages)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrev)
}

func TestNewResult_PartialLastPage(t *testing.T) {
	// 11 rows at 5 per page rounds up to 3 pages.
	result := NewResult([]string{"a"}, 11, Params{Page: 3, PerPage: 5, Offset: 10})

	assert.Equal(t, 3, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.True(t, result.HasPrev)
}

func TestNewResult_FirstOfMany(t *testing.T) {
	result := NewResult([]string{"a"}, 20, Params{Page: 1, PerPage: 5})

	assert.True(t, result.HasNext)
	assert.False(t, result.HasPrev)
}

func TestNewResult_EmptyCatalog(t *testing.T) {
	result := NewResult([]string{}, 0, Params{Page: 1, PerPage: 20})

	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 0, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.False(t, result.HasPrev)
}
