package handlers

import (
	"math"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	largest := math.MaxInt / maxLimit

	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", query: "", wantPage: 1, wantLimit: defaultLimit, wantOffset: 0},
		{name: "per_page fallback", query: "page=3&per_page=5", wantPage: 3, wantLimit: 5, wantOffset: 10},
		{name: "limit clamped", query: "page=2&limit=1000", wantPage: 2, wantLimit: maxLimit, wantOffset: maxLimit},
		{name: "largest page", query: "page=" + strconv.Itoa(largest) + "&limit=100", wantPage: largest, wantLimit: maxLimit, wantOffset: (largest - 1) * maxLimit},
		{name: "offset overflow", query: "page=" + strconv.Itoa(largest+1) + "&limit=100", wantErr: true},
		{name: "max int page", query: "page=" + strconv.Itoa(math.MaxInt), wantErr: true},
		{name: "zero page", query: "page=0", wantErr: true},
		{name: "bad limit", query: "limit=abc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/?"+tc.query, nil)
			page, limit, offset, err := parsePagination(r)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffset, offset)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}
}
