package httputil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newPaginationContext(query string) *gin.Context {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/v1/users"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOffset int
		wantLimit  int
		wantErr    bool
	}{
		{name: "defaults", query: "", wantOffset: 0, wantLimit: 50},
		{name: "explicit values", query: "?offset=10&limit=20", wantOffset: 10, wantLimit: 20},
		{name: "max limit", query: "?limit=100", wantOffset: 0, wantLimit: 100},
		{name: "limit too large", query: "?limit=101", wantErr: true},
		{name: "zero limit", query: "?limit=0", wantErr: true},
		{name: "negative offset", query: "?offset=-1", wantErr: true},
		{name: "non-numeric offset", query: "?offset=abc", wantErr: true},
		{name: "non-numeric limit", query: "?limit=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit, err := ParsePagination(newPaginationContext(tt.query))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
