package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParse(t *testing.T) {
	tests := []struct {
		query      string
		page, size int
	}{
		{"", 1, DefaultLimit},
		{"page=3&limit=5", 3, 5},
		{"page=0&limit=0", 1, DefaultLimit},
		{"page=x&limit=1000", 1, MaxLimit},
	}
	for _, tt := range tests {
		p := Parse(contextWithQuery(tt.query))
		if p.Page != tt.page || p.Limit != tt.size {
			t.Errorf("Parse(%q) = %+v, want page %d limit %d", tt.query, p, tt.page, tt.size)
		}
		if p.Offset != (p.Page-1)*p.Limit {
			t.Errorf("Parse(%q) offset = %d", tt.query, p.Offset)
		}
	}
}

func TestLimit(t *testing.T) {
	if got := Limit(contextWithQuery("limit=900"), 200, 500); got != 500 {
		t.Fatalf("Limit clamp = %d, want 500", got)
	}
	if got := Limit(contextWithQuery(""), 200, 500); got != 200 {
		t.Fatalf("Limit default = %d, want 200", got)
	}
}
