package constants

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paginationContext(t *testing.T, query string) *gin.Context {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/posts"+query, nil)
	return c
}

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantSize   int
		wantOffset int
	}{
		{"defaults", "", 1, 10, 0},
		{"explicit", "?page=3&size=20", 3, 20, 40},
		{"zero page clamped", "?page=0", 1, 10, 0},
		{"negative values clamped", "?page=-2&size=-5", 1, 1, 0},
		{"size capped", "?size=1000", 1, 100, 0},
		{"garbage falls back to minimums", "?page=abc&size=xyz", 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := paginationContext(t, tt.query)

			got := ParsePaginationParams(c)
			if got.Page != tt.wantPage || got.Size != tt.wantSize || got.Offset != tt.wantOffset {
				t.Fatalf("got %+v, want page=%d size=%d offset=%d", got, tt.wantPage, tt.wantSize, tt.wantOffset)
			}
		})
	}
}

func TestBuildErrorResponse(t *testing.T) {
	resp := BuildErrorResponse("failed", []string{"detail"})
	if resp[ResponseFieldMessage] != "failed" {
		t.Fatalf("message = %v", resp[ResponseFieldMessage])
	}
	if _, ok := resp[ResponseFieldDetails]; !ok {
		t.Fatal("details missing")
	}

	resp = BuildErrorResponse("failed", nil)
	if _, ok := resp[ResponseFieldDetails]; ok {
		t.Fatal("nil details should be omitted")
	}
}

func TestBuildListResponse(t *testing.T) {
	resp := BuildListResponse(42, 2, 5, []int{1, 2, 3})
	if resp[ResponseFieldTotal] != int64(42) {
		t.Fatalf("total = %v", resp[ResponseFieldTotal])
	}
	if resp[ResponseFieldPage] != 2 || resp[ResponseFieldPageTotal] != 5 {
		t.Fatalf("page fields = %v / %v", resp[ResponseFieldPage], resp[ResponseFieldPageTotal])
	}
}
