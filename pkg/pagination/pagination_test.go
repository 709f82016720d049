package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "limit=5&offset=10", 5, 10},
		{"limit capped", "limit=500", MaxLimit, 0},
		{"negative offset", "offset=-3", DefaultLimit, 0},
		{"garbage", "limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paramsFor(t, tt.query)
			if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
				t.Errorf("got %+v, want limit=%d offset=%d", p, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestNewResponseHasMore(t *testing.T) {
	if r := NewResponse(nil, 50, 20, 0); !r.HasMore {
		t.Error("first page of 50 should have more")
	}
	if r := NewResponse(nil, 50, 20, 40); r.HasMore {
		t.Error("last page should not have more")
	}
	if r := NewResponse(nil, 0, 20, 0); r.HasMore {
		t.Error("empty result should not have more")
	}
}
