package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lightsensord/internal/models"
	"lightsensord/internal/service"
)

func TestReadingsHandler(t *testing.T) {
	r1 := models.NewLightReading()
	r1.Data[0], r1.Data[1], r1.Data[2] = 100, 100, 25
	rl := &mockReadingLog{resp: []models.Reading{r1}}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, ReadingLog: rl}
	r := newTestRouter(s)

	t.Run("list with filters", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/readings?from=2025-08-01&to=2025-08-01&limit=5", nil)))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		var out struct {
			Count    int              `json:"count"`
			Readings []models.Reading `json:"readings"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		if out.Count != 1 || out.Readings[0].White() != 25 {
			t.Fatalf("unexpected body: %+v", out)
		}
		f := rl.lastFilter
		if f.Limit != 5 {
			t.Fatalf("limit = %d", f.Limit)
		}
		wantTo := time.Date(2025, 8, 1, 23, 59, 59, 999999999, time.UTC)
		if !f.From.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) || !f.To.Equal(wantTo) {
			t.Fatalf("range = %v..%v", f.From, f.To)
		}
	})

	for _, q := range []string{"limit=-1", "limit=abc", "from=bogus", "from=2025-08-02&to=2025-08-01"} {
		t.Run("bad "+q, func(t *testing.T) {
			before := rl.calls
			w := httptest.NewRecorder()
			r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/readings?"+q, nil)))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d, want 400", w.Code)
			}
			if rl.calls != before {
				t.Fatalf("service must not be called")
			}
		})
	}
}
