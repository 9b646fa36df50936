package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pricerecommender/models"
	"pricerecommender/orchestrator"
	"pricerecommender/reqcache"
)

type fakeRecommender struct {
	rec        models.Recommendation
	err        error
	lastQuery  string
	lastOverride orchestrator.Override
}

func (f *fakeRecommender) Recommend(ctx context.Context, raw string, override orchestrator.Override) (models.Recommendation, error) {
	f.lastQuery = raw
	f.lastOverride = override
	return f.rec, f.err
}

func newTestServer(rec *fakeRecommender) *Server {
	gin.SetMode(gin.TestMode)
	return New(rec, reqcache.New(time.Hour))
}

func TestHandleRecommendSuccess(t *testing.T) {
	fake := &fakeRecommender{rec: models.Recommendation{
		RecommendedPrice: 47.80, ConfidenceScore: 70, PredictionMethod: models.MethodInternal,
	}}
	s := newTestServer(fake)

	req := httptest.NewRequest(http.MethodPost, "/price-recommendation", strings.NewReader(`{"upc":"Nike Sneakers"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp priceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RecommendedPrice != 47.80 {
		t.Errorf("recommended price: got %.2f, want 47.80", resp.RecommendedPrice)
	}
	if fake.lastQuery != "Nike Sneakers" {
		t.Errorf("query passed through: got %q", fake.lastQuery)
	}
}

func TestHandleRecommendWithInternalDataOverride(t *testing.T) {
	fake := &fakeRecommender{rec: models.Recommendation{RecommendedPrice: 10}}
	s := newTestServer(fake)

	body := `{"upc":"widget","internal_data":{"internal_price":20,"sell_through_rate":0.5,"days_on_shelf":10,"category":"Misc"}}`
	req := httptest.NewRequest(http.MethodPost, "/price-recommendation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if !fake.lastOverride.Present {
		t.Fatal("expected override to be marked present")
	}
	if fake.lastOverride.Data.Category != "Misc" {
		t.Errorf("override category: got %q, want Misc", fake.lastOverride.Data.Category)
	}
}

func TestHandleRecommendMissingUPCFails(t *testing.T) {
	s := newTestServer(&fakeRecommender{})

	req := httptest.NewRequest(http.MethodPost, "/price-recommendation", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeRecommender{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body: got %s", w.Body.String())
	}
}

func TestHandleCacheClear(t *testing.T) {
	s := newTestServer(&fakeRecommender{})

	req := httptest.NewRequest(http.MethodDelete, "/cache/clear", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
}
