package hospitals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return c
}

func TestNearbySendsCoordinates(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/hospitals/nearby", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "6.5244", req.URL.Query().Get("lat"))
		assert.Equal(t, "3.3792", req.URL.Query().Get("lng"))
		assert.Equal(t, "10", req.URL.Query().Get("radius"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hospitals": []domain.Hospital{
				{ID: "h1", Name: "St. Mary's General Hospital", Distance: "1.2 km", Open: true},
			},
		})
	})

	got, err := newTestClient(t, r).Nearby(context.Background(), 6.5244, 3.3792, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "St. Mary's General Hospital", got[0].Name)
	assert.True(t, got[0].Open)
}

func TestSearchEscapesQuery(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/hospitals/search", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "heart & cardio", req.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode(map[string]any{"hospitals": []domain.Hospital{}})
	})

	got, err := newTestClient(t, r).Search(context.Background(), "heart & cardio")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetailsNotFound(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/hospitals/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := newTestClient(t, r).Details(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDetailsDecodesRecord(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/hospitals/{id}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "h2", chi.URLParam(req, "id"))
		_ = json.NewEncoder(w).Encode(domain.Hospital{
			ID:        "h2",
			Name:      "Eye Care Specialists",
			Specialty: "Eye Clinic",
			Location:  "Victoria Island",
			Rating:    4.8,
			Reviews:   189,
		})
	})

	got, err := newTestClient(t, r).Details(context.Background(), "h2")
	require.NoError(t, err)
	assert.Equal(t, "Eye Care Specialists", got.Name)
	assert.Equal(t, 4.8, got.Rating)
}

func TestServerErrorBecomesAPIError(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/hospitals/search", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "directory offline"})
	})

	_, err := newTestClient(t, r).Search(context.Background(), "x")
	require.Error(t, err)
	apiErr, ok := domain.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "directory offline", apiErr.Message)
}
