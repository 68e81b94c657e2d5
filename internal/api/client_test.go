package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"turfbook/internal/cache"
	"turfbook/internal/config"
	"turfbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSession struct{ s *models.Session }

func (f staticSession) Current() *models.Session { return f.s }

func newTestClient(t *testing.T, handler http.Handler, session *models.Session) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	cfg := &config.APIConfig{BaseURL: srv.URL + "/", TimeoutSeconds: 5}
	return NewClient(cfg, staticSession{s: session}, &logger)
}

func TestClient_Headers(t *testing.T) {
	var gotAuth, gotID string
	mux := http.NewServeMux()
	mux.HandleFunc("/bookings/mine", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		_, _ = io.WriteString(w, `[]`)
	})

	c := newTestClient(t, mux, &models.Session{Token: "abc", TokenType: "Bearer"})
	list, err := c.MyBookings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotID)
}

func TestClient_NoSessionNoAuthHeader(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/otp/send", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+919876543210", body["phone"])
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, mux, nil)
	require.NoError(t, c.SendOTP(context.Background(), "+919876543210"))
	assert.Empty(t, gotAuth)
}

func TestClient_VerifyOTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/otp/verify", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = io.WriteString(w, `{"token":"t.p.s","tokenType":"Bearer","newUser":true}`)
	})

	c := newTestClient(t, mux, nil)
	resp, err := c.VerifyOTP(context.Background(), "+919876543210", "123456")
	require.NoError(t, err)
	assert.Equal(t, "t.p.s", resp.Token)
	assert.True(t, resp.NewUser)
}

func TestClient_ErrorMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"Slot 06:00-07:00 is no longer available"}`)
	})
	mux.HandleFunc("/users/name", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := newTestClient(t, mux, nil)

	_, err := c.CreateBooking(context.Background(), &models.BookingRequest{TurfID: 1, Date: "2025-06-01"})
	require.Error(t, err)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Slot 06:00-07:00 is no longer available", UserMessage(err, "Failed to create booking"))

	err = c.SetName(context.Background(), "Ravi")
	require.Error(t, err)
	assert.Equal(t, "Failed to update name", UserMessage(err, "Failed to update name"))
	assert.Equal(t, "fallback", UserMessage(errors.New("dial tcp: refused"), "fallback"))
}

func TestClient_TurfCache(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/turfs", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `[{"id":1,"name":"Green Field","location":"Andheri","pricePerHour":"800","images":[]}]`)
	})

	c := newTestClient(t, mux, nil)
	c.UseCache(cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	turfs, err := c.ListTurfs(ctx)
	require.NoError(t, err)
	require.Len(t, turfs, 1)
	assert.True(t, turfs[0].PricePerHour.Equal(decimal.NewFromInt(800)))

	_, err = c.ListTurfs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	c.InvalidateTurf(ctx, 1)
	_, err = c.ListTurfs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_GetSlots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/turfs/7/slots", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("date"))
		_, _ = io.WriteString(w, `[{"startTime":"06:00","endTime":"07:00","price":500,"isAvailable":true},
			{"startTime":"07:00","endTime":"08:00","price":500,"isAvailable":false}]`)
	})

	c := newTestClient(t, mux, nil)
	slots, err := c.GetSlots(context.Background(), 7, "2025-06-01")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "06:00-07:00", slots[0].Key())
	assert.False(t, slots[1].IsAvailable)
}

func TestClient_UploadTurfImages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/turfs/3/images", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["images"]
		require.Len(t, files, 2)
		assert.Equal(t, "image_0.jpg", files[0].Filename)
		assert.Equal(t, "image_1.jpg", files[1].Filename)
		assert.Equal(t, "image/jpeg", files[1].Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"id":3,"name":"Arena","images":["a.jpg","b.jpg"]}`)
	})

	c := newTestClient(t, mux, &models.Session{Token: "adm", Role: models.RoleAdmin})
	turf, err := c.UploadTurfImages(context.Background(), 3, []models.ImageAsset{
		{Source: "/tmp/a.jpg", Data: []byte("a")},
		{Source: "/tmp/b.jpg", Data: []byte("b")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, turf.Images)
}

func TestClient_DeleteTurfImages(t *testing.T) {
	var got []string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/turfs/3/images", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, mux, nil)
	require.NoError(t, c.DeleteTurfImages(context.Background(), 3, []string{"u1", "u3"}))
	assert.Equal(t, []string{"u1", "u3"}, got)
}

func TestClient_AdminTurfMutations(t *testing.T) {
	var calls []string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/turfs/5", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method)
		if r.Method == http.MethodPut {
			_, _ = io.WriteString(w, `{"id":5,"name":"Renamed"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/admin/turfs/5/availability", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method)
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.False(t, body["availability"])
	})

	c := newTestClient(t, mux, nil)
	ctx := context.Background()

	updated, err := c.UpdateTurf(ctx, &models.Turf{ID: 5, Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NoError(t, c.SetTurfAvailability(ctx, 5, false))
	require.NoError(t, c.DeleteTurf(ctx, 5))
	assert.Equal(t, []string{http.MethodPut, http.MethodPatch, http.MethodDelete}, calls)
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := newRateLimiter(config.APIRateLimitConfig{})
	assert.NoError(t, l.wait(context.Background(), "GET /turfs"))

	l = newRateLimiter(config.APIRateLimitConfig{RPS: 1, Burst: 1})
	assert.Same(t, l.getLimiter("a"), l.getLimiter("a"))
}
