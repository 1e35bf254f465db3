package routing_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dispatch/internal/adapters/out/routing"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RouteDuration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/route", r.URL.Path)
		assert.Equal(t, "5.3599", r.URL.Query().Get("from_lat"))
		assert.Equal(t, "-4.0083", r.URL.Query().Get("from_lng"))
		assert.Equal(t, "5.3411", r.URL.Query().Get("to_lat"))
		assert.Equal(t, "-4.0267", r.URL.Query().Get("to_lng"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"duration_seconds": 742.5}`))
	}))
	defer server.Close()

	client := routing.NewClient(server.URL, time.Second)

	from, err := kernel.NewGeoPoint(5.3599, -4.0083)
	require.NoError(t, err)
	to, err := kernel.NewGeoPoint(5.3411, -4.0267)
	require.NoError(t, err)

	duration, err := client.RouteDuration(t.Context(), from, to)

	require.NoError(t, err)
	assert.Equal(t, 742500*time.Millisecond, duration)
}

func TestClient_RouteDuration_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := routing.NewClient(server.URL, time.Second)

	from, err := kernel.NewGeoPoint(5.3599, -4.0083)
	require.NoError(t, err)
	to, err := kernel.NewGeoPoint(5.3411, -4.0267)
	require.NoError(t, err)

	_, err = client.RouteDuration(t.Context(), from, to)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_RouteDuration_NegativeDuration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"duration_seconds": -1}`))
	}))
	defer server.Close()

	client := routing.NewClient(server.URL, time.Second)

	from, err := kernel.NewGeoPoint(5.3599, -4.0083)
	require.NoError(t, err)
	to, err := kernel.NewGeoPoint(5.3411, -4.0267)
	require.NoError(t, err)

	_, err = client.RouteDuration(t.Context(), from, to)

	require.Error(t, err)
}

func TestClient_ReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "5.3411", r.URL.Query().Get("lat"))
		assert.Equal(t, "-4.0267", r.URL.Query().Get("lng"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address": "12 Rue des Jardins, Cocody, Abidjan"}`))
	}))
	defer server.Close()

	client := routing.NewClient(server.URL, time.Second)

	point, err := kernel.NewGeoPoint(5.3411, -4.0267)
	require.NoError(t, err)

	address, err := client.ReverseGeocode(t.Context(), point)

	require.NoError(t, err)
	assert.Equal(t, "12 Rue des Jardins, Cocody, Abidjan", address)
}

func TestClient_ReverseGeocode_Unreachable(t *testing.T) {
	client := routing.NewClient("http://127.0.0.1:1", 100*time.Millisecond)

	point, err := kernel.NewGeoPoint(5.3411, -4.0267)
	require.NoError(t, err)

	_, err = client.ReverseGeocode(t.Context(), point)

	require.Error(t, err)
}
