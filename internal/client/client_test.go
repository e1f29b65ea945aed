package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/client"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Login_StoresToken(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var req domain.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ana@hornosanmarino.ec", req.Email)
			json.NewEncoder(w).Encode(domain.LoginResponse{
				Token:     "signed-token",
				ExpiresAt: time.Now().Add(time.Hour),
				User:      domain.UserDTO{ID: uuid.New(), Email: req.Email},
			})
		case "/api/v1/production/all-orders":
			authHeader = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode([]domain.ProductionTaskDTO{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := client.NewClient(srv.URL, client.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	resp, err := c.Login(ctx, "ana@hornosanmarino.ec", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", resp.Token)

	_, err = c.AllOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer signed-token", authHeader)
}

func TestClient_DecodesProblemDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(domain.APIError{
			Title:  "Not Found",
			Status: http.StatusNotFound,
			Detail: "order not found",
		})
	}))
	defer srv.Close()

	c := client.NewClient(srv.URL, client.WithHTTPClient(srv.Client()))

	err := c.VoidOrder(context.Background(), uuid.New())
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "order not found", apiErr.Message)
}

func TestClient_NonJSONErrorFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := client.NewClient(srv.URL, client.WithHTTPClient(srv.Client()))

	_, err := c.Summary(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}
