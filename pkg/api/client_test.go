package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_CreateLead(t *testing.T) {
	var got LeadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/leads", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"crm-17"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second, zap.NewNop())
	id, err := c.CreateLead(context.Background(), LeadRequest{
		PublicID:   "abc",
		UserID:     42,
		TotalPrice: 310_320_000,
		Contact:    "+989121234567",
	})

	require.NoError(t, err)
	assert.Equal(t, "crm-17", id)
	assert.Equal(t, int64(310_320_000), got.TotalPrice)
	assert.Equal(t, "+989121234567", got.Contact)
}

func TestClient_CreateLeadUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second, zap.NewNop()).CreateLead(context.Background(), LeadRequest{})
	assert.ErrorContains(t, err, "unexpected status: 502")
}

func TestClient_Disabled(t *testing.T) {
	c := NewClient("", "", 0, zap.NewNop())
	assert.False(t, c.Enabled())

	_, err := c.CreateLead(context.Background(), LeadRequest{})
	assert.ErrorIs(t, err, ErrDisabled)
}
