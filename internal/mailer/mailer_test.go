package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"internship_portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRelay_Send(t *testing.T) {
	t.Parallel()

	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	relay := NewHTTPRelay(srv.URL, "relay-secret", 5*time.Second)

	err := relay.Send(context.Background(), models.EmailMessage{
		Email:   "a@x.com",
		Subject: "Verify your account",
		Message: "Your OTP is: 123456. It expires in 10 minutes.",
	})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", got["email"])
	assert.Equal(t, "Verify your account", got["subject"])
	assert.Equal(t, "relay-secret", got["secret"])
}

func TestHTTPRelay_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	relay := NewHTTPRelay(srv.URL, "relay-secret", 5*time.Second)

	err := relay.Send(context.Background(), models.EmailMessage{Email: "a@x.com"})
	assert.Error(t, err)
}
