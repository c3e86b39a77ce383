package server

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krendi/telecards/internal/matchmaking"
)

func authTestServer() *Server {
	return NewServer(Config{
		LocalMode:   true,
		JwtSecret:   "test-secret",
		Matchmaking: matchmaking.DefaultConfig(),
	})
}

func signedToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: subject})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthenticateFromQueryParam(t *testing.T) {
	s := authTestServer()
	req := httptest.NewRequest("GET", "/ws/matchmaking?token="+signedToken(t, "test-secret", "user42"), nil)

	playerID, err := s.authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "user42", playerID)
}

func TestAuthenticateFromBearerHeader(t *testing.T) {
	s := authTestServer()
	req := httptest.NewRequest("GET", "/ws/matchmaking", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "test-secret", "user42"))

	playerID, err := s.authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "user42", playerID)
}

func TestAuthenticateRejectsBadSignature(t *testing.T) {
	s := authTestServer()
	req := httptest.NewRequest("GET", "/ws/matchmaking?token="+signedToken(t, "wrong-secret", "user42"), nil)

	_, err := s.authenticate(req)
	assert.Error(t, err)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	s := authTestServer()
	req := httptest.NewRequest("GET", "/ws/matchmaking", nil)

	_, err := s.authenticate(req)
	assert.ErrorIs(t, err, errMissingToken)
}

func TestAuthenticateRejectsMissingSubject(t *testing.T) {
	s := authTestServer()
	req := httptest.NewRequest("GET", "/ws/matchmaking?token="+signedToken(t, "test-secret", ""), nil)

	_, err := s.authenticate(req)
	assert.Error(t, err)
}
