package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var errMissingToken = errors.New("missing auth token")

// authenticate validates the request's JWT and returns the player id from
// its subject claim. Browser websocket clients can't set headers, so the
// token is also accepted as a query parameter.
func (s *Server) authenticate(r *http.Request) (string, error) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		auth := r.Header.Get("Authorization")
		tokenString = strings.TrimPrefix(auth, "Bearer ")
	}
	if tokenString == "" {
		return "", errMissingToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token: unexpected signing method")
		}
		return []byte(s.cfg.JwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("invalid token: missing subject")
	}
	return sub, nil
}
