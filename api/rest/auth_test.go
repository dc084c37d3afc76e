package rest_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/anonto42/React-native-social-media-app/server/api/rest"
	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Logout ----

func TestLogout_RevokesToken(t *testing.T) {
	s := newServer(t)
	u := s.signup(t, "alice")

	w := s.do(u, http.MethodGet, "/api/profiles/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(u, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(u, http.MethodGet, "/api/profiles/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(user{}, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	w := s.do(user{}, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "social_like_counter_repairs_total")
}

// ---- StatusFor ----

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.CodeInvalidArgument, "x"), http.StatusBadRequest},
		{apperr.New(apperr.CodeForbidden, "x"), http.StatusForbidden},
		{apperr.New(apperr.CodeNotFound, "x"), http.StatusNotFound},
		{apperr.New(apperr.CodeConflict, "x"), http.StatusConflict},
		{apperr.New(apperr.CodeInvalidState, "x"), http.StatusConflict},
		{apperr.New(apperr.CodeStoreUnavailable, "x"), http.StatusServiceUnavailable},
		{&content.CounterError{LedgerApplied: true, Err: apperr.New(apperr.CodeStoreUnavailable, "x")}, http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, rest.StatusFor(tc.err), tc.err.Error())
	}
}
