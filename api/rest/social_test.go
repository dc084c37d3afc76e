package rest_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendRequest(t *testing.T, s *server, from, to user) int64 {
	t.Helper()
	w := s.do(from, http.MethodPost, "/api/social/requests", map[string]string{"target_id": to.id.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(decode(t, w)["relationship_id"].(float64))
}

// ---- requests ----

func TestSocial_RequestAcceptFriends(t *testing.T) {
	s := newServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	id := sendRequest(t, s, alice, bob)

	w := s.do(bob, http.MethodGet, "/api/social/requests/incoming", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["requests"], 1)

	w = s.do(alice, http.MethodGet, "/api/social/requests/outgoing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["requests"], 1)

	w = s.do(bob, http.MethodPost, fmt.Sprintf("/api/social/requests/%d/accept", id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, u := range []user{alice, bob} {
		w = s.do(u, http.MethodGet, "/api/social/friends", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["friends"], 1)
	}

	w = s.do(alice, http.MethodGet, "/api/social/relationships/"+bob.id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "accepted", body["status"])
	assert.Equal(t, true, body["outgoing"])
}

func TestSocial_RequestByHandle(t *testing.T) {
	s := newServer(t)
	alice := s.signup(t, "alice")
	s.signup(t, "bob")

	w := s.do(alice, http.MethodPost, "/api/social/requests", map[string]string{"handle": "@Bob"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(alice, http.MethodPost, "/api/social/requests", map[string]string{"handle": "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(alice, http.MethodPost, "/api/social/requests", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSocial_ErrorStatuses(t *testing.T) {
	s := newServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")
	carol := s.signup(t, "carol")

	w := s.do(alice, http.MethodPost, "/api/social/requests", map[string]string{"target_id": alice.id.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := sendRequest(t, s, alice, bob)

	w = s.do(bob, http.MethodPost, "/api/social/requests", map[string]string{"target_id": alice.id.String()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode(t, w)["code"])

	w = s.do(alice, http.MethodPost, fmt.Sprintf("/api/social/requests/%d/accept", id), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(carol, http.MethodDelete, fmt.Sprintf("/api/social/relationships/%d", id), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(bob, http.MethodPost, fmt.Sprintf("/api/social/requests/%d/accept", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(bob, http.MethodPost, fmt.Sprintf("/api/social/requests/%d/accept", id), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_state", decode(t, w)["code"])

	w = s.do(bob, http.MethodPost, "/api/social/requests/abc/accept", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(bob, http.MethodPost, "/api/social/requests/9999/accept", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSocial_Terminate(t *testing.T) {
	s := newServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")
	id := sendRequest(t, s, alice, bob)

	w := s.do(bob, http.MethodDelete, fmt.Sprintf("/api/social/relationships/%d", id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(alice, http.MethodGet, "/api/social/relationships/"+bob.id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["status"])

	w = s.do(bob, http.MethodDelete, fmt.Sprintf("/api/social/relationships/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---- search ----

func TestSocial_Search(t *testing.T) {
	s := newServer(t)
	me := s.signup(t, "jane")
	s.signup(t, "jane_doe")
	s.signup(t, "janet")
	s.signup(t, "zed")

	w := s.do(me, http.MethodGet, "/api/social/search?q=JANE&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["results"], 1)

	w = s.do(me, http.MethodGet, "/api/social/search?q=jane", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := decode(t, w)["results"].([]interface{})
	require.Len(t, results, 2)
	for _, r := range results {
		p := r.(map[string]interface{})["profile"].(map[string]interface{})
		assert.NotEqual(t, "jane", p["handle"])
	}
}

// ---- auth ----

func TestSocial_RequiresToken(t *testing.T) {
	s := newServer(t)
	w := s.do(user{}, http.MethodGet, "/api/social/friends", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
