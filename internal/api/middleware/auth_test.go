package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/testutil"
)

type stubResolver map[string]model.PlayerID

func (s stubResolver) Resolve(_ context.Context, token string) (model.PlayerID, error) {
	id, ok := s[token]
	if !ok {
		return 0, model.ErrTokenNotFound
	}
	return id, nil
}

func serveWithAuth(t *testing.T, header string) (model.PlayerID, bool) {
	t.Helper()

	var (
		gotID  model.PlayerID
		gotHas bool
	)
	handler := OptionalAuth(stubResolver{"good": 7})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetPlayerID(r.Context())
		gotHas = HasPlayerID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return gotID, gotHas
}

func TestOptionalAuth(t *testing.T) {
	id, has := serveWithAuth(t, "Bearer good")
	assert.True(t, has)
	assert.Equal(t, model.PlayerID(7), id)

	_, has = serveWithAuth(t, "Bearer bad")
	assert.False(t, has)

	_, has = serveWithAuth(t, "Basic good")
	assert.False(t, has)

	id, has = serveWithAuth(t, "")
	assert.False(t, has)
	assert.Equal(t, model.PlayerID(0), id)
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	handler := Recovery(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"status":false,"message":"Internal server error"}`, rr.Body.String())
}
