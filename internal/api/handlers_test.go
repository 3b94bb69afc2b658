package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisiotrack_go/internal/config"
	"fisiotrack_go/internal/models"
	"fisiotrack_go/internal/session"
)

// stubSource satisfaz session.PoseSource sem tocar a rede
type stubSource struct{ connected bool }

func (s *stubSource) Connect() error { s.connected = true; return nil }
func (s *stubSource) RequestFrame() (*models.PoseFrame, error) {
	return &models.PoseFrame{Tracked: false}, nil
}
func (s *stubSource) SetConnected(connected bool) { s.connected = connected }
func (s *stubSource) IsConnected() bool           { return s.connected }
func (s *stubSource) Close()                      {}

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	svc, err := session.NewService(
		config.TrackerConfig{SampleRate: 33 * time.Millisecond, MaxConsecutiveErrors: 5},
		config.SessionConfig{SmoothingWindow: 5, DefaultHoldTime: 3 * time.Second},
		&stubSource{}, nil, nil)
	require.NoError(t, err)

	router := NewRouter(svc, nil, "/api")
	router.Setup()
	return router
}

func TestGetExercises(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/exercises", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "squat")
	assert.Contains(t, rec.Body.String(), "elbow_flexion")
}

func TestGetExercise(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/exercises/squat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "right_knee")

	// Exercício sem configuração de rastreamento
	req = httptest.NewRequest(http.MethodGet, "/api/exercises/neck_rotation", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartAndStopSession(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"exercise": "squat"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/session/start", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sessionId")

	// Status reflete a sessão ativa
	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tracking")

	req = httptest.NewRequest(http.MethodPost, "/api/session/stop", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stopped")
}

func TestStartSessionInvalida(t *testing.T) {
	router := newTestRouter(t)

	// Corpo inválido
	req := httptest.NewRequest(http.MethodPost, "/api/session/start", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Exercício desconhecido
	req = httptest.NewRequest(http.MethodPost, "/api/session/start",
		strings.NewReader(`{"exercise": "neck_rotation"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Método errado
	req = httptest.NewRequest(http.MethodGet, "/api/session/start", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCurrentSemSessao(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/current", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
