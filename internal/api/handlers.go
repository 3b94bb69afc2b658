package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fisiotrack_go/internal/exercises"
	"fisiotrack_go/internal/models"
	"fisiotrack_go/internal/redis"
	"fisiotrack_go/internal/session"
	"fisiotrack_go/pkg/logger"
	"fisiotrack_go/pkg/utils"
)

// Handler contém os handlers HTTP para a API
type Handler struct {
	sessionService *session.Service
	redisService   *redis.Service
}

// NewHandler cria um novo handler de API
func NewHandler(sessionService *session.Service, redisService *redis.Service) *Handler {
	return &Handler{
		sessionService: sessionService,
		redisService:   redisService,
	}
}

// GetStatus retorna o status atual da sessão
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	status := h.sessionService.GetStatus()
	timestamp := status.Timestamp.UnixNano() / int64(time.Millisecond)

	// Formatar resposta
	response := map[string]interface{}{
		"status":    status.Status,
		"timestamp": timestamp,
		"time":      utils.FormatTimestamp(timestamp),
	}

	if status.Exercise != "" {
		response["exercise"] = status.Exercise
	}
	if status.SessionID != "" {
		response["sessionId"] = status.SessionID
	}

	// Adicionar informações de erro, se houver
	if status.LastError != "" {
		response["lastError"] = status.LastError
	}
	if status.ErrorCount > 0 {
		response["errorCount"] = status.ErrorCount
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// GetCurrentState retorna o estado vivo da sessão (ângulo e repetições)
func (h *Handler) GetCurrentState(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	// O serviço de sessão é a fonte primária; o Redis cobre o caso de o
	// processo ter reiniciado com uma sessão espelhada
	update := h.sessionService.GetLastUpdate()
	if update == nil && h.redisService != nil && h.redisService.IsConnected() {
		redisUpdate, err := h.redisService.GetCurrentState()
		if err == nil {
			update = redisUpdate
		}
	}

	// Verificar se temos dados disponíveis
	if update == nil {
		h.respondWithError(w, http.StatusNotFound, "Nenhuma sessão ativa")
		return
	}

	h.respondWithJSON(w, http.StatusOK, update)
}

// GetRepEvents retorna as repetições recentes
func (h *Handler) GetRepEvents(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if val, err := strconv.Atoi(limitStr); err == nil && val > 0 {
			limit = val
		}
	}

	var events []models.RepEvent

	// Se o Redis estiver disponível, obter eventos de lá
	if h.redisService != nil && h.redisService.IsConnected() {
		redisEvents, err := h.redisService.GetRepEvents(limit)
		if err == nil {
			events = redisEvents
		}
	}

	// Se não houver eventos, responder com array vazio
	if events == nil {
		events = []models.RepEvent{}
	}

	h.respondWithJSON(w, http.StatusOK, events)
}

// GetExercises retorna o catálogo de exercícios rastreáveis
func (h *Handler) GetExercises(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	h.respondWithJSON(w, http.StatusOK, exercises.All())
}

// GetExercise retorna a configuração de um exercício específico
func (h *Handler) GetExercise(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	// Extrair identificador da URL
	path := r.URL.Path
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		h.respondWithError(w, http.StatusBadRequest, "Identificador de exercício não fornecido")
		return
	}

	id := models.ExerciseID(parts[len(parts)-1])
	cfg, ok := exercises.Lookup(id)
	if !ok {
		h.respondWithError(w, http.StatusNotFound,
			fmt.Sprintf("Exercício não rastreável por ângulo: %s", id))
		return
	}

	h.respondWithJSON(w, http.StatusOK, cfg)
}

// startSessionRequest é o corpo esperado em POST /session/start
type startSessionRequest struct {
	Exercise models.ExerciseID `json:"exercise"`
}

// StartSession inicia uma sessão de rastreamento para um exercício
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodPost {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if req.Exercise == "" {
		h.respondWithError(w, http.StatusBadRequest, "Exercício não fornecido")
		return
	}

	sessionID, err := h.sessionService.StartExercise(req.Exercise)
	if err != nil {
		h.respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"exercise":  req.Exercise,
	})
}

// StopSession encerra a sessão ativa
func (h *Handler) StopSession(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodPost {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	h.sessionService.StopExercise()

	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "stopped",
	})
}

// respondWithError responde com erro em formato JSON
func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON responde com JSON
func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("Erro ao codificar resposta JSON: %v", err)
		// Se falhar ao codificar JSON, tentar responder com erro simples
		fmt.Fprintf(w, `{"error":"Erro interno ao processar resposta"}`)
	}
}
