package server

import (
	"encoding/json"
	"net/http"
	"time"

	"fisiotrack_go/internal/api"
	"fisiotrack_go/internal/websocket"
	"fisiotrack_go/pkg/logger"
	"fisiotrack_go/pkg/utils"
)

// setupRoutes configura todas as rotas do servidor
func (s *Server) setupRoutes() {
	// Criar handlers
	wsHandler := websocket.NewHandler(s.wsHub)
	apiHandler := api.NewHandler(s.sessionService, s.redisService)

	// Endpoint de saúde
	s.router.HandleFunc("/health", s.healthHandler)

	// Endpoint de informações do servidor
	s.router.HandleFunc("/info", s.infoHandler)

	// Endpoints de descoberta
	s.router.HandleFunc("/api/discover", s.discoverHandler)

	// WebSocket
	s.router.Handle("/ws", wsHandler)
	s.router.HandleFunc("/ws/health", wsHandler.GetHealthHandler())

	// API REST
	s.router.HandleFunc("/api/status", apiHandler.GetStatus)
	s.router.HandleFunc("/api/current", apiHandler.GetCurrentState)
	s.router.HandleFunc("/api/rep-events", apiHandler.GetRepEvents)
	s.router.HandleFunc("/api/exercises", apiHandler.GetExercises)
	s.router.HandleFunc("/api/exercises/", apiHandler.GetExercise)
	s.router.HandleFunc("/api/session/start", apiHandler.StartSession)
	s.router.HandleFunc("/api/session/stop", apiHandler.StopSession)
	s.router.HandleFunc("/api/server-info", s.serverInfoHandler)

	// Middleware para logging e CORS
	s.wrapWithMiddleware()
}

// healthHandler responde com o status de saúde do servidor
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Verificar status dos serviços
	sessionStatus := "ok"
	if s.sessionService != nil && !s.sessionService.IsRunning() {
		sessionStatus = "offline"
	}

	trackerStatus := "ok"
	if s.trackerClient != nil && !s.trackerClient.IsConnected() {
		trackerStatus = "offline"
	}

	redisStatus := "ok"
	if s.redisService != nil && !s.redisService.IsConnected() {
		redisStatus = "offline"
	}

	discoveryStatus := "ok"
	if s.discoveryService != nil && !s.discoveryService.IsRunning() {
		discoveryStatus = "offline"
	}

	// Construir resposta
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"services": map[string]string{
			"session":   sessionStatus,
			"tracker":   trackerStatus,
			"redis":     redisStatus,
			"websocket": "ok",
			"discovery": discoveryStatus,
		},
	}

	// Se algum serviço crítico estiver offline, alterar status geral
	if sessionStatus == "offline" || trackerStatus == "offline" {
		response["status"] = "degraded"
	}

	// Enviar resposta
	json.NewEncoder(w).Encode(response)
}

// infoHandler retorna informações básicas sobre o servidor
func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Obter informações do servidor
	info := s.GetServerInfo()

	// Calcular tempo online
	uptime := utils.FormatDuration(time.Since(info.StartTime))

	// Construir resposta
	response := map[string]interface{}{
		"name":        "FisioTrack Motion Server",
		"version":     info.Version,
		"ip":          info.IP,
		"port":        info.Port,
		"websocket":   info.WebSocketURL,
		"api":         info.APIURL,
		"startTime":   info.StartTime,
		"uptime":      uptime,
		"connections": info.Connections,
	}

	// Enviar resposta
	json.NewEncoder(w).Encode(response)
}

// serverInfoHandler retorna informações completas sobre o servidor
func (s *Server) serverInfoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Obter informações do servidor
	info := s.GetServerInfo()

	// Adicionar informações do serviço de descoberta
	discoveryInfo := map[string]interface{}{
		"enabled":      s.discoveryService != nil,
		"running":      s.discoveryService != nil && s.discoveryService.IsRunning(),
		"instanceName": s.discoveryService.GetInstanceName(),
		"serviceType":  "fisiotrack-motion",
	}

	// Calcular tempo online
	uptime := utils.FormatDuration(time.Since(info.StartTime))

	// Construir resposta
	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":        "FisioTrack Motion Server",
			"version":     info.Version,
			"ip":          info.IP,
			"port":        info.Port,
			"websocket":   info.WebSocketURL,
			"api":         info.APIURL,
			"startTime":   info.StartTime,
			"uptime":      uptime,
			"connections": info.Connections,
		},
		"discovery": discoveryInfo,
		"services": map[string]interface{}{
			"session": map[string]interface{}{
				"running": s.sessionService != nil && s.sessionService.IsRunning(),
				"status":  s.sessionService.GetStatus().Status,
			},
			"tracker": map[string]interface{}{
				"connected": s.trackerClient != nil && s.trackerClient.IsConnected(),
				"host":      s.config.Tracker.Host,
				"port":      s.config.Tracker.Port,
			},
			"redis": map[string]interface{}{
				"enabled":   s.config.Redis.Enabled,
				"connected": s.redisService != nil && s.redisService.IsConnected(),
				"host":      s.config.Redis.Host,
				"port":      s.config.Redis.Port,
			},
		},
	}

	// Enviar resposta
	json.NewEncoder(w).Encode(response)
}

// discoverHandler fornece informações para descoberta manual
func (s *Server) discoverHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Obter informações do servidor
	info := s.GetServerInfo()

	// Construir resposta
	response := map[string]interface{}{
		"name":        "FisioTrack Motion Server",
		"ip":          info.IP,
		"port":        info.Port,
		"wsUrl":       info.WebSocketURL,
		"apiUrl":      info.APIURL,
		"version":     info.Version,
		"wsEndpoint":  "/ws",
		"apiEndpoint": "/api",
	}

	// Enviar resposta
	json.NewEncoder(w).Encode(response)
}

// wrapWithMiddleware adiciona middleware às rotas
func (s *Server) wrapWithMiddleware() {
	originalHandler := s.router

	s.router = http.NewServeMux()

	// Adicionar middleware a todas as rotas
	s.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Adicionar cabeçalhos CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Se for uma requisição OPTIONS, retornar imediatamente
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		// Logging da requisição
		logger.Infof("%s %s %s", r.Method, r.URL.Path, r.RemoteAddr)

		// Processar requisição pelo handler original
		originalHandler.ServeHTTP(w, r)

		// Logging do tempo de resposta
		duration := time.Since(start)
		logger.Debugf("Requisição %s %s completada em %v", r.Method, r.URL.Path, duration)
	})
}
