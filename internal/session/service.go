// Package session orquestra a sessão de exercício ativa: puxa frames do
// rastreador de pose no ritmo configurado, alimenta o engine de repetições
// e distribui os resultados para o WebSocket e o Redis.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fisiotrack_go/internal/config"
	"fisiotrack_go/internal/engine"
	"fisiotrack_go/internal/exercises"
	"fisiotrack_go/internal/models"
	"fisiotrack_go/internal/redis"
	"fisiotrack_go/internal/websocket"
	"fisiotrack_go/pkg/logger"
)

// PoseSource é a fonte de frames de pose. O cliente TCP do rastreador é a
// implementação de produção; os testes injetam uma fonte falsa.
type PoseSource interface {
	Connect() error
	RequestFrame() (*models.PoseFrame, error)
	SetConnected(connected bool)
	IsConnected() bool
	Close()
}

// RepEventHandler é um tipo de função para receber repetições concluídas
type RepEventHandler func(event models.RepEvent)

// Service gerencia o ciclo de vida da sessão de exercício
type Service struct {
	source       PoseSource
	trackerCfg   config.TrackerConfig
	sessionCfg   config.SessionConfig
	redisService *redis.Service
	wsHub        *websocket.Hub
	ctx          context.Context
	cancel       context.CancelFunc
	running      bool
	mutex        sync.RWMutex

	// Sessão ativa (nil/vazio quando ocioso)
	exercise    models.ExerciseID
	exerciseCfg models.JointTrackingConfig
	eng         engine.Engine
	sessionID   string
	lastReps    int

	// Perda de rastreamento: marcada no primeiro frame sem as três
	// articulações, limpa quando o trio volta a resolver
	trackingLost bool

	status            models.TrackingStatus
	consecutiveErrors int
	lastErrorMsg      string
	lastUpdate        *models.TrackingUpdate

	eventHandlers []RepEventHandler
	handlersLock  sync.RWMutex

	// Estatísticas de desempenho
	stats struct {
		totalCycles      int64
		cycleDurations   []time.Duration
		cycleStartTime   time.Time
		avgCycleDuration time.Duration
	}
	statsLock sync.Mutex

	// Flags de otimização
	asyncRedis     bool // Flag para envio assíncrono para o Redis
	throttleOutput bool // Flag para limitar saída de log
}

// NewService cria um novo serviço de sessão
func NewService(trackerCfg config.TrackerConfig, sessionCfg config.SessionConfig, source PoseSource, redisService *redis.Service, wsHub *websocket.Hub) (*Service, error) {
	// Criar contexto cancelável
	ctx, cancel := context.WithCancel(context.Background())

	service := &Service{
		source:         source,
		trackerCfg:     trackerCfg,
		sessionCfg:     sessionCfg,
		redisService:   redisService,
		wsHub:          wsHub,
		ctx:            ctx,
		cancel:         cancel,
		running:        false,
		asyncRedis:     true, // Ativar por padrão
		throttleOutput: true, // Limitar output de logs por padrão
		status: models.TrackingStatus{
			Status:    "initializing",
			Timestamp: time.Now(),
		},
	}

	// Inicializar buffer para durações de ciclo
	service.stats.cycleDurations = make([]time.Duration, 0, 100)

	return service, nil
}

// Start inicia o serviço de sessão
func (s *Service) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}

	logger.Infof("Iniciando serviço de sessão (rastreador: %s:%d)", s.trackerCfg.Host, s.trackerCfg.Port)

	// Tentar conectar ao rastreador
	if err := s.source.Connect(); err != nil {
		logger.Warnf("Erro na conexão inicial com o rastreador: %v. Tentando novamente no ciclo de coleta.", err)
		// Não retornar erro aqui, deixar o loop de coleta tentar reconectar
	}

	// Iniciar goroutine para processar frames
	go s.collectFrames()

	// Iniciar goroutine para monitorar estatísticas
	go s.monitorStats()

	s.running = true
	s.status = models.TrackingStatus{
		Status:    "idle",
		Timestamp: time.Now(),
	}
	return nil
}

// Stop para o serviço de sessão
func (s *Service) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running {
		return
	}

	logger.Info("Parando serviço de sessão")
	s.cancel()
	s.source.Close()
	s.running = false
}

// IsRunning verifica se o serviço está em execução
func (s *Service) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}

// StartExercise inicia uma sessão de rastreamento para o exercício indicado.
// Um engine novo é construído a cada sessão; o anterior é descartado.
func (s *Service) StartExercise(id models.ExerciseID) (string, error) {
	cfg, ok := exercises.Lookup(id)
	if !ok {
		return "", fmt.Errorf("exercício não rastreável por ângulo: %s", id)
	}

	params := engine.FromConfig(cfg, s.sessionCfg.DefaultHoldTime)
	params.SmoothingWindow = s.sessionCfg.SmoothingWindow

	s.mutex.Lock()
	s.exercise = id
	s.exerciseCfg = cfg
	s.eng = engine.New(params)
	s.sessionID = uuid.New().String()
	s.lastReps = 0
	s.trackingLost = false
	sessionID := s.sessionID
	s.mutex.Unlock()

	logger.Infof("Sessão %s iniciada para o exercício %s (faixa alvo %.0f-%.0f, direção %s)",
		sessionID, id, cfg.TargetRange.Lower, cfg.TargetRange.Upper, cfg.Direction)

	s.updateStatus("tracking", "")
	return sessionID, nil
}

// StopExercise encerra a sessão ativa, se houver
func (s *Service) StopExercise() {
	s.mutex.Lock()
	if s.eng == nil {
		s.mutex.Unlock()
		return
	}

	sessionID := s.sessionID
	reps := s.lastReps
	s.exercise = ""
	s.exerciseCfg = models.JointTrackingConfig{}
	s.eng = nil
	s.sessionID = ""
	s.lastReps = 0
	s.lastUpdate = nil
	s.mutex.Unlock()

	logger.Infof("Sessão %s encerrada com %d repetições", sessionID, reps)
	s.updateStatus("idle", "")
}

// GetStatus retorna o status atual da sessão
func (s *Service) GetStatus() models.TrackingStatus {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.status
}

// GetLastUpdate retorna a última atualização de rastreamento processada
func (s *Service) GetLastUpdate() *models.TrackingUpdate {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastUpdate
}

// RegisterRepEventHandler registra uma função para receber repetições
func (s *Service) RegisterRepEventHandler(handler RepEventHandler) {
	s.handlersLock.Lock()
	defer s.handlersLock.Unlock()
	s.eventHandlers = append(s.eventHandlers, handler)
}

// SetAsyncRedis configura o envio assíncrono para o Redis
func (s *Service) SetAsyncRedis(async bool) {
	s.asyncRedis = async
}

// SetThrottleOutput configura a limitação de saída de log
func (s *Service) SetThrottleOutput(throttle bool) {
	s.throttleOutput = throttle
}

// collectFrames executa o loop principal de coleta de frames
func (s *Service) collectFrames() {
	ticker := time.NewTicker(s.trackerCfg.SampleRate)
	defer ticker.Stop()

	cycleCounter := 0

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			// Registrar tempo de início do ciclo
			s.statsLock.Lock()
			s.stats.cycleStartTime = time.Now()
			s.statsLock.Unlock()

			// Processar ciclo
			s.processTick()

			// Registrar duração do ciclo
			cycleDuration := time.Since(s.stats.cycleStartTime)
			s.statsLock.Lock()
			atomic.AddInt64(&s.stats.totalCycles, 1)

			// Registrar duração para cálculo de média
			s.stats.cycleDurations = append(s.stats.cycleDurations, cycleDuration)
			if len(s.stats.cycleDurations) > 100 {
				// Manter apenas as últimas 100 amostras
				s.stats.cycleDurations = s.stats.cycleDurations[1:]
			}

			s.statsLock.Unlock()

			// Log periódico de desempenho
			cycleCounter++
			if cycleCounter%100 == 0 && !s.throttleOutput {
				s.logPerformanceStats()
				cycleCounter = 0
			}
		}
	}
}

// processTick processa um ciclo: um frame do rastreador, um passo do engine
func (s *Service) processTick() {
	// Snapshot da sessão ativa
	s.mutex.RLock()
	eng := s.eng
	exercise := s.exercise
	cfg := s.exerciseCfg
	sessionID := s.sessionID
	prevReps := s.lastReps
	s.mutex.RUnlock()

	// Sem exercício ativo, não há o que processar
	if eng == nil {
		return
	}

	// Solicitar frame ao rastreador
	frame, err := s.source.RequestFrame()
	if err != nil {
		s.handleConnectionError(err)
		return
	}

	// Resetar contador de erros se comunicação bem sucedida
	s.mutex.Lock()
	restoredAfter := s.consecutiveErrors
	s.consecutiveErrors = 0
	s.mutex.Unlock()

	if restoredAfter > 0 {
		logger.Infof("Comunicação com o rastreador restaurada após %d tentativas", restoredAfter)
		s.updateStatus("tracking", "")
	}

	// Resolver as três articulações do exercício ativo
	points, ok := frame.Resolve(cfg.Proximal, cfg.Middle, cfg.Distal)
	if !ok {
		s.handleTrackingLoss()
		return
	}

	// Rastreamento recuperado após uma perda
	s.mutex.Lock()
	recovered := s.trackingLost
	s.trackingLost = false
	s.mutex.Unlock()

	if recovered {
		logger.Info("Rastreamento do paciente recuperado")
		s.updateStatus("tracking", "")
	}

	// Alimentar o engine com o frame resolvido
	angleState := eng.Update(points[0], points[1], points[2])
	repState := eng.RepState()

	update := models.TrackingUpdate{
		Exercise:  exercise,
		SessionID: sessionID,
		Angle:     angleState,
		Rep:       repState,
		Timestamp: frame.Timestamp,
	}

	// Detectar repetições concluídas pelo avanço do contador
	var events []models.RepEvent
	for rep := prevReps + 1; rep <= repState.RepsCompleted; rep++ {
		events = append(events, models.RepEvent{
			SessionID: sessionID,
			Exercise:  exercise,
			RepNumber: rep,
			Degrees:   angleState.Degrees,
			IsHold:    cfg.Mode == models.ModeHoldDuration,
			Timestamp: frame.Timestamp,
		})
	}

	// Atualizar estado interno
	s.mutex.Lock()
	s.lastReps = repState.RepsCompleted
	updateCopy := update
	s.lastUpdate = &updateCopy
	s.mutex.Unlock()

	if len(events) > 0 {
		logger.Infof("Repetição %d concluída no exercício %s (%.1f°)",
			repState.RepsCompleted, exercise, angleState.Degrees)
	} else if s.trackerCfg.Debug && !s.throttleOutput {
		logger.Debugf("Frame processado: %.1f° (%s, fase %s)",
			angleState.Degrees, angleState.Zone, repState.Phase)
	}

	// PRIORIDADE 1: Enviar para o WebSocket imediatamente
	if s.wsHub != nil {
		s.wsHub.BroadcastTracking(update)

		if len(events) > 0 {
			s.wsHub.BroadcastRepEvents(events)
		}
	}

	// PRIORIDADE 2: Notificar handlers de repetições
	s.notifyRepEventHandlers(events)

	// PRIORIDADE 3: Salvar no Redis (potencialmente assíncrono)
	if s.redisService != nil && s.redisService.IsConnected() {
		if s.asyncRedis {
			// Usar goroutine para não bloquear o ciclo de coleta
			go func(u models.TrackingUpdate, ev []models.RepEvent) {
				if err := s.redisService.WriteTracking(&u); err != nil {
					logger.Errorf("Erro ao escrever rastreamento no Redis: %v", err)
				}

				if len(ev) > 0 {
					if err := s.redisService.WriteRepEvents(ev); err != nil {
						logger.Errorf("Erro ao escrever repetições no Redis: %v", err)
					}
				}
			}(update, events)
		} else {
			// Versão síncrona (bloqueia até concluir)
			if err := s.redisService.WriteTracking(&update); err != nil {
				logger.Errorf("Erro ao escrever rastreamento no Redis: %v", err)
			}

			if len(events) > 0 {
				if err := s.redisService.WriteRepEvents(events); err != nil {
					logger.Errorf("Erro ao escrever repetições no Redis: %v", err)
				}
			}
		}
	}
}

// handleTrackingLoss trata frames em que o trio de articulações não resolve.
// O filtro de suavização é esvaziado uma única vez por perda, para que
// amostras anteriores à descontinuidade não contaminem o sinal quando o
// paciente voltar ao enquadramento. O engine é mantido: as repetições já
// contadas sobrevivem à oclusão.
func (s *Service) handleTrackingLoss() {
	s.mutex.Lock()
	alreadyLost := s.trackingLost
	s.trackingLost = true
	eng := s.eng
	s.mutex.Unlock()

	if alreadyLost {
		return
	}

	logger.Warn("Rastreamento do paciente perdido (articulações não resolvidas)")
	if eng != nil {
		eng.ResetSmoothing()
	}
	s.updateStatus("sem_rastreamento", "")
}

// handleConnectionError trata erros de conexão com o rastreador
func (s *Service) handleConnectionError(err error) {
	errMsg := err.Error()

	s.mutex.Lock()
	s.consecutiveErrors++
	errCount := s.consecutiveErrors
	s.lastErrorMsg = errMsg
	s.mutex.Unlock()

	logger.Errorf("Erro ao comunicar com o rastreador: %v. Tentativa %d", err, errCount)

	// Marcar fonte como desconectada
	s.source.SetConnected(false)

	// Se exceder o número máximo de tentativas, atualizar status
	if errCount > s.trackerCfg.MaxConsecutiveErrors {
		s.updateStatus("falha_comunicacao", errMsg)

		// Esperar antes da próxima tentativa
		time.Sleep(s.trackerCfg.ReconnectDelay)
	}
}

// updateStatus atualiza o status da sessão
func (s *Service) updateStatus(status string, errorMsg string) {
	s.mutex.Lock()

	s.status = models.TrackingStatus{
		Status:     status,
		Exercise:   s.exercise,
		SessionID:  s.sessionID,
		Timestamp:  time.Now(),
		LastError:  errorMsg,
		ErrorCount: s.consecutiveErrors,
	}
	statusCopy := s.status
	errorCount := s.consecutiveErrors
	s.mutex.Unlock()

	// Atualizar status no Redis
	if s.redisService != nil && s.redisService.IsConnected() {
		s.redisService.WriteStatus(statusCopy)
	}

	// Enviar atualização de status via WebSocket
	if s.wsHub != nil {
		s.wsHub.BroadcastStatus(statusCopy)
	}

	// Log
	if status == "falha_comunicacao" || status == "sem_rastreamento" {
		logger.Warnf("Status da sessão alterado para %s: %s", status, errorMsg)
	} else if errorCount > 0 {
		logger.Info("Status da sessão restaurado")
	}
}

// notifyRepEventHandlers notifica todos os handlers registrados
func (s *Service) notifyRepEventHandlers(events []models.RepEvent) {
	if len(events) == 0 {
		return
	}

	s.handlersLock.RLock()
	handlers := s.eventHandlers
	s.handlersLock.RUnlock()

	for _, handler := range handlers {
		for _, event := range events {
			handler(event) // Chamada síncrona
		}
	}
}

// monitorStats monitora estatísticas de desempenho
func (s *Service) monitorStats() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.logPerformanceStats()
		}
	}
}

// logPerformanceStats registra estatísticas de desempenho
func (s *Service) logPerformanceStats() {
	s.statsLock.Lock()
	defer s.statsLock.Unlock()

	totalCycles := s.stats.totalCycles

	// Calcular duração média do ciclo
	var avgDuration time.Duration
	if len(s.stats.cycleDurations) > 0 {
		var sum time.Duration
		for _, d := range s.stats.cycleDurations {
			sum += d
		}
		avgDuration = sum / time.Duration(len(s.stats.cycleDurations))
		s.stats.avgCycleDuration = avgDuration
	}

	// Registrar estatísticas
	logger.Infof("Estatísticas de desempenho: %d ciclos totais, duração média: %v",
		totalCycles, avgDuration)
}
