// Package redis mantém um espelho do estado vivo da sessão no Redis: o
// ângulo atual, a contagem de repetições e uma janela limitada de eventos
// recentes. Não é um arquivo de sessões: histórico clínico fica fora
// deste serviço.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"fisiotrack_go/internal/config"
	"fisiotrack_go/internal/models"
	"fisiotrack_go/pkg/logger"
)

const (
	// Tamanho máximo da janela de eventos de repetição recentes
	maxRepEventWindow = 100

	// Tamanho máximo do histórico de ângulo por sessão
	maxAngleHistorySize = 1000
)

// Service gerencia a conexão e operações com o Redis
type Service struct {
	client    *redis.Client
	ctx       context.Context
	cancel    context.CancelFunc
	prefix    string
	config    config.RedisConfig
	connected bool
	mutex     sync.RWMutex
}

// NewService cria um novo serviço Redis
func NewService(cfg config.RedisConfig) (*Service, error) {
	if !cfg.Enabled {
		logger.Info("Serviço Redis desabilitado por configuração")
		return &Service{
			config:    cfg,
			connected: false,
		}, nil
	}

	// Criar contexto cancelável
	ctx, cancel := context.WithCancel(context.Background())

	// Configurar endereço
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	// Criar cliente Redis
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Criar serviço
	service := &Service{
		client: client,
		ctx:    ctx,
		cancel: cancel,
		prefix: cfg.Prefix,
		config: cfg,
	}

	// Testar conexão
	if err := service.TestConnection(); err != nil {
		logger.Warnf("Aviso: %v. O Redis será utilizado em modo offline.", err)
		service.connected = false
		return service, nil
	}

	service.connected = true
	return service, nil
}

// TestConnection testa a conexão com o Redis
func (s *Service) TestConnection() error {
	if !s.config.Enabled {
		return fmt.Errorf("serviço Redis desabilitado")
	}

	result, err := s.client.Ping(s.ctx).Result()
	if err != nil {
		return fmt.Errorf("erro ao conectar ao Redis: %w", err)
	}

	logger.Infof("Conexão com o Redis estabelecida. Resposta: %s", result)
	s.connected = true
	return nil
}

// IsConnected verifica se o serviço está conectado
func (s *Service) IsConnected() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.connected && s.config.Enabled
}

// WriteTracking escreve a atualização de rastreamento do frame no Redis
func (s *Service) WriteTracking(update *models.TrackingUpdate) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	// Criar uma pipeline para enviar vários comandos de uma vez
	pipe := s.client.Pipeline()
	timestamp := update.Timestamp.UnixNano() / int64(time.Millisecond)

	// Estado vivo da sessão
	pipe.Set(s.ctx, fmt.Sprintf("%s:exercise", s.prefix), string(update.Exercise), 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:session", s.prefix), update.SessionID, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:angle", s.prefix), update.Angle.Degrees, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:zone", s.prefix), string(update.Angle.Zone), 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:phase", s.prefix), string(update.Rep.Phase), 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:reps", s.prefix), update.Rep.RepsCompleted, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:timestamp", s.prefix), timestamp, 0)

	// Histórico de ângulo da sessão ativa, com tamanho limitado
	histKey := fmt.Sprintf("%s:angle:history", s.prefix)
	pipe.ZAdd(s.ctx, histKey, &redis.Z{
		Score:  float64(timestamp),
		Member: update.Angle.Degrees,
	})
	pipe.ZRemRangeByRank(s.ctx, histKey, 0, int64(-(maxAngleHistorySize + 1)))

	// Executa a pipeline
	_, err := pipe.Exec(s.ctx)
	if err != nil {
		s.mutex.Lock()
		s.connected = false
		s.mutex.Unlock()
		return fmt.Errorf("erro ao escrever rastreamento no Redis: %w", err)
	}

	return nil
}

// WriteRepEvents escreve repetições concluídas no Redis
func (s *Service) WriteRepEvents(events []models.RepEvent) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled || len(events) == 0 {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	pipe := s.client.Pipeline()

	for _, event := range events {
		jsonData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		timestamp := event.Timestamp.UnixNano() / int64(time.Millisecond)

		// Chave única para este evento
		eventKey := fmt.Sprintf("%s:rep_event:%s:%d", s.prefix, event.SessionID, event.RepNumber)
		pipe.Set(s.ctx, eventKey, string(jsonData), 0)

		// Janela de eventos recentes, com tamanho limitado
		recentKey := fmt.Sprintf("%s:rep_events", s.prefix)
		pipe.ZAdd(s.ctx, recentKey, &redis.Z{
			Score:  float64(timestamp),
			Member: eventKey,
		})
		pipe.ZRemRangeByRank(s.ctx, recentKey, 0, int64(-(maxRepEventWindow + 1)))

		// Contador acumulado por exercício
		counterKey := fmt.Sprintf("%s:exercise:%s:rep_count", s.prefix, event.Exercise)
		pipe.Incr(s.ctx, counterKey)
	}

	// Última atualização global para a aplicação do paciente
	latestDataKey := fmt.Sprintf("%s:latest_update", s.prefix)
	latestData := map[string]interface{}{
		"timestamp": time.Now().UnixNano() / int64(time.Millisecond),
		"events":    events,
	}
	jsonData, _ := json.Marshal(latestData)
	pipe.Set(s.ctx, latestDataKey, string(jsonData), 0)

	// Executa a pipeline
	_, err := pipe.Exec(s.ctx)
	if err != nil {
		s.mutex.Lock()
		s.connected = false
		s.mutex.Unlock()
		return fmt.Errorf("erro ao escrever repetições no Redis: %w", err)
	}

	logger.Debugf("Registradas %d repetições no Redis", len(events))
	return nil
}

// WriteStatus escreve o status da sessão no Redis
func (s *Service) WriteStatus(status models.TrackingStatus) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	// Criar uma pipeline para enviar vários comandos
	pipe := s.client.Pipeline()

	// Armazenar status básico
	pipe.Set(s.ctx, fmt.Sprintf("%s:status", s.prefix), status.Status, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:timestamp", s.prefix),
		status.Timestamp.UnixNano()/int64(time.Millisecond), 0)

	if status.Exercise != "" {
		pipe.Set(s.ctx, fmt.Sprintf("%s:exercise", s.prefix), string(status.Exercise), 0)
	}

	// Armazenar informações de erro, se houver
	if status.LastError != "" {
		pipe.Set(s.ctx, fmt.Sprintf("%s:ultimo_erro", s.prefix), status.LastError, 0)
	}

	if status.ErrorCount > 0 {
		pipe.Set(s.ctx, fmt.Sprintf("%s:erros_consecutivos", s.prefix), status.ErrorCount, 0)
	}

	// Executar pipeline
	_, err := pipe.Exec(s.ctx)
	if err != nil {
		s.mutex.Lock()
		s.connected = false
		s.mutex.Unlock()
		return fmt.Errorf("erro ao escrever status no Redis: %w", err)
	}

	return nil
}

// GetStatus obtém o status atual do Redis
func (s *Service) GetStatus() (*models.TrackingStatus, error) {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil, fmt.Errorf("Redis não conectado ou desabilitado")
	}
	s.mutex.RUnlock()

	// Obter status e timestamp
	statusCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:status", s.prefix))
	if statusCmd.Err() != nil {
		return nil, fmt.Errorf("erro ao obter status: %w", statusCmd.Err())
	}

	timestampCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:timestamp", s.prefix))
	if timestampCmd.Err() != nil && timestampCmd.Err() != redis.Nil {
		return nil, fmt.Errorf("erro ao obter timestamp: %w", timestampCmd.Err())
	}

	// Obter exercício e informações de erro
	exerciseCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:exercise", s.prefix))
	lastErrorCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:ultimo_erro", s.prefix))
	errorCountCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:erros_consecutivos", s.prefix))

	// Construir objeto de status
	status := &models.TrackingStatus{
		Status:    statusCmd.Val(),
		Timestamp: time.Now(), // Valor padrão
	}

	// Processar timestamp se disponível
	if timestampCmd.Err() == nil {
		ts, err := timestampCmd.Int64()
		if err == nil {
			status.Timestamp = time.Unix(0, ts*int64(time.Millisecond))
		}
	}

	if exerciseCmd.Err() == nil {
		status.Exercise = models.ExerciseID(exerciseCmd.Val())
	}

	// Processar erro se disponível
	if lastErrorCmd.Err() == nil {
		status.LastError = lastErrorCmd.Val()
	}

	// Processar contador de erros se disponível
	if errorCountCmd.Err() == nil {
		count, err := errorCountCmd.Int()
		if err == nil {
			status.ErrorCount = count
		}
	}

	return status, nil
}

// GetCurrentState obtém o estado vivo da sessão do Redis
func (s *Service) GetCurrentState() (*models.TrackingUpdate, error) {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil, fmt.Errorf("Redis não conectado ou desabilitado")
	}
	s.mutex.RUnlock()

	update := &models.TrackingUpdate{
		Timestamp: time.Now(),
	}

	// Obter exercício e sessão
	if cmd := s.client.Get(s.ctx, fmt.Sprintf("%s:exercise", s.prefix)); cmd.Err() == nil {
		update.Exercise = models.ExerciseID(cmd.Val())
	}
	if cmd := s.client.Get(s.ctx, fmt.Sprintf("%s:session", s.prefix)); cmd.Err() == nil {
		update.SessionID = cmd.Val()
	}

	// Obter ângulo e zona
	if cmd := s.client.Get(s.ctx, fmt.Sprintf("%s:angle", s.prefix)); cmd.Err() == nil {
		if val, err := cmd.Float64(); err == nil {
			update.Angle.Degrees = val
		}
	}
	if cmd := s.client.Get(s.ctx, fmt.Sprintf("%s:zone", s.prefix)); cmd.Err() == nil {
		update.Angle.Zone = models.AngleZone(cmd.Val())
	}

	// Obter estado de repetições
	if cmd := s.client.Get(s.ctx, fmt.Sprintf("%s:phase", s.prefix)); cmd.Err() == nil {
		update.Rep.Phase = models.RepPhase(cmd.Val())
	}
	if cmd := s.client.Get(s.ctx, fmt.Sprintf("%s:reps", s.prefix)); cmd.Err() == nil {
		if val, err := cmd.Int(); err == nil {
			update.Rep.RepsCompleted = val
		}
	}

	// Obter timestamp
	if cmd := s.client.Get(s.ctx, fmt.Sprintf("%s:timestamp", s.prefix)); cmd.Err() == nil {
		if ts, err := cmd.Int64(); err == nil {
			update.Timestamp = time.Unix(0, ts*int64(time.Millisecond))
		}
	}

	return update, nil
}

// GetRepEvents obtém as repetições recentes, da mais nova para a mais antiga
func (s *Service) GetRepEvents(limit int) ([]models.RepEvent, error) {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil, fmt.Errorf("Redis não conectado ou desabilitado")
	}
	s.mutex.RUnlock()

	if limit < 1 || limit > maxRepEventWindow {
		limit = maxRepEventWindow
	}

	// Obter as chaves dos eventos mais recentes
	recentKey := fmt.Sprintf("%s:rep_events", s.prefix)
	keysCmd := s.client.ZRevRange(s.ctx, recentKey, 0, int64(limit-1))
	if keysCmd.Err() != nil {
		return nil, fmt.Errorf("erro ao obter repetições: %w", keysCmd.Err())
	}

	keys := keysCmd.Val()
	events := make([]models.RepEvent, 0, len(keys))

	// Obter os detalhes de cada evento
	for _, key := range keys {
		dataCmd := s.client.Get(s.ctx, key)
		if dataCmd.Err() != nil {
			continue
		}

		var event models.RepEvent
		if err := json.Unmarshal([]byte(dataCmd.Val()), &event); err != nil {
			continue
		}

		events = append(events, event)
	}

	return events, nil
}

// Shutdown encerra graciosamente o serviço Redis
func (s *Service) Shutdown() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Errorf("Erro ao fechar conexão com Redis: %v", err)
		} else {
			logger.Info("Conexão com o Redis fechada")
		}
	}

	s.connected = false
}
