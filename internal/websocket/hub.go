package websocket

import (
	"context"
	"math"
	"sync"
	"time"

	"fisiotrack_go/internal/exercises"
	"fisiotrack_go/internal/models"
	"fisiotrack_go/pkg/logger"
)

// StatusProvider fornece o status atual da sessão para comandos get_status.
// É injetado pelo servidor depois que o serviço de sessão existe.
type StatusProvider func() models.TrackingStatus

// Hub gerencia todas as conexões WebSocket e distribuição de mensagens
type Hub struct {
	// Clientes registrados
	clients map[*Client]bool

	// Canal para registrar clientes
	register chan *Client

	// Canal para desregistrar clientes
	unregister chan *Client

	// Canal para mensagens de broadcast
	broadcast chan []byte

	// Comando recebido dos clientes
	commands chan models.ClientCommand

	// Mutex para operações concorrentes no mapa de clientes
	mu sync.RWMutex

	// Última atualização enviada (para limitar a taxa de broadcast)
	lastUpdate     *models.TrackingUpdate
	lastUpdateTime time.Time
	updateLock     sync.RWMutex

	// Fonte do status atual da sessão (pode ser nil antes do wiring)
	statusProvider StatusProvider
	providerLock   sync.RWMutex

	// Estatísticas
	stats struct {
		totalMessages      int64
		totalClients       int64
		messagesPerSecond  float64
		lastStatsReset     time.Time
		messagesSinceReset int64
	}
	statsLock sync.Mutex

	// Sinal para encerramento do hub
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub cria uma nova instância do Hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256), // Buffer aumentado para evitar bloqueios
		commands:   make(chan models.ClientCommand, 100),
		ctx:        ctx,
		cancel:     cancel,
	}

	h.stats.lastStatsReset = time.Now()

	return h
}

// SetStatusProvider registra a fonte de status usada pelos comandos
func (h *Hub) SetStatusProvider(provider StatusProvider) {
	h.providerLock.Lock()
	defer h.providerLock.Unlock()
	h.statusProvider = provider
}

// Run inicia o loop principal do hub para gerenciar clientes e mensagens
func (h *Hub) Run() {
	logger.Info("Iniciando WebSocket Hub")

	// Ticker para estatísticas periódicas
	statsTicker := time.NewTicker(30 * time.Second)
	defer statsTicker.Stop()

	// Ticker para manter conexões ativas
	keepaliveTicker := time.NewTicker(5 * time.Second)
	defer keepaliveTicker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			// Contexto cancelado, encerrar o hub
			logger.Info("Encerrando WebSocket Hub")
			h.closeAllClients()
			return

		case client := <-h.register:
			// Registrar novo cliente
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()

			logger.Infof("Novo cliente WebSocket conectado. ID: %s. Total: %d", client.id, clientCount)

			// Atualizar estatísticas
			h.statsLock.Lock()
			h.stats.totalClients++
			h.statsLock.Unlock()

			// Enviar dados iniciais para o cliente
			go h.sendInitialDataToClient(client)

		case client := <-h.unregister:
			// Desregistrar cliente
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				logger.Infof("Cliente WebSocket desconectado. ID: %s. Total: %d", client.id, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			// Enviar mensagem para todos os clientes
			h.mu.RLock()
			clientCount := len(h.clients)

			// Atualizar estatísticas
			h.statsLock.Lock()
			h.stats.totalMessages++
			h.stats.messagesSinceReset++
			h.statsLock.Unlock()

			if clientCount == 0 {
				h.mu.RUnlock()
				continue // Nenhum cliente conectado, pular broadcast
			}

			// Broadcast otimizado
			deadClients := make([]*Client, 0, 4)

			for client := range h.clients {
				select {
				case client.send <- message:
					// Mensagem enviada com sucesso
				default:
					// Canal do cliente está cheio, marcar para desconexão
					deadClients = append(deadClients, client)
				}
			}
			h.mu.RUnlock()

			// Evictar clientes mortos inline: reenviar pelo canal
			// unregister bloquearia o próprio loop do hub, que é o
			// único receptor desse canal
			if len(deadClients) > 0 {
				h.mu.Lock()
				for _, client := range deadClients {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
						logger.Infof("Cliente WebSocket removido por buffer cheio. ID: %s. Total: %d",
							client.id, len(h.clients))
					}
				}
				h.mu.Unlock()
			}

		case cmd := <-h.commands:
			// Processar comando de um cliente
			go h.handleClientCommand(cmd)

		case <-statsTicker.C:
			// Calcular taxa de mensagens por segundo
			h.statsLock.Lock()
			elapsed := time.Since(h.stats.lastStatsReset).Seconds()
			if elapsed > 0 {
				h.stats.messagesPerSecond = float64(h.stats.messagesSinceReset) / elapsed
			}

			// Resetar contador para próximo cálculo
			h.stats.messagesSinceReset = 0
			h.stats.lastStatsReset = time.Now()

			// Obter estatísticas para log
			mps := h.stats.messagesPerSecond
			total := h.stats.totalMessages
			h.statsLock.Unlock()

			// Obter número de clientes
			h.mu.RLock()
			clientCount := len(h.clients)
			h.mu.RUnlock()

			logger.Infof("Estatísticas WebSocket: %d clientes, %.2f msgs/seg, total: %d mensagens",
				clientCount, mps, total)

		case <-keepaliveTicker.C:
			// Enviar ping para todos os clientes para manter conexões ativas
			h.sendPingToAllClients()
		}
	}
}

// BroadcastTracking envia a atualização de rastreamento por frame para
// todos os clientes. A taxa é limitada: atualizações a menos de 50ms da
// anterior só passam se o ângulo mudou de forma perceptível ou o estado
// de repetições avançou.
func (h *Hub) BroadcastTracking(update models.TrackingUpdate) {
	h.updateLock.Lock()

	shouldSend := true
	if h.lastUpdate != nil {
		timeSinceLastSend := time.Since(h.lastUpdateTime)

		if timeSinceLastSend < 50*time.Millisecond {
			angleChanged := math.Abs(update.Angle.Degrees-h.lastUpdate.Angle.Degrees) > 0.5
			repChanged := update.Rep.RepsCompleted != h.lastUpdate.Rep.RepsCompleted ||
				update.Rep.Phase != h.lastUpdate.Rep.Phase

			if !angleChanged && !repChanged {
				shouldSend = false
			}
		}
	}

	// A base de comparação só avança quando a mensagem realmente sai;
	// caso contrário um movimento lento (<0.5° por frame) ficaria
	// suprimido indefinidamente enquanto a base desliza junto
	if shouldSend {
		h.lastUpdate = &update
		h.lastUpdateTime = time.Now()
	}
	h.updateLock.Unlock()

	if !shouldSend {
		return
	}

	message := NewTrackingMessage(update)

	// Serializar e enviar a mensagem
	if jsonMessage, err := SerializeMessage(message); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de rastreamento", err)
	}
}

// BroadcastRepEvents envia repetições concluídas para todos os clientes.
// Eventos de repetição nunca passam pelo limitador de taxa: cada um precisa
// chegar ao paciente.
func (h *Hub) BroadcastRepEvents(events []models.RepEvent) {
	if len(events) == 0 {
		return
	}

	message := NewRepEventMessage(events)

	// Serializar e enviar a mensagem
	if jsonMessage, err := SerializeMessage(message); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de repetições", err)
	}
}

// BroadcastStatus envia atualização de status para todos os clientes
func (h *Hub) BroadcastStatus(status models.TrackingStatus) {
	message := NewStatusMessage(status)

	// Serializar e enviar a mensagem
	if jsonMessage, err := SerializeMessage(message); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de status", err)
	}
}

// handleClientCommand processa comandos recebidos dos clientes
func (h *Hub) handleClientCommand(cmd models.ClientCommand) {
	logger.Infof("Comando recebido do cliente %s: %s", cmd.ClientID, cmd.Command)

	switch cmd.Command {
	case "get_status":
		h.sendCurrentStatus(cmd.ClientID)
	case "get_exercises":
		h.sendExerciseList(cmd.ClientID)
	case "ping":
		h.sendPong(cmd.ClientID, cmd.Params)
	default:
		logger.Warnf("Comando desconhecido: %s", cmd.Command)
	}
}

// sendCurrentStatus envia o status atual para um cliente específico
func (h *Hub) sendCurrentStatus(clientID string) {
	client := h.getClientByID(clientID)
	if client == nil {
		return
	}

	h.providerLock.RLock()
	provider := h.statusProvider
	h.providerLock.RUnlock()

	if provider == nil {
		return
	}

	message := NewStatusMessage(provider())
	if jsonMsg, err := SerializeMessage(message); err == nil {
		client.send <- jsonMsg
	}
}

// sendExerciseList envia o catálogo de exercícios para um cliente específico
func (h *Hub) sendExerciseList(clientID string) {
	client := h.getClientByID(clientID)
	if client == nil {
		return
	}

	message := NewExerciseListMessage(exercises.All())
	if jsonMsg, err := SerializeMessage(message); err == nil {
		client.send <- jsonMsg
	}
}

// sendPong envia resposta de pong para um cliente específico
func (h *Hub) sendPong(clientID string, params interface{}) {
	client := h.getClientByID(clientID)
	if client == nil {
		return
	}

	// Extrair timestamp do ping
	var pingTime int64
	if paramsMap, ok := params.(map[string]interface{}); ok {
		if timeVal, ok := paramsMap["time"].(float64); ok {
			pingTime = int64(timeVal)
		}
	}

	pong := CreatePongResponse(pingTime)

	// Serializar e enviar apenas para o cliente solicitante
	if jsonMsg, err := SerializeMessage(pong); err == nil {
		client.send <- jsonMsg
	}
}

// sendInitialDataToClient envia dados iniciais para um novo cliente:
// boas-vindas, status atual da sessão e o catálogo de exercícios
func (h *Hub) sendInitialDataToClient(client *Client) {
	welcome := models.WebSocketMessage{
		Type:      "welcome",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message":  "Conectado ao servidor FisioTrack Motion",
			"clientId": client.id,
		},
	}

	if jsonMsg, err := SerializeMessage(welcome); err == nil {
		client.send <- jsonMsg
	}

	h.providerLock.RLock()
	provider := h.statusProvider
	h.providerLock.RUnlock()

	if provider != nil {
		if jsonMsg, err := SerializeMessage(NewStatusMessage(provider())); err == nil {
			client.send <- jsonMsg
		}
	}

	if jsonMsg, err := SerializeMessage(NewExerciseListMessage(exercises.All())); err == nil {
		client.send <- jsonMsg
	}
}

// Shutdown encerra graciosamente o hub
func (h *Hub) Shutdown() {
	h.cancel()
	// Aguardar um pequeno tempo para processamento finalizar
	time.Sleep(100 * time.Millisecond)
}

// closeAllClients fecha todas as conexões dos clientes
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("Fechando todas as conexões de clientes WebSocket")
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// ClientCount retorna o número atual de clientes conectados
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// getClientByID retorna um cliente pelo seu ID
func (h *Hub) getClientByID(clientID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.id == clientID {
			return client
		}
	}
	return nil
}

// sendPingToAllClients envia ping para todos os clientes
func (h *Hub) sendPingToAllClients() {
	ping := models.PingMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "ping",
			Timestamp: time.Now(),
		},
		Time: time.Now().UnixNano() / int64(time.Millisecond),
	}

	if jsonMsg, err := SerializeMessage(ping); err == nil {
		h.mu.RLock()
		if len(h.clients) > 0 {
			h.broadcast <- jsonMsg
		}
		h.mu.RUnlock()
	}
}
