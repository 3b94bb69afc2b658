package models

import "time"

// WebSocketMessage representa a estrutura base de todas as mensagens WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"`            // Tipo da mensagem: "tracking", "rep_events", "status", etc.
	Timestamp time.Time   `json:"timestamp"`       // Timestamp da mensagem
	Data      interface{} `json:"data,omitempty"`  // Dados adicionais específicos do tipo
	Error     string      `json:"error,omitempty"` // Mensagem de erro, se houver
}

// TrackingMessage é a mensagem por frame com ângulo e estado de repetições
type TrackingMessage struct {
	WebSocketMessage
	Exercise  ExerciseID `json:"exercise"`
	SessionID string     `json:"sessionId"`
	Angle     AngleState `json:"angle"`
	Rep       RepState   `json:"rep"`
}

// RepEventMessage é uma mensagem específica para repetições concluídas
type RepEventMessage struct {
	WebSocketMessage
	Events []RepEvent `json:"events"`
}

// StatusMessage é uma mensagem específica para atualizações de status
type StatusMessage struct {
	WebSocketMessage
	Status     string     `json:"status"`
	Exercise   ExerciseID `json:"exercise,omitempty"`
	LastError  string     `json:"lastError,omitempty"`
	ErrorCount int        `json:"errorCount,omitempty"`
}

// ExerciseListMessage devolve o catálogo de exercícios rastreáveis
type ExerciseListMessage struct {
	WebSocketMessage
	Exercises map[ExerciseID]JointTrackingConfig `json:"exercises"`
}

// CommandMessage é uma mensagem de comando do cliente para o servidor
type CommandMessage struct {
	Type   string      `json:"type"`             // Tipo de comando: "get_status", "get_exercises", etc.
	Params interface{} `json:"params,omitempty"` // Parâmetros adicionais
	ID     string      `json:"id,omitempty"`     // ID opcional para correlacionar solicitações/respostas
}

// ClientCommand representa um comando enviado pelo cliente
type ClientCommand struct {
	Command  string      `json:"command"`
	Params   interface{} `json:"params,omitempty"`
	ClientID string      `json:"-"` // Usado internamente, não enviado no JSON
}

// PingMessage representa um ping enviado pelo cliente
type PingMessage struct {
	WebSocketMessage
	Time int64 `json:"time"` // Timestamp em milissegundos
}

// PongMessage representa um pong enviado pelo servidor
type PongMessage struct {
	WebSocketMessage
	Time       int64 `json:"time"`       // Timestamp original do ping
	ServerTime int64 `json:"serverTime"` // Timestamp do servidor em milissegundos
}
