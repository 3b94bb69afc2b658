package websocket

import (
	"encoding/json"
	"time"

	"fisiotrack_go/internal/models"
)

// Funções utilitárias para criação e processamento de mensagens WebSocket

// NewTrackingMessage cria uma nova mensagem de rastreamento por frame
func NewTrackingMessage(update models.TrackingUpdate) *models.TrackingMessage {
	return &models.TrackingMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "tracking",
			Timestamp: time.Now(),
		},
		Exercise:  update.Exercise,
		SessionID: update.SessionID,
		Angle:     update.Angle,
		Rep:       update.Rep,
	}
}

// NewRepEventMessage cria uma nova mensagem de repetições concluídas
func NewRepEventMessage(events []models.RepEvent) *models.RepEventMessage {
	return &models.RepEventMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "rep_events",
			Timestamp: time.Now(),
		},
		Events: events,
	}
}

// NewStatusMessage cria uma nova mensagem de status
func NewStatusMessage(status models.TrackingStatus) *models.StatusMessage {
	return &models.StatusMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "status",
			Timestamp: time.Now(),
		},
		Status:     status.Status,
		Exercise:   status.Exercise,
		LastError:  status.LastError,
		ErrorCount: status.ErrorCount,
	}
}

// NewExerciseListMessage cria uma mensagem com o catálogo de exercícios
func NewExerciseListMessage(exercises map[models.ExerciseID]models.JointTrackingConfig) *models.ExerciseListMessage {
	return &models.ExerciseListMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "exercises",
			Timestamp: time.Now(),
		},
		Exercises: exercises,
	}
}

// NewErrorMessage cria uma nova mensagem de erro
func NewErrorMessage(message string, errorCode string) models.WebSocketMessage {
	return models.WebSocketMessage{
		Type:      "error",
		Timestamp: time.Now(),
		Error:     message,
		Data: map[string]string{
			"code": errorCode,
		},
	}
}

// SerializeMessage serializa uma mensagem para JSON
func SerializeMessage(message interface{}) ([]byte, error) {
	return json.Marshal(message)
}

// CreatePongResponse cria uma resposta para um ping do cliente
func CreatePongResponse(pingTime int64) *models.PongMessage {
	return &models.PongMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
		},
		Time:       pingTime,
		ServerTime: time.Now().UnixNano() / int64(time.Millisecond),
	}
}
