package tracker

import (
	"encoding/json"
	"fmt"
	"time"

	"fisiotrack_go/internal/models"
)

// wireJoint é uma articulação como chega no fio, antes da filtragem
type wireJoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Confidence float64 `json:"confidence"`
}

// wireFrame é o envelope JSON emitido pelo rastreador de pose. O timestamp
// vem em milissegundos Unix, como o rastreador o reporta.
type wireFrame struct {
	TimestampMs int64                `json:"timestamp_ms"`
	Tracked     bool                 `json:"tracked"`
	Joints      map[string]wireJoint `json:"joints"`
}

// DecodeFrame converte o payload bruto do rastreador em um PoseFrame.
// Articulações com confiança abaixo de minConfidence são descartadas, de
// modo que o restante do sistema só vê posições confiáveis; uma articulação
// oclusa simplesmente não aparece no mapa resultante.
func DecodeFrame(payload []byte, minConfidence float64) (*models.PoseFrame, error) {
	var wire wireFrame
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("erro ao decodificar frame de pose: %w", err)
	}

	frame := &models.PoseFrame{
		Timestamp: time.UnixMilli(wire.TimestampMs),
		Tracked:   wire.Tracked,
		Joints:    make(map[models.JointID]models.JointSample, len(wire.Joints)),
	}

	if !wire.Tracked {
		return frame, nil
	}

	for name, joint := range wire.Joints {
		if joint.Confidence < minConfidence {
			continue
		}
		frame.Joints[models.JointID(name)] = models.JointSample{
			Position:   models.Point3{X: joint.X, Y: joint.Y, Z: joint.Z},
			Confidence: joint.Confidence,
		}
	}

	return frame, nil
}
