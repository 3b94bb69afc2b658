package models

import "time"

// Point3 é uma coordenada 3D de articulação fornecida pelo subsistema
// externo de rastreamento corporal, em espaço do mundo (metros)
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AngleZone classifica o ângulo atual em relação à faixa alvo do exercício
type AngleZone string

const (
	ZoneBelowTarget AngleZone = "below_target"
	ZoneTarget      AngleZone = "target"
	ZoneAboveTarget AngleZone = "above_target"
)

// RepPhase é a posição da máquina de estados direcional do engine
type RepPhase string

const (
	PhaseAtRest    RepPhase = "at_rest"
	PhaseMoving    RepPhase = "moving"
	PhaseInTarget  RepPhase = "in_target"
	PhaseReturning RepPhase = "returning"
)

// AngleState é produzido uma vez por frame; valor imutável, não persistido
type AngleState struct {
	Degrees float64   `json:"degrees"`
	Zone    AngleZone `json:"zone"`
}

// RepState expõe o estado de contagem do engine. RepsCompleted é
// monotônico dentro de uma vida do engine.
type RepState struct {
	RepsCompleted int      `json:"repsCompleted"`
	IsHolding     bool     `json:"isHolding"`
	Phase         RepPhase `json:"phase"`
}

// TrackingUpdate agrega o resultado de um frame processado, pronto para
// distribuição ao hub WebSocket e ao Redis
type TrackingUpdate struct {
	Exercise  ExerciseID `json:"exercise"`
	SessionID string     `json:"sessionId"`
	Angle     AngleState `json:"angle"`
	Rep       RepState   `json:"rep"`
	Timestamp time.Time  `json:"timestamp"`
}

// RepEvent representa uma repetição ou hold concluído detectado pela
// transição do contador do engine
type RepEvent struct {
	SessionID string     `json:"sessionId"`
	Exercise  ExerciseID `json:"exercise"`
	RepNumber int        `json:"repNumber"`
	Degrees   float64    `json:"degrees"`
	IsHold    bool       `json:"isHold"`
	Timestamp time.Time  `json:"timestamp"`
}

// TrackingStatus representa o status atual da sessão de rastreamento
type TrackingStatus struct {
	Status     string     `json:"status"`
	Exercise   ExerciseID `json:"exercise,omitempty"`
	SessionID  string     `json:"sessionId,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	LastError  string     `json:"lastError,omitempty"`
	ErrorCount int        `json:"errorCount,omitempty"`
}
