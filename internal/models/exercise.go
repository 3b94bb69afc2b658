package models

// ExerciseID identifica um exercício de forma tipada. Usar um identificador
// estável em vez do nome de exibição evita quebras silenciosas quando o
// nome apresentado ao paciente muda.
type ExerciseID string

// JointID identifica uma articulação nomeada no vocabulário do rastreador
// de pose externo. O lado do corpo é normalizado pelo rastreador antes do
// envio (exercícios unilaterais chegam sempre como lado direito).
type JointID string

// Articulações reconhecidas pelo rastreador de pose
const (
	JointShoulder JointID = "right_shoulder"
	JointElbow    JointID = "right_elbow"
	JointWrist    JointID = "right_wrist"
	JointHip      JointID = "right_hip"
	JointKnee     JointID = "right_knee"
	JointAnkle    JointID = "right_ankle"
	JointTorso    JointID = "torso"
)

// TrackingMode descreve a semântica esperada de permanência do exercício.
// É metadado para a UI e para o tempo de hold padrão; não altera as regras
// de transição da máquina de estados.
type TrackingMode string

const (
	ModeAngleBased         TrackingMode = "angle_based"
	ModeHoldDuration       TrackingMode = "hold_duration"
	ModeRangeOfMotion      TrackingMode = "range_of_motion"
	ModeRepetitionCounting TrackingMode = "repetition_counting"
)

// RepDirection indica em que sentido o ângulo se move durante a fase ativa
// do exercício (a faixa alvo pode estar acima ou abaixo do repouso)
type RepDirection string

const (
	DirectionIncreasing RepDirection = "increasing"
	DirectionDecreasing RepDirection = "decreasing"
)

// CameraHint sugere o posicionamento da câmera para rastreamento confiável
type CameraHint string

const (
	CameraSide  CameraHint = "side"
	CameraFront CameraHint = "front"
)

// Reliability classifica a confiabilidade do rastreamento por ângulo
// para o exercício
type Reliability string

const (
	ReliabilityReliable Reliability = "reliable"
	ReliabilityMarginal Reliability = "marginal"
)

// AngleRange é um intervalo fechado de graus. Invariante: Lower <= Upper
type AngleRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Mid retorna o ponto médio da faixa (o targetAngle do engine)
func (r AngleRange) Mid() float64 {
	return (r.Lower + r.Upper) / 2
}

// HalfWidth retorna metade da largura da faixa (a tolerance do engine)
func (r AngleRange) HalfWidth() float64 {
	return (r.Upper - r.Lower) / 2
}

// Valid verifica o invariante Lower <= Upper
func (r AngleRange) Valid() bool {
	return r.Lower <= r.Upper
}

// Contains verifica se um ângulo está dentro da faixa
func (r AngleRange) Contains(degrees float64) bool {
	return degrees >= r.Lower && degrees <= r.Upper
}

// FormCue é uma dica de postura associada ao exercício. Campos opcionais
// restringem a dica a uma articulação observada, um desvio máximo em graus
// ou uma zona específica do movimento.
type FormCue struct {
	Description  string     `json:"description"`
	WatchedJoint *JointID   `json:"watchedJoint,omitempty"`
	MaxDeviation *float64   `json:"maxDeviation,omitempty"`
	Zone         *AngleZone `json:"zone,omitempty"`
}

// JointTrackingConfig parametriza o engine de repetições para um exercício.
// A seleção de exatamente três articulações (proximal/média/distal) permite
// que um único engine sirva qualquer região do corpo trocando apenas quais
// articulações são lidas, nunca o código.
type JointTrackingConfig struct {
	Proximal    JointID      `json:"proximal"`
	Middle      JointID      `json:"middle"`
	Distal      JointID      `json:"distal"`
	Mode        TrackingMode `json:"mode"`
	TargetRange AngleRange   `json:"targetRange"`
	FormCues    []FormCue    `json:"formCues,omitempty"`
	CameraHint  CameraHint   `json:"cameraHint"`
	Reliability Reliability  `json:"reliability"`
	Direction   RepDirection `json:"direction"`
	RestAngle   float64      `json:"restAngle"`
}
