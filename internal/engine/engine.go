// Package engine implementa a máquina de estados direcional que converte o
// sinal contínuo de ângulo articular em zonas qualitativas e contagem
// discreta de repetições/holds.
package engine

import (
	"math"
	"time"

	"fisiotrack_go/internal/angle"
	"fisiotrack_go/internal/models"
)

// RestThreshold é a margem fixa em graus em torno do ângulo de repouso.
// "Perto do repouso" significa dentro de 15° do restAngle.
const RestThreshold = 15.0

// Engine é o contrato do motor de repetições. Uma instância é construída
// no início de cada sessão de exercício, alimentada com um frame por
// chamada e descartada quando a sessão termina ou o exercício muda -
// nunca reutilizada. Não é seguro para uso concorrente: pertence
// exclusivamente à goroutine da sessão ativa.
type Engine interface {
	// Update processa um frame com as três articulações resolvidas e
	// retorna o estado de ângulo classificado
	Update(proximal, joint, distal models.Point3) models.AngleState

	// RepState retorna o estado atual de contagem de repetições
	RepState() models.RepState

	// ResetSmoothing esvazia o filtro de suavização. Deve ser chamado
	// quando o rastreamento é perdido, para que amostras anteriores à
	// descontinuidade não se misturem ao sinal novo.
	ResetSmoothing()
}

// Params são os parâmetros de construção do engine, derivados da
// configuração do exercício ativo
type Params struct {
	TargetAngle      float64       // Ponto médio da faixa alvo
	Tolerance        float64       // Metade da largura da faixa alvo
	RequiredHoldTime time.Duration // Permanência mínima na faixa para contar o hold
	Direction        models.RepDirection
	RestAngle        float64
	SmoothingWindow  int // Janela do filtro interno (DefaultWindow se <1)
}

// FromConfig deriva os parâmetros do engine a partir da configuração de
// rastreamento. O tempo de hold só se aplica a exercícios isométricos
// (ModeHoldDuration); nos demais, qualquer passagem breve pela faixa alvo
// conta imediatamente.
func FromConfig(cfg models.JointTrackingConfig, holdTime time.Duration) Params {
	p := Params{
		TargetAngle:     cfg.TargetRange.Mid(),
		Tolerance:       cfg.TargetRange.HalfWidth(),
		Direction:       cfg.Direction,
		RestAngle:       cfg.RestAngle,
		SmoothingWindow: angle.DefaultWindow,
	}
	if cfg.Mode == models.ModeHoldDuration {
		p.RequiredHoldTime = holdTime
	}
	return p
}

// holdTimer representa explicitamente o estado "segurando desde". O
// discriminante holding torna impossível ler um timestamp sem hold ativo.
type holdTimer struct {
	holding bool
	since   time.Time
}

func (t *holdTimer) start(now time.Time) {
	t.holding = true
	t.since = now
}

func (t *holdTimer) clear() {
	t.holding = false
	t.since = time.Time{}
}

func (t *holdTimer) elapsed(now time.Time) time.Duration {
	if !t.holding {
		return 0
	}
	return now.Sub(t.since)
}

// repAngleEngine é a única implementação de produção do Engine
type repAngleEngine struct {
	params   Params
	smoother *angle.Smoother

	phase       models.RepPhase
	reps        int
	hold        holdTimer
	holdCounted bool // Já contou o hold nesta visita à faixa alvo

	now func() time.Time // Injetável para testes determinísticos
}

// New cria um engine com os parâmetros indicados
func New(params Params) Engine {
	return newRepAngleEngine(params)
}

func newRepAngleEngine(params Params) *repAngleEngine {
	window := params.SmoothingWindow
	if window < 1 {
		window = angle.DefaultWindow
	}
	return &repAngleEngine{
		params:   params,
		smoother: angle.NewSmoother(window),
		phase:    models.PhaseAtRest,
		now:      time.Now,
	}
}

// Update processa um frame: calcula o ângulo bruto, suaviza, classifica a
// zona e avança a máquina de estados
func (e *repAngleEngine) Update(proximal, joint, distal models.Point3) models.AngleState {
	raw := angle.JointAngle(proximal, joint, distal)
	degrees := e.smoother.Smooth(raw)
	zone := e.classify(degrees)
	e.advance(degrees, zone)
	return models.AngleState{Degrees: degrees, Zone: zone}
}

// RepState retorna o estado de contagem atual
func (e *repAngleEngine) RepState() models.RepState {
	return models.RepState{
		RepsCompleted: e.reps,
		IsHolding:     e.phase == models.PhaseInTarget && e.hold.holding,
		Phase:         e.phase,
	}
}

// ResetSmoothing esvazia o filtro interno
func (e *repAngleEngine) ResetSmoothing() {
	e.smoother.Reset()
}

// classify compara o ângulo suavizado com a faixa alvo
func (e *repAngleEngine) classify(degrees float64) models.AngleZone {
	switch {
	case degrees < e.params.TargetAngle-e.params.Tolerance:
		return models.ZoneBelowTarget
	case degrees > e.params.TargetAngle+e.params.Tolerance:
		return models.ZoneAboveTarget
	default:
		return models.ZoneTarget
	}
}

// isMovingTowardTarget verifica se o ângulo saiu do repouso no sentido da
// faixa alvo. A consciência de direção é essencial: a faixa alvo fica de
// lados diferentes do repouso conforme o exercício, e sem este portão
// pequenas oscilações perto do repouso iniciariam ciclos falsos.
func (e *repAngleEngine) isMovingTowardTarget(degrees float64) bool {
	if e.params.Direction == models.DirectionIncreasing {
		return degrees > e.params.RestAngle+RestThreshold
	}
	return degrees < e.params.RestAngle-RestThreshold
}

// advance executa a tabela de transições sobre as quatro fases
func (e *repAngleEngine) advance(degrees float64, zone models.AngleZone) {
	nearRest := math.Abs(degrees-e.params.RestAngle) < RestThreshold

	switch e.phase {
	case models.PhaseAtRest:
		if zone == models.ZoneTarget {
			e.enterTarget()
		} else if e.isMovingTowardTarget(degrees) {
			e.phase = models.PhaseMoving
		}

	case models.PhaseMoving:
		if zone == models.ZoneTarget {
			e.enterTarget()
		} else if nearRest {
			// Tentativa abortada: voltou ao repouso sem alcançar a faixa
			// alvo, nenhuma repetição contada
			e.phase = models.PhaseAtRest
		}

	case models.PhaseInTarget:
		if zone == models.ZoneTarget {
			// A flag garante no máximo uma repetição por visita à faixa,
			// independentemente de quanto tempo a permanência durar
			if !e.holdCounted && e.hold.elapsed(e.now()) >= e.params.RequiredHoldTime {
				e.reps++
				e.holdCounted = true
			}
		} else {
			// Saiu da faixa alvo. Uma passagem breve que nunca satisfez o
			// hold ainda conta uma repetição (exercícios não isométricos).
			if !e.holdCounted {
				e.reps++
			}
			e.hold.clear()
			e.holdCounted = false
			if nearRest {
				e.phase = models.PhaseAtRest
			} else {
				e.phase = models.PhaseReturning
			}
		}

	case models.PhaseReturning:
		if zone == models.ZoneTarget {
			e.enterTarget()
		} else if nearRest {
			e.phase = models.PhaseAtRest
		}
	}
}

// enterTarget inicia uma nova visita à faixa alvo
func (e *repAngleEngine) enterTarget() {
	e.phase = models.PhaseInTarget
	e.hold.start(e.now())
	e.holdCounted = false
}
