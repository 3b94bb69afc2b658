package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisiotrack_go/internal/models"
)

// fakeClock permite avançar o tempo deterministicamente nos testes de hold
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// pointsAt constrói um trio de pontos cujo ângulo interno na articulação
// do meio é exatamente deg
func pointsAt(deg float64) (models.Point3, models.Point3, models.Point3) {
	rad := deg * math.Pi / 180.0
	proximal := models.Point3{X: 1, Y: 0, Z: 0}
	joint := models.Point3{X: 0, Y: 0, Z: 0}
	distal := models.Point3{X: math.Cos(rad), Y: math.Sin(rad), Z: 0}
	return proximal, joint, distal
}

// newTestEngine cria um engine com janela de suavização 1 (sem filtro)
// e relógio falso, para alimentar sequências de graus exatas
func newTestEngine(params Params, clock *fakeClock) *repAngleEngine {
	params.SmoothingWindow = 1
	e := newRepAngleEngine(params)
	e.now = clock.now
	return e
}

func feed(e *repAngleEngine, deg float64) models.AngleState {
	p, j, d := pointsAt(deg)
	return e.Update(p, j, d)
}

func TestRampaCrescenteContaUmaRepeticao(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(Params{
		TargetAngle: 152.5, // Faixa alvo 130..175
		Tolerance:   22.5,
		Direction:   models.DirectionIncreasing,
		RestAngle:   25,
	}, clock)

	// Rampa monotônica 25 -> 150 -> 25
	for _, deg := range []float64{25, 60, 100, 140, 150, 120, 80, 40, 25} {
		feed(e, deg)
		clock.advance(33 * time.Millisecond)
	}

	state := e.RepState()
	assert.Equal(t, 1, state.RepsCompleted)
	assert.Equal(t, models.PhaseAtRest, state.Phase)
	assert.False(t, state.IsHolding)
}

func TestDirecaoDecrescentePassagemBreve(t *testing.T) {
	clock := newFakeClock()
	params := Params{
		TargetAngle:      110, // Faixa alvo 80..140
		Tolerance:        30,
		RequiredHoldTime: 2 * time.Second,
		Direction:        models.DirectionDecreasing,
		RestAngle:        170,
	}

	// Rampa 170 -> 110 -> 170 com permanência total abaixo de 2s na faixa:
	// a regra de passagem ainda conta exatamente 1 repetição
	e := newTestEngine(params, clock)
	for _, deg := range []float64{170, 150, 130, 110, 130, 150, 170} {
		feed(e, deg)
		clock.advance(200 * time.Millisecond)
	}

	state := e.RepState()
	assert.Equal(t, 1, state.RepsCompleted)
	assert.Equal(t, models.PhaseAtRest, state.Phase)
}

func TestDirecaoDecrescenteHoldNaoContaDobrado(t *testing.T) {
	clock := newFakeClock()
	params := Params{
		TargetAngle:      110,
		Tolerance:        30,
		RequiredHoldTime: 2 * time.Second,
		Direction:        models.DirectionDecreasing,
		RestAngle:        170,
	}

	e := newTestEngine(params, clock)

	feed(e, 170)
	feed(e, 150)
	feed(e, 120) // Entra na faixa alvo, timer de hold inicia

	// Permanece na faixa por mais de 2s
	for i := 0; i < 12; i++ {
		clock.advance(250 * time.Millisecond)
		feed(e, 110)
	}
	require.Equal(t, 1, e.RepState().RepsCompleted)
	assert.True(t, e.RepState().IsHolding)

	// Retorna ao repouso: a saída da faixa não pode contar de novo
	feed(e, 150)
	feed(e, 170)

	state := e.RepState()
	assert.Equal(t, 1, state.RepsCompleted)
	assert.Equal(t, models.PhaseAtRest, state.Phase)
}

func TestOscilacaoDentroDaFaixaContaNoMaximoUma(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(Params{
		TargetAngle: 152.5,
		Tolerance:   22.5,
		Direction:   models.DirectionIncreasing,
		RestAngle:   25,
	}, clock)

	feed(e, 25)
	feed(e, 100)

	// Oscila dentro da faixa 130..175 sem nunca sair
	for i := 0; i < 30; i++ {
		feed(e, 140+float64(i%2)*20)
		clock.advance(33 * time.Millisecond)
	}
	assert.Equal(t, 1, e.RepState().RepsCompleted)
	assert.Equal(t, models.PhaseInTarget, e.RepState().Phase)

	// Só depois de sair da faixa e voltar é que outra repetição é possível
	feed(e, 100)
	assert.Equal(t, 1, e.RepState().RepsCompleted)
	feed(e, 150)
	feed(e, 100)
	assert.Equal(t, 2, e.RepState().RepsCompleted)
}

func TestTentativaAbortadaNaoConta(t *testing.T) {
	clock := newFakeClock()
	e := newTestEngine(Params{
		TargetAngle: 152.5, // Faixa alvo 130..175
		Tolerance:   22.5,
		Direction:   models.DirectionIncreasing,
		RestAngle:   25,
	}, clock)

	// 25 (repouso) -> 90 (em movimento, ainda fora da faixa) -> 25 (repouso)
	feed(e, 25)
	require.Equal(t, models.PhaseAtRest, e.RepState().Phase)

	feed(e, 90)
	require.Equal(t, models.PhaseMoving, e.RepState().Phase)

	feed(e, 25)

	state := e.RepState()
	assert.Equal(t, 0, state.RepsCompleted)
	assert.Equal(t, models.PhaseAtRest, state.Phase)
}

func TestCenarioCompletoComHold(t *testing.T) {
	// Faixa alvo 150..180, repouso 90, direção crescente, hold de 3s
	clock := newFakeClock()
	e := newTestEngine(Params{
		TargetAngle:      165,
		Tolerance:        15,
		RequiredHoldTime: 3 * time.Second,
		Direction:        models.DirectionIncreasing,
		RestAngle:        90,
	}, clock)

	feed(e, 90)
	feed(e, 110)
	feed(e, 140)
	require.Equal(t, models.PhaseMoving, e.RepState().Phase)

	feed(e, 155) // Entra na faixa alvo, t=0
	require.Equal(t, models.PhaseInTarget, e.RepState().Phase)
	require.True(t, e.RepState().IsHolding)
	require.Equal(t, 0, e.RepState().RepsCompleted)

	clock.advance(1 * time.Second)
	feed(e, 156) // t=1s: hold ainda não satisfeito
	require.Equal(t, 0, e.RepState().RepsCompleted)

	clock.advance(2100 * time.Millisecond)
	feed(e, 157) // t=3.1s: hold satisfeito, repetição #1
	require.Equal(t, 1, e.RepState().RepsCompleted)
	require.Equal(t, models.PhaseInTarget, e.RepState().Phase)

	feed(e, 158) // Continua na faixa: sem recontagem
	require.Equal(t, 1, e.RepState().RepsCompleted)

	feed(e, 120) // Sai da faixa, longe do repouso
	require.Equal(t, models.PhaseReturning, e.RepState().Phase)
	require.Equal(t, 1, e.RepState().RepsCompleted)

	feed(e, 95) // Perto do repouso

	state := e.RepState()
	assert.Equal(t, 1, state.RepsCompleted)
	assert.Equal(t, models.PhaseAtRest, state.Phase)
	assert.False(t, state.IsHolding)
}

func TestEntradaDiretaNaFaixaAPartirDoRepouso(t *testing.T) {
	// Exercício cuja faixa alvo intersecta a vizinhança do repouso: a
	// transição atRest -> inTarget é direta, sem passar por moving
	clock := newFakeClock()
	e := newTestEngine(Params{
		TargetAngle: 100,
		Tolerance:   15,
		Direction:   models.DirectionIncreasing,
		RestAngle:   90,
	}, clock)

	feed(e, 90)
	assert.Equal(t, models.PhaseInTarget, e.RepState().Phase)
}

func TestFromConfigDerivaParametros(t *testing.T) {
	cfg := models.JointTrackingConfig{
		Mode:        models.ModeHoldDuration,
		TargetRange: models.AngleRange{Lower: 130, Upper: 175},
		Direction:   models.DirectionIncreasing,
		RestAngle:   25,
	}

	p := FromConfig(cfg, 3*time.Second)
	assert.Equal(t, 152.5, p.TargetAngle)
	assert.Equal(t, 22.5, p.Tolerance)
	assert.Equal(t, 3*time.Second, p.RequiredHoldTime)
	assert.Equal(t, 25.0, p.RestAngle)

	// Modos não isométricos não exigem hold: passagens breves contam
	cfg.Mode = models.ModeRepetitionCounting
	p = FromConfig(cfg, 3*time.Second)
	assert.Zero(t, p.RequiredHoldTime)
}

func TestResetSmoothingDescartaAmostrasAntigas(t *testing.T) {
	clock := newFakeClock()
	params := Params{
		TargetAngle:     152.5,
		Tolerance:       22.5,
		Direction:       models.DirectionIncreasing,
		RestAngle:       25,
		SmoothingWindow: 5,
	}
	e := newRepAngleEngine(params)
	e.now = clock.now

	for i := 0; i < 5; i++ {
		feed(e, 170)
	}

	// Sem reset, a primeira amostra pós-perda seria misturada às antigas
	e.ResetSmoothing()
	state := feed(e, 30)
	assert.Equal(t, 30.0, state.Degrees)
}
