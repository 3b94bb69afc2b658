package session

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisiotrack_go/internal/config"
	"fisiotrack_go/internal/exercises"
	"fisiotrack_go/internal/models"
)

// fakeSource entrega uma sequência pré-programada de frames, sem rede
type fakeSource struct {
	frames    []*models.PoseFrame
	errs      []error
	requests  int
	connected bool
}

func (f *fakeSource) Connect() error { f.connected = true; return nil }

func (f *fakeSource) RequestFrame() (*models.PoseFrame, error) {
	i := f.requests
	f.requests++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.frames) {
		return f.frames[i], nil
	}
	return nil, errors.New("sem frames programados")
}

func (f *fakeSource) SetConnected(connected bool) { f.connected = connected }
func (f *fakeSource) IsConnected() bool           { return f.connected }
func (f *fakeSource) Close()                      {}

// kneeFrameAt constrói um frame com quadril, joelho e tornozelo formando
// exatamente o ângulo deg no joelho
func kneeFrameAt(deg float64) *models.PoseFrame {
	rad := deg * math.Pi / 180.0
	return &models.PoseFrame{
		Timestamp: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Tracked:   true,
		Joints: map[models.JointID]models.JointSample{
			models.JointHip:   {Position: models.Point3{X: 1, Y: 0, Z: 0}, Confidence: 0.95},
			models.JointKnee:  {Position: models.Point3{}, Confidence: 0.95},
			models.JointAnkle: {Position: models.Point3{X: math.Cos(rad), Y: math.Sin(rad), Z: 0}, Confidence: 0.95},
		},
	}
}

// lostFrame é um frame em que a pessoa saiu do enquadramento
func lostFrame() *models.PoseFrame {
	return &models.PoseFrame{
		Timestamp: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Tracked:   false,
		Joints:    map[models.JointID]models.JointSample{},
	}
}

func newTestService(t *testing.T, source *fakeSource) *Service {
	t.Helper()

	trackerCfg := config.TrackerConfig{
		Host:                 "localhost",
		Port:                 2111,
		SampleRate:           33 * time.Millisecond,
		MaxConsecutiveErrors: 1000, // Evitar o sleep de reconexão nos testes
		ReconnectDelay:       time.Millisecond,
		MinConfidence:        0.5,
	}
	sessionCfg := config.SessionConfig{
		SmoothingWindow: 1, // Sem filtro: sequências de graus exatas
		DefaultHoldTime: 3 * time.Second,
	}

	svc, err := NewService(trackerCfg, sessionCfg, source, nil, nil)
	require.NoError(t, err)
	svc.SetAsyncRedis(false)
	return svc
}

func TestProcessTickContaRepeticoes(t *testing.T) {
	// Agachamento: joelho 175° em pé, faixa alvo 80-100, direção decrescente
	degrees := []float64{175, 150, 120, 95, 85, 95, 130, 160, 175}
	source := &fakeSource{}
	for _, deg := range degrees {
		source.frames = append(source.frames, kneeFrameAt(deg))
	}

	svc := newTestService(t, source)

	var received []models.RepEvent
	svc.RegisterRepEventHandler(func(event models.RepEvent) {
		received = append(received, event)
	})

	sessionID, err := svc.StartExercise(exercises.Squat)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	for range degrees {
		svc.processTick()
	}

	// Passagem completa pela faixa alvo: exatamente uma repetição
	require.Len(t, received, 1)
	assert.Equal(t, 1, received[0].RepNumber)
	assert.Equal(t, exercises.Squat, received[0].Exercise)
	assert.Equal(t, sessionID, received[0].SessionID)
	assert.False(t, received[0].IsHold)

	update := svc.GetLastUpdate()
	require.NotNil(t, update)
	assert.Equal(t, 1, update.Rep.RepsCompleted)
	assert.Equal(t, models.PhaseAtRest, update.Rep.Phase)
}

func TestProcessTickSemExercicioAtivo(t *testing.T) {
	source := &fakeSource{}
	svc := newTestService(t, source)

	// Sem sessão ativa, o rastreador nem deve ser consultado
	svc.processTick()
	assert.Zero(t, source.requests)
	assert.Nil(t, svc.GetLastUpdate())
}

func TestPerdaDeRastreamentoPreservaContagem(t *testing.T) {
	source := &fakeSource{}
	// Uma repetição completa, depois oclusão, depois frames em repouso
	for _, deg := range []float64{175, 120, 90, 120, 175} {
		source.frames = append(source.frames, kneeFrameAt(deg))
	}
	source.frames = append(source.frames, lostFrame(), lostFrame())
	source.frames = append(source.frames, kneeFrameAt(175))

	svc := newTestService(t, source)
	_, err := svc.StartExercise(exercises.Squat)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		svc.processTick()
	}
	require.Equal(t, 1, svc.GetLastUpdate().Rep.RepsCompleted)

	// Oclusão: status muda, mas o engine e a contagem sobrevivem
	svc.processTick()
	assert.Equal(t, "sem_rastreamento", svc.GetStatus().Status)
	svc.processTick()

	// Recuperação
	svc.processTick()
	assert.Equal(t, "tracking", svc.GetStatus().Status)
	assert.Equal(t, 1, svc.GetLastUpdate().Rep.RepsCompleted)
}

func TestErroDeComunicacaoMarcaFonteDesconectada(t *testing.T) {
	source := &fakeSource{
		errs:      []error{errors.New("connection reset")},
		connected: true,
	}
	svc := newTestService(t, source)
	_, err := svc.StartExercise(exercises.Squat)
	require.NoError(t, err)

	svc.processTick()
	assert.False(t, source.IsConnected())
}

func TestErrosDeComunicacaoComLeituraConcorrenteDeStatus(t *testing.T) {
	// Erros consecutivos no loop de coleta enquanto handlers HTTP leem o
	// status: o contador de erros precisa ser protegido pelo mutex
	errs := make([]error, 50)
	for i := range errs {
		errs[i] = errors.New("connection reset")
	}
	source := &fakeSource{errs: errs, connected: true}
	svc := newTestService(t, source)

	_, err := svc.StartExercise(exercises.Squat)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = svc.GetStatus()
			_ = svc.GetLastUpdate()
		}
	}()

	for i := 0; i < 50; i++ {
		svc.processTick()
	}
	<-done

	assert.Equal(t, 50, source.requests)
	assert.False(t, source.IsConnected())
}

func TestStartExerciseDesconhecido(t *testing.T) {
	svc := newTestService(t, &fakeSource{})

	_, err := svc.StartExercise(models.ExerciseID("neck_rotation"))
	assert.Error(t, err)
}

func TestStopExerciseVoltaParaOcioso(t *testing.T) {
	source := &fakeSource{frames: []*models.PoseFrame{kneeFrameAt(175)}}
	svc := newTestService(t, source)

	_, err := svc.StartExercise(exercises.WallSit)
	require.NoError(t, err)
	svc.processTick()
	require.NotNil(t, svc.GetLastUpdate())

	svc.StopExercise()
	assert.Equal(t, "idle", svc.GetStatus().Status)
	assert.Nil(t, svc.GetLastUpdate())

	// Parar duas vezes é inofensivo
	svc.StopExercise()
}
