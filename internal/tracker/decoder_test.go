package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisiotrack_go/internal/models"
)

func TestDecodeFrameFiltraPorConfianca(t *testing.T) {
	payload := []byte(`{
		"timestamp_ms": 1741597200000,
		"tracked": true,
		"joints": {
			"right_hip":   {"x": 0.1, "y": 0.9, "z": 2.0, "confidence": 0.95},
			"right_knee":  {"x": 0.1, "y": 0.5, "z": 2.0, "confidence": 0.80},
			"right_ankle": {"x": 0.1, "y": 0.1, "z": 2.0, "confidence": 0.30}
		}
	}`)

	frame, err := DecodeFrame(payload, 0.5)
	require.NoError(t, err)

	assert.True(t, frame.Tracked)
	assert.Equal(t, time.UnixMilli(1741597200000), frame.Timestamp)

	// O tornozelo com confiança 0.30 deve ser descartado
	assert.Len(t, frame.Joints, 2)
	assert.Contains(t, frame.Joints, models.JointHip)
	assert.Contains(t, frame.Joints, models.JointKnee)
	assert.NotContains(t, frame.Joints, models.JointAnkle)

	sample := frame.Joints[models.JointHip]
	assert.Equal(t, models.Point3{X: 0.1, Y: 0.9, Z: 2.0}, sample.Position)
	assert.Equal(t, 0.95, sample.Confidence)
}

func TestDecodeFrameSemPessoaNaCena(t *testing.T) {
	payload := []byte(`{"timestamp_ms": 1741597200000, "tracked": false, "joints": {}}`)

	frame, err := DecodeFrame(payload, 0.5)
	require.NoError(t, err)

	assert.False(t, frame.Tracked)
	assert.Empty(t, frame.Joints)

	// Um frame não rastreado nunca resolve articulações
	_, ok := frame.Resolve(models.JointHip)
	assert.False(t, ok)
}

func TestDecodeFramePayloadInvalido(t *testing.T) {
	_, err := DecodeFrame([]byte("nao é json"), 0.5)
	assert.Error(t, err)
}

func TestResolveExigeTodasAsArticulacoes(t *testing.T) {
	payload := []byte(`{
		"timestamp_ms": 1741597200000,
		"tracked": true,
		"joints": {
			"right_hip":  {"x": 0, "y": 1, "z": 2, "confidence": 0.9},
			"right_knee": {"x": 0, "y": 0.5, "z": 2, "confidence": 0.9}
		}
	}`)

	frame, err := DecodeFrame(payload, 0.5)
	require.NoError(t, err)

	// Trio incompleto: o frame inteiro é tratado como não resolvido
	_, ok := frame.Resolve(models.JointHip, models.JointKnee, models.JointAnkle)
	assert.False(t, ok)

	points, ok := frame.Resolve(models.JointHip, models.JointKnee)
	require.True(t, ok)
	assert.Len(t, points, 2)
	assert.Equal(t, models.Point3{X: 0, Y: 1, Z: 2}, points[0])
}
