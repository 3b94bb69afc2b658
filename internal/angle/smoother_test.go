package angle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmootherConvergesToConstant(t *testing.T) {
	s := NewSmoother(DefaultWindow)

	// Com entrada constante X alimentada >= 5 vezes, a média converge
	// exatamente para X
	var got float64
	for i := 0; i < DefaultWindow+3; i++ {
		got = s.Smooth(137.5)
	}
	assert.Equal(t, 137.5, got)
	assert.Equal(t, DefaultWindow, s.Size())
}

func TestSmootherPartialFill(t *testing.T) {
	s := NewSmoother(5)

	assert.Equal(t, 10.0, s.Smooth(10))
	assert.Equal(t, 15.0, s.Smooth(20))
	assert.Equal(t, 20.0, s.Smooth(30))
}

func TestSmootherEvictsOldest(t *testing.T) {
	s := NewSmoother(3)

	s.Smooth(0)
	s.Smooth(0)
	s.Smooth(0)

	// A quarta amostra expulsa a primeira: média de {0, 0, 30}
	assert.Equal(t, 10.0, s.Smooth(30))
	assert.Equal(t, 3, s.Size())
}

func TestSmootherReset(t *testing.T) {
	s := NewSmoother(5)
	for i := 0; i < 5; i++ {
		s.Smooth(90)
	}

	s.Reset()
	assert.Zero(t, s.Size())

	// Após reset, a próxima amostra retorna exatamente o valor: nenhum
	// sinal antigo se mistura ao novo
	assert.Equal(t, 42.0, s.Smooth(42))
}

func TestSmootherInvalidWindowFallsBack(t *testing.T) {
	s := NewSmoother(0)
	for i := 0; i < DefaultWindow+1; i++ {
		s.Smooth(1)
	}
	assert.Equal(t, DefaultWindow, s.Size())
}
