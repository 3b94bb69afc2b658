package angle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisiotrack_go/internal/models"
)

func pt(x, y, z float64) models.Point3 {
	return models.Point3{X: x, Y: y, Z: z}
}

func TestJointAngleKnownGeometry(t *testing.T) {
	tests := []struct {
		name     string
		proximal models.Point3
		joint    models.Point3
		distal   models.Point3
		want     float64
	}{
		{
			name:     "angulo reto",
			proximal: pt(1, 0, 0),
			joint:    pt(0, 0, 0),
			distal:   pt(0, 1, 0),
			want:     90,
		},
		{
			name:     "membro estendido (colinear)",
			proximal: pt(-1, 0, 0),
			joint:    pt(0, 0, 0),
			distal:   pt(1, 0, 0),
			want:     180,
		},
		{
			name:     "flexao de 45 graus",
			proximal: pt(1, 0, 0),
			joint:    pt(0, 0, 0),
			distal:   pt(1, 1, 0),
			want:     45,
		},
		{
			name:     "flexao total (vetores coincidentes)",
			proximal: pt(0, 2, 0),
			joint:    pt(0, 0, 0),
			distal:   pt(0, 5, 0),
			want:     0,
		},
		{
			name:     "fora do plano XY",
			proximal: pt(0, 0, 1),
			joint:    pt(0, 0, 0),
			distal:   pt(0, 1, 0),
			want:     90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JointAngle(tt.proximal, tt.joint, tt.distal)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestJointAngleSymmetric(t *testing.T) {
	proximal := pt(0.31, 1.27, -0.44)
	joint := pt(0.08, 0.92, -0.41)
	distal := pt(0.12, 0.55, -0.07)

	forward := JointAngle(proximal, joint, distal)
	backward := JointAngle(distal, joint, proximal)

	assert.Equal(t, forward, backward)
}

func TestJointAngleDegenerateFrame(t *testing.T) {
	joint := pt(0.5, 1.0, 0.2)

	// Ponto proximal coincidente com a articulação: vetor de comprimento zero
	assert.Zero(t, JointAngle(joint, joint, pt(1, 2, 3)))

	// Ponto distal coincidente
	assert.Zero(t, JointAngle(pt(1, 2, 3), joint, joint))

	// Os três coincidentes
	assert.Zero(t, JointAngle(joint, joint, joint))
}

func TestJointAngleNeverNaN(t *testing.T) {
	// Pontos colineares em escalas que forçam cosθ marginalmente fora de
	// [-1,1] por erro de arredondamento
	for _, scale := range []float64{1e-7, 0.1, 3, 1e6, 1e12} {
		proximal := pt(scale, scale, scale)
		joint := pt(0, 0, 0)
		distal := pt(2*scale, 2*scale, 2*scale)

		got := JointAngle(proximal, joint, distal)
		require.False(t, math.IsNaN(got), "NaN com escala %g", scale)
		assert.InDelta(t, 0, got, 1e-6)

		opposite := pt(-scale, -scale, -scale)
		got = JointAngle(opposite, joint, distal)
		require.False(t, math.IsNaN(got), "NaN com escala %g", scale)
		assert.InDelta(t, 180, got, 1e-6)
	}
}

func TestNamedWrappersAreAliases(t *testing.T) {
	a := pt(0.2, 1.4, 0)
	b := pt(0.25, 0.9, 0.05)
	c := pt(0.2, 0.4, 0.3)

	want := JointAngle(a, b, c)

	assert.Equal(t, want, KneeAngle(a, b, c))
	assert.Equal(t, want, ElbowAngle(a, b, c))
	assert.Equal(t, want, ShoulderAngle(a, b, c))
	assert.Equal(t, want, HipAngle(a, b, c))
}
