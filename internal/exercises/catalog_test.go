package exercises

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisiotrack_go/internal/engine"
	"fisiotrack_go/internal/models"
)

func TestCatalogInvariants(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)

	for id, cfg := range all {
		t.Run(string(id), func(t *testing.T) {
			// Invariante da faixa alvo: lower <= upper
			assert.True(t, cfg.TargetRange.Valid(), "faixa alvo invertida")
			assert.GreaterOrEqual(t, cfg.TargetRange.Lower, 0.0)
			assert.LessOrEqual(t, cfg.TargetRange.Upper, 180.0)

			// Sempre exatamente três articulações, todas nomeadas
			assert.NotEmpty(t, cfg.Proximal)
			assert.NotEmpty(t, cfg.Middle)
			assert.NotEmpty(t, cfg.Distal)
			assert.NotEqual(t, cfg.Proximal, cfg.Middle)
			assert.NotEqual(t, cfg.Middle, cfg.Distal)

			// O repouso deve ficar fora da faixa alvo, do lado coerente
			// com a direção do movimento
			switch cfg.Direction {
			case models.DirectionIncreasing:
				assert.Less(t, cfg.RestAngle, cfg.TargetRange.Lower,
					"direção crescente exige repouso abaixo da faixa alvo")
			case models.DirectionDecreasing:
				assert.Greater(t, cfg.RestAngle, cfg.TargetRange.Upper,
					"direção decrescente exige repouso acima da faixa alvo")
			default:
				t.Fatalf("direção desconhecida: %q", cfg.Direction)
			}
		})
	}
}

func TestCatalogRestGapClearsThreshold(t *testing.T) {
	// A borda da faixa alvo precisa estar além do limiar de repouso, caso
	// contrário o portão atRest -> moving nunca abriria
	for id, cfg := range All() {
		switch cfg.Direction {
		case models.DirectionIncreasing:
			assert.Greater(t, cfg.TargetRange.Lower, cfg.RestAngle+engine.RestThreshold,
				"%s: faixa alvo dentro do limiar de repouso", id)
		case models.DirectionDecreasing:
			assert.Less(t, cfg.TargetRange.Upper, cfg.RestAngle-engine.RestThreshold,
				"%s: faixa alvo dentro do limiar de repouso", id)
		}
	}
}

func TestLookup(t *testing.T) {
	cfg, ok := Lookup(Squat)
	require.True(t, ok)
	assert.Equal(t, models.JointKnee, cfg.Middle)
	assert.Equal(t, models.DirectionDecreasing, cfg.Direction)

	// Exercício sem entrada: não rastreável por ângulo
	_, ok = Lookup(models.ExerciseID("neck_rotation"))
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	first := All()
	delete(first, Squat)

	_, ok := Lookup(Squat)
	assert.True(t, ok, "mutação da cópia não pode afetar o catálogo")
}

func TestIDsMatchesCatalog(t *testing.T) {
	ids := IDs()
	assert.Len(t, ids, len(All()))
	for _, id := range ids {
		_, ok := Lookup(id)
		assert.True(t, ok)
	}
}
