// Package angle contém a matemática pura de ângulos articulares e o filtro
// de suavização temporal aplicado sobre as amostras brutas do rastreador.
package angle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"fisiotrack_go/internal/models"
)

// JointAngle calcula o ângulo interno em graus na articulação do meio, a
// partir de três pontos 3D. Sendo A = proximal-joint e B = distal-joint,
// cosθ = (A·B)/(|A||B|), com o resultado em [0,180]. 180° significa os
// três pontos colineares (membro totalmente estendido); valores menores
// significam mais flexão. A função é simétrica na troca proximal/distal.
func JointAngle(proximal, joint, distal models.Point3) float64 {
	a := r3.Sub(r3.Vec(proximal), r3.Vec(joint))
	b := r3.Sub(r3.Vec(distal), r3.Vec(joint))

	normA := r3.Norm(a)
	normB := r3.Norm(b)

	// Frame degenerado (pontos coincidentes): retorna 0 em vez de falhar.
	// Invariante rígido - o loop de frames nunca pode quebrar por geometria.
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := r3.Dot(a, b) / (normA * normB)

	// Clamp para [-1,1] antes do acos, absorvendo deriva de ponto flutuante
	// que produziria NaN em pontos quase colineares
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}

	return math.Acos(cos) * 180.0 / math.Pi
}

// KneeAngle mede o ângulo do joelho (quadril-joelho-tornozelo)
func KneeAngle(hip, knee, ankle models.Point3) float64 {
	return JointAngle(hip, knee, ankle)
}

// ElbowAngle mede o ângulo do cotovelo (ombro-cotovelo-punho)
func ElbowAngle(shoulder, elbow, wrist models.Point3) float64 {
	return JointAngle(shoulder, elbow, wrist)
}

// ShoulderAngle mede o ângulo do ombro (quadril-ombro-cotovelo)
func ShoulderAngle(hip, shoulder, elbow models.Point3) float64 {
	return JointAngle(hip, shoulder, elbow)
}

// HipAngle mede o ângulo do quadril (ombro-quadril-joelho)
func HipAngle(shoulder, hip, knee models.Point3) float64 {
	return JointAngle(shoulder, hip, knee)
}
