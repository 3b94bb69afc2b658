// Package exercises contém o catálogo estático de configurações de
// rastreamento por exercício. O catálogo é construído uma vez na
// inicialização e nunca mutado; a ausência de entrada significa
// "não rastreável por ângulo articular" e deve ser tratada por uma
// modalidade alternativa fora deste núcleo.
package exercises

import "fisiotrack_go/internal/models"

// Identificadores dos exercícios rastreáveis por ângulo
const (
	Squat               models.ExerciseID = "squat"
	SitToStand          models.ExerciseID = "sit_to_stand"
	SeatedKneeExtension models.ExerciseID = "seated_knee_extension"
	HeelSlide           models.ExerciseID = "heel_slide"
	WallSit             models.ExerciseID = "wall_sit"
	ElbowFlexion        models.ExerciseID = "elbow_flexion"
	ElbowExtension      models.ExerciseID = "elbow_extension"
	ShoulderFlexion     models.ExerciseID = "shoulder_flexion"
	ShoulderAbduction   models.ExerciseID = "shoulder_abduction"
	StandingHipFlexion  models.ExerciseID = "standing_hip_flexion"
	StraightLegRaise    models.ExerciseID = "straight_leg_raise"
	GluteBridge         models.ExerciseID = "glute_bridge"
)

var catalog = buildCatalog()

func jointRef(id models.JointID) *models.JointID {
	return &id
}

func degRef(deg float64) *float64 {
	return &deg
}

func zoneRef(zone models.AngleZone) *models.AngleZone {
	return &zone
}

// buildCatalog monta a tabela imutável de configurações. As faixas alvo e
// ângulos de repouso vêm dos protocolos de fisioterapia usados na triagem
// clínica; ajustes finos por paciente ficam fora deste núcleo.
func buildCatalog() map[models.ExerciseID]models.JointTrackingConfig {
	return map[models.ExerciseID]models.JointTrackingConfig{
		// Joelho: o ângulo diminui ao agachar (175° em pé -> ~90° agachado)
		Squat: {
			Proximal:    models.JointHip,
			Middle:      models.JointKnee,
			Distal:      models.JointAnkle,
			Mode:        models.ModeRepetitionCounting,
			TargetRange: models.AngleRange{Lower: 80, Upper: 100},
			FormCues: []models.FormCue{
				{Description: "Mantenha o tronco ereto durante a descida", WatchedJoint: jointRef(models.JointTorso), MaxDeviation: degRef(20)},
				{Description: "Não deixe o joelho passar da ponta do pé", Zone: zoneRef(models.ZoneTarget)},
			},
			CameraHint:  models.CameraSide,
			Reliability: models.ReliabilityReliable,
			Direction:   models.DirectionDecreasing,
			RestAngle:   175,
		},

		SitToStand: {
			Proximal:    models.JointHip,
			Middle:      models.JointKnee,
			Distal:      models.JointAnkle,
			Mode:        models.ModeRepetitionCounting,
			TargetRange: models.AngleRange{Lower: 160, Upper: 180},
			FormCues: []models.FormCue{
				{Description: "Levante sem impulsionar com os braços"},
			},
			CameraHint:  models.CameraSide,
			Reliability: models.ReliabilityReliable,
			Direction:   models.DirectionIncreasing,
			RestAngle:   95,
		},

		SeatedKneeExtension: {
			Proximal:    models.JointHip,
			Middle:      models.JointKnee,
			Distal:      models.JointAnkle,
			Mode:        models.ModeRangeOfMotion,
			TargetRange: models.AngleRange{Lower: 160, Upper: 180},
			FormCues: []models.FormCue{
				{Description: "Estenda o joelho até o limite confortável", Zone: zoneRef(models.ZoneBelowTarget)},
			},
			CameraHint:  models.CameraSide,
			Reliability: models.ReliabilityReliable,
			Direction:   models.DirectionIncreasing,
			RestAngle:   90,
		},

		HeelSlide: {
			Proximal:    models.JointHip,
			Middle:      models.JointKnee,
			Distal:      models.JointAnkle,
			Mode:        models.ModeRangeOfMotion,
			TargetRange: models.AngleRange{Lower: 90, Upper: 120},
			FormCues: []models.FormCue{
				{Description: "Deslize o calcanhar devagar, sem levantar o quadril"},
			},
			CameraHint:  models.CameraSide,
			Reliability: models.ReliabilityMarginal,
			Direction:   models.DirectionDecreasing,
			RestAngle:   170,
		},

		// Isométrico: permanência sustentada na faixa alvo
		WallSit: {
			Proximal:    models.JointHip,
			Middle:      models.JointKnee,
			Distal:      models.JointAnkle,
			Mode:        models.ModeHoldDuration,
			TargetRange: models.AngleRange{Lower: 90, Upper: 110},
			FormCues: []models.FormCue{
				{Description: "Costas inteiramente apoiadas na parede", WatchedJoint: jointRef(models.JointTorso), MaxDeviation: degRef(10)},
			},
			CameraHint:  models.CameraSide,
			Reliability: models.ReliabilityReliable,
			Direction:   models.DirectionDecreasing,
			RestAngle:   175,
		},

		// Cotovelo: a flexão diminui o ângulo (braço estendido ~170°)
		ElbowFlexion: {
			Proximal:    models.JointShoulder,
			Middle:      models.JointElbow,
			Distal:      models.JointWrist,
			Mode:        models.ModeRepetitionCounting,
			TargetRange: models.AngleRange{Lower: 40, Upper: 70},
			FormCues: []models.FormCue{
				{Description: "Cotovelo junto ao corpo durante todo o movimento", WatchedJoint: jointRef(models.JointElbow), MaxDeviation: degRef(15)},
			},
			CameraHint:  models.CameraFront,
			Reliability: models.ReliabilityReliable,
			Direction:   models.DirectionDecreasing,
			RestAngle:   170,
		},

		ElbowExtension: {
			Proximal:    models.JointShoulder,
			Middle:      models.JointElbow,
			Distal:      models.JointWrist,
			Mode:        models.ModeRangeOfMotion,
			TargetRange: models.AngleRange{Lower: 150, Upper: 180},
			CameraHint:  models.CameraSide,
			Reliability: models.ReliabilityMarginal,
			Direction:   models.DirectionIncreasing,
			RestAngle:   60,
		},

		// Ombro: a faixa alvo fica ACIMA do repouso (braço ao longo do corpo)
		ShoulderFlexion: {
			Proximal:    models.JointHip,
			Middle:      models.JointShoulder,
			Distal:      models.JointElbow,
			Mode:        models.ModeAngleBased,
			TargetRange: models.AngleRange{Lower: 150, Upper: 180},
			FormCues: []models.FormCue{
				{Description: "Não compense inclinando o tronco para trás", WatchedJoint: jointRef(models.JointTorso), MaxDeviation: degRef(15), Zone: zoneRef(models.ZoneTarget)},
			},
			CameraHint:  models.CameraSide,
			Reliability: models.ReliabilityReliable,
			Direction:   models.DirectionIncreasing,
			RestAngle:   20,
		},

		ShoulderAbduction: {
			Proximal:    models.JointHip,
			Middle:      models.JointShoulder,
			Distal:      models.JointElbow,
			Mode:        models.ModeRepetitionCounting,
			TargetRange: models.AngleRange{Lower: 80, Upper: 100},
			FormCues: []models.FormCue{
				{Description: "Ombros relaxados, sem encolher"},
			},
			CameraHint:  models.CameraFront,
			Reliability: models.ReliabilityReliable,
			Direction:   models.DirectionIncreasing,
			RestAngle:   20,
		},

		// Quadril: a faixa alvo fica ABAIXO do repouso (em pé ~175°)
		StandingHipFlexion: {
			Proximal:    models.JointShoulder,
			Middle:      models.JointHip,
			Distal:      models.JointKnee,
			Mode:        models.ModeRepetitionCounting,
			TargetRange: models.AngleRange{Lower: 90, Upper: 120},
			FormCues: []models.FormCue{
				{Description: "Apoie-se numa cadeira se precisar de equilíbrio"},
			},
			CameraHint:  models.CameraFront,
			Reliability: models.ReliabilityMarginal,
			Direction:   models.DirectionDecreasing,
			RestAngle:   175,
		},

		StraightLegRaise: {
			Proximal:    models.JointShoulder,
			Middle:      models.JointHip,
			Distal:      models.JointKnee,
			Mode:        models.ModeHoldDuration,
			TargetRange: models.AngleRange{Lower: 110, Upper: 140},
			FormCues: []models.FormCue{
				{Description: "Joelho estendido durante a elevação", WatchedJoint: jointRef(models.JointKnee), MaxDeviation: degRef(10)},
			},
			CameraHint:  models.CameraSide,
			Reliability: models.ReliabilityReliable,
			Direction:   models.DirectionDecreasing,
			RestAngle:   175,
		},

		GluteBridge: {
			Proximal:    models.JointShoulder,
			Middle:      models.JointHip,
			Distal:      models.JointKnee,
			Mode:        models.ModeHoldDuration,
			TargetRange: models.AngleRange{Lower: 160, Upper: 180},
			FormCues: []models.FormCue{
				{Description: "Eleve o quadril até alinhar ombro, quadril e joelho"},
			},
			CameraHint:  models.CameraSide,
			Reliability: models.ReliabilityMarginal,
			Direction:   models.DirectionIncreasing,
			RestAngle:   130,
		},
	}
}

// Lookup retorna a configuração de rastreamento do exercício, se existir
func Lookup(id models.ExerciseID) (models.JointTrackingConfig, bool) {
	cfg, ok := catalog[id]
	return cfg, ok
}

// IDs retorna os identificadores de todos os exercícios rastreáveis
func IDs() []models.ExerciseID {
	ids := make([]models.ExerciseID, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	return ids
}

// All retorna uma cópia do catálogo completo (para a API e o hub)
func All() map[models.ExerciseID]models.JointTrackingConfig {
	out := make(map[models.ExerciseID]models.JointTrackingConfig, len(catalog))
	for id, cfg := range catalog {
		out[id] = cfg
	}
	return out
}
