package models

import "time"

// JointSample é a amostra de uma articulação dentro de um frame de pose
type JointSample struct {
	Position   Point3  `json:"position"`
	Confidence float64 `json:"confidence"`
}

// PoseFrame é um frame de pose entregue pelo rastreador externo. Joints
// contém apenas articulações resolvidas acima do limiar de confiança;
// uma articulação oclusa simplesmente não aparece no mapa.
type PoseFrame struct {
	Timestamp time.Time               `json:"timestamp"`
	Tracked   bool                    `json:"tracked"`
	Joints    map[JointID]JointSample `json:"joints"`
}

// Resolve retorna as posições das articulações pedidas, na ordem pedida.
// Se qualquer articulação estiver ausente o frame é "não resolvido" e o
// engine não deve ser atualizado (contrato com o subsistema de pose).
func (f *PoseFrame) Resolve(ids ...JointID) ([]Point3, bool) {
	if f == nil || !f.Tracked {
		return nil, false
	}

	points := make([]Point3, 0, len(ids))
	for _, id := range ids {
		sample, ok := f.Joints[id]
		if !ok {
			return nil, false
		}
		points = append(points, sample.Position)
	}
	return points, true
}
