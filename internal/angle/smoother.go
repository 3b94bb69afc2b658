package angle

// DefaultWindow é a capacidade padrão do filtro. O ângulo bruto por frame
// oscila cerca de ±5°; a média de 5 amostras reduz para ±1-2° adicionando
// menos de ~100ms de latência a taxas de frame típicas (30Hz+).
const DefaultWindow = 5

// Smoother é um filtro de média móvel com janela fixa sobre amostras
// sucessivas de ângulo bruto. Deve ser resetado quando o rastreamento é
// perdido ou o exercício muda, para que amostras antigas nunca se misturem
// com um sinal novo.
type Smoother struct {
	window  int
	samples []float64
}

// NewSmoother cria um filtro com a janela indicada (DefaultWindow se <1)
func NewSmoother(window int) *Smoother {
	if window < 1 {
		window = DefaultWindow
	}
	return &Smoother{
		window:  window,
		samples: make([]float64, 0, window),
	}
}

// Smooth adiciona a amostra, descarta a mais antiga além da capacidade e
// retorna a média aritmética do conteúdo atual
func (s *Smoother) Smooth(value float64) float64 {
	s.samples = append(s.samples, value)
	if len(s.samples) > s.window {
		s.samples = s.samples[1:]
	}

	var sum float64
	for _, v := range s.samples {
		sum += v
	}
	return sum / float64(len(s.samples))
}

// Reset esvazia o buffer de amostras
func (s *Smoother) Reset() {
	s.samples = s.samples[:0]
}

// Size retorna o número de amostras atualmente no buffer
func (s *Smoother) Size() int {
	return len(s.samples)
}
