// Package overworld - бесконечные чанки дикой местности (поверхность, глубина 0).
//
// Домашний лагерь - хаб в чанке (0,0). Проход через краевые ворота переводит
// в соседний чанк без смены ветки/глубины. Каждый чанк детерминированно
// генерируется из (runSeed, chunkX, chunkY) и нарочно отвязан от игрового
// потока RNG.
//
// Цели генератора:
//   - сплошные пограничные стены с детерминированными воротами (общими на
//     границу между чанками);
//   - непрерывный рельеф через границы (шум в мировых координатах, без швов);
//   - легковесная идентичность чанка: биом, имя, глубина опасности;
//   - все ворота взаимно связаны сетью троп.
package overworld

import (
	"math"

	"deepdelve-server/pkg/rng"
)

func u32To01(x uint32) float64 {
	return float64(x) / 4294967296.0
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func smoothstep01(edge0, edge1, x float64) float64 {
	if edge1 <= edge0 {
		return 0
	}
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

func hashCoord(seed uint32, x, y int) uint32 {
	h := seed
	h = rng.HashCombine(h, uint32(x))
	h = rng.HashCombine(h, uint32(y))
	return rng.Hash32(h)
}

// ValueNoise01 - сглаженный 2D value noise в [0,1].
func ValueNoise01(seed uint32, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1

	tx := smoothstep01(0, 1, x-float64(x0))
	ty := smoothstep01(0, 1, y-float64(y0))

	v00 := u32To01(hashCoord(seed, x0, y0))
	v10 := u32To01(hashCoord(seed, x1, y0))
	v01 := u32To01(hashCoord(seed, x0, y1))
	v11 := u32To01(hashCoord(seed, x1, y1))

	vx0 := lerp(v00, v10, tx)
	vx1 := lerp(v01, v11, tx)
	return lerp(vx0, vx1, ty)
}

// Fbm01 - фрактальный броуновский шум: сумма октав value noise в [0,1].
func Fbm01(seed uint32, x, y float64, octaves int) float64 {
	sum := 0.0
	amp := 1.0
	freq := 1.0
	norm := 0.0

	if octaves < 1 {
		octaves = 1
	}
	for i := 0; i < octaves; i++ {
		sum += ValueNoise01(rng.HashCombine(seed, uint32(i)*0x9E3779B9), x*freq, y*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}

	if norm > 0 {
		sum /= norm
	}
	if sum < 0 {
		return 0
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// WorleySample - выборка клеточного шума Уорли: расстояния до двух ближайших
// пунктов (F1 <= F2) и id ближайшей клетки (тектонической "плиты").
type WorleySample struct {
	F1     float64
	F2     float64
	CellID uint32
}

// Worley сэмплирует клеточный шум в точке (x,y): по одному пункту на ячейку
// единичной решетки, евклидовы расстояния. Масштаб задается вызывающим через
// предмасштабирование координат.
func Worley(seed uint32, x, y float64) WorleySample {
	cx := int(math.Floor(x))
	cy := int(math.Floor(y))

	s := WorleySample{F1: math.MaxFloat64, F2: math.MaxFloat64}

	for oy := -1; oy <= 1; oy++ {
		for ox := -1; ox <= 1; ox++ {
			gx, gy := cx+ox, cy+oy
			h := hashCoord(seed, gx, gy)
			px := float64(gx) + u32To01(h)
			py := float64(gy) + u32To01(rng.Hash32(h^0xA511E9B3))

			dx := x - px
			dy := y - py
			dd := math.Sqrt(dx*dx + dy*dy)

			if dd < s.F1 {
				s.F2 = s.F1
				s.F1 = dd
				s.CellID = h
			} else if dd < s.F2 {
				s.F2 = dd
			}
		}
	}
	return s
}
