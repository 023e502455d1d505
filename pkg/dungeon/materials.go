package dungeon

import (
	"deepdelve-server/pkg/rng"

	"github.com/aquilax/go-perlin"
)

// Материал подложки клетки. Поле в первую очередь косметическое, но мягко
// влияет на акустику и запах: мох и земля глушат, металл и кристалл разносят.
type Material uint8

const (
	MatStone Material = iota
	MatBrick
	MatMarble
	MatBasalt
	MatObsidian
	MatMoss
	MatDirt
	MatWood
	MatMetal
	MatCrystal
	MatBone
)

// Name возвращает каноническое имя материала.
func (m Material) Name() string {
	switch m {
	case MatStone:
		return "STONE"
	case MatBrick:
		return "BRICK"
	case MatMarble:
		return "MARBLE"
	case MatBasalt:
		return "BASALT"
	case MatObsidian:
		return "OBSIDIAN"
	case MatMoss:
		return "MOSS"
	case MatDirt:
		return "DIRT"
	case MatWood:
		return "WOOD"
	case MatMetal:
		return "METAL"
	case MatCrystal:
		return "CRYSTAL"
	case MatBone:
		return "BONE"
	default:
		return "STONE"
	}
}

// Adjective - короткое прилагательное для описаний ("MOSSY FLOOR").
func (m Material) Adjective() string {
	switch m {
	case MatMoss:
		return "MOSSY"
	case MatDirt:
		return "EARTHEN"
	case MatWood:
		return "WOODEN"
	case MatMetal:
		return "METALLIC"
	case MatCrystal:
		return "CRYSTALLINE"
	case MatBone:
		return "BONY"
	default:
		return m.Name()
	}
}

// MaterialFx - игровые поправки материала. Нарочно маленькие.
type MaterialFx struct {
	FootstepNoiseDelta   int
	DigNoiseDelta        int
	ScentDecayDelta      int
	ScentSpreadDropDelta int
}

// Fx возвращает поправки материала к шуму и запаху.
func (m Material) Fx() MaterialFx {
	switch m {
	case MatMoss:
		return MaterialFx{FootstepNoiseDelta: -2, DigNoiseDelta: -2, ScentDecayDelta: 2, ScentSpreadDropDelta: 6}
	case MatDirt:
		return MaterialFx{FootstepNoiseDelta: -1, DigNoiseDelta: -1, ScentDecayDelta: 1, ScentSpreadDropDelta: 4}
	case MatWood:
		// Доски скрипят, но впитывают запах сильнее камня.
		return MaterialFx{FootstepNoiseDelta: 1, DigNoiseDelta: -1, ScentDecayDelta: 1, ScentSpreadDropDelta: 2}
	case MatMetal:
		return MaterialFx{FootstepNoiseDelta: 2, DigNoiseDelta: 2}
	case MatCrystal:
		return MaterialFx{FootstepNoiseDelta: 1, DigNoiseDelta: 1}
	case MatBone:
		return MaterialFx{FootstepNoiseDelta: 1} // хруст
	case MatBasalt, MatObsidian:
		return MaterialFx{FootstepNoiseDelta: 1, DigNoiseDelta: 1}
	default:
		return MaterialFx{}
	}
}

// ScentFx переводит поправки материала в формат поля запаха.
func (m Material) ScentFx() ScentCellFx {
	fx := m.Fx()
	return ScentCellFx{DecayDelta: fx.ScentDecayDelta, SpreadDropDelta: fx.ScentSpreadDropDelta}
}

// Палитры материалов по ярусам глубины. Порядок - от фонового к акцентному.
func materialPalette(depth, maxDepth int) [4]Material {
	third := maxInt(1, maxDepth/3)
	switch {
	case depth <= third:
		return [4]Material{MatStone, MatBrick, MatDirt, MatMoss}
	case depth <= third*2:
		return [4]Material{MatBasalt, MatStone, MatMoss, MatMetal}
	default:
		return [4]Material{MatObsidian, MatBasalt, MatCrystal, MatBone}
	}
}

// EnsureMaterials детерминированно заполняет кеш материалов подложки шумом
// Перлина. Повторный вызов с теми же аргументами - no-op. Поле не участвует
// в генерации раскладки, поэтому живет отдельным ленивым кешем.
func (d *Dungeon) EnsureMaterials(worldSeed uint32, depth, maxDepth int) {
	key := rng.HashCombine(worldSeed, rng.Tag32("DD_MAT"), uint32(depth))
	if d.materialsKey == key && len(d.materials) == d.Width*d.Height {
		return
	}

	d.materialsKey = key
	d.materials = make([]Material, d.Width*d.Height)
	d.biolum = make([]float64, d.Width*d.Height)

	palette := materialPalette(depth, maxDepth)

	matNoise := perlin.NewPerlin(2, 2, 3, int64(key))
	glowNoise := perlin.NewPerlin(2, 2, 2, int64(rng.HashCombine(key, rng.Tag32("DD_GLOW"))))

	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			idx := y*d.Width + x

			// Noise2D дает примерно [-1,1]; нормируем в [0,1).
			v := (matNoise.Noise2D(float64(x)*0.09, float64(y)*0.09) + 1) * 0.5
			switch {
			case v < 0.45:
				d.materials[idx] = palette[0]
			case v < 0.70:
				d.materials[idx] = palette[1]
			case v < 0.88:
				d.materials[idx] = palette[2]
			default:
				d.materials[idx] = palette[3]
			}

			// Биолюминесценция: редкие мягкие пятна, ярче на мхе и кристалле.
			g := (glowNoise.Noise2D(float64(x)*0.05, float64(y)*0.05) + 1) * 0.5
			g = (g - 0.62) / 0.38
			if g < 0 {
				g = 0
			}
			if m := d.materials[idx]; m == MatMoss || m == MatCrystal {
				g *= 1.6
				if g > 1 {
					g = 1
				}
			} else {
				g *= 0.5
			}
			d.biolum[idx] = g
		}
	}
}

// MaterialAt возвращает материал клетки из кеша (Stone до EnsureMaterials).
func (d *Dungeon) MaterialAt(x, y int) Material {
	if !d.InBounds(x, y) || len(d.materials) != d.Width*d.Height {
		return MatStone
	}
	return d.materials[y*d.Width+x]
}

// BioluminescenceAt возвращает силу свечения клетки в [0,1].
func (d *Dungeon) BioluminescenceAt(x, y int) float64 {
	if !d.InBounds(x, y) || len(d.biolum) != d.Width*d.Height {
		return 0
	}
	return d.biolum[y*d.Width+x]
}
