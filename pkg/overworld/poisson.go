package overworld

import (
	"math"

	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/rng"
)

// PoissonDiscSample2D - сэмплирование Пуассона-диска по Бридсону на
// целочисленном прямоугольнике [minX..maxX] x [minY..maxY] (включительно).
//
// minDist - минимальная евклидова дистанция между точками, k - число
// кандидатов на активную точку. Распределение "blue-noise": равномерно
// разреженное без сеточных артефактов, детерминированное для данного RNG.
func PoissonDiscSample2D(r *rng.RNG, minX, minY, maxX, maxY int, minDist float64, k int) []dungeon.Vec2i {
	var out []dungeon.Vec2i
	if minDist <= 0 || minX > maxX || minY > maxY {
		return out
	}
	if k <= 0 {
		k = 30
	}

	// Ускоряющая решетка (Бридсон): сторона ячейки r/sqrt(2).
	cellSize := minDist / math.Sqrt2

	domW := maxX - minX + 1
	domH := maxY - minY + 1
	gridW := maxInt(1, int(math.Ceil(float64(domW)/cellSize)))
	gridH := maxInt(1, int(math.Ceil(float64(domH)/cellSize)))

	grid := make([]int, gridW*gridH)
	for i := range grid {
		grid[i] = -1
	}
	active := make([]int, 0, 64)

	gridPos := func(x, y int) (int, int) {
		return int(math.Floor(float64(x-minX) / cellSize)), int(math.Floor(float64(y-minY) / cellSize))
	}
	inGrid := func(gx, gy int) bool { return gx >= 0 && gy >= 0 && gx < gridW && gy < gridH }

	r2 := minDist * minDist
	fits := func(x, y int) bool {
		if x < minX || x > maxX || y < minY || y > maxY {
			return false
		}
		gx, gy := gridPos(x, y)
		if !inGrid(gx, gy) {
			return false
		}
		// При cellSize=r/sqrt(2) достаточно проверить +/-2 ячейки.
		for yy := gy - 2; yy <= gy+2; yy++ {
			for xx := gx - 2; xx <= gx+2; xx++ {
				if !inGrid(xx, yy) {
					continue
				}
				pi := grid[yy*gridW+xx]
				if pi < 0 {
					continue
				}
				p := out[pi]
				dx := float64(x - p.X)
				dy := float64(y - p.Y)
				if dx*dx+dy*dy < r2 {
					return false
				}
			}
		}
		return true
	}

	place := func(x, y int) {
		out = append(out, dungeon.Vec2i{X: x, Y: y})
		active = append(active, len(out)-1)
		gx, gy := gridPos(x, y)
		if inGrid(gx, gy) {
			grid[gy*gridW+gx] = len(out) - 1
		}
	}

	place(r.Range(minX, maxX), r.Range(minY, maxY))

	const twoPi = 2 * math.Pi

	for len(active) > 0 {
		ai := r.Range(0, len(active)-1)
		base := out[active[ai]]

		found := false
		for attempt := 0; attempt < k; attempt++ {
			ang := r.Next01() * twoPi
			rad := minDist * (1 + r.Next01()) // [r, 2r)

			x := int(math.Round(float64(base.X) + math.Cos(ang)*rad))
			y := int(math.Round(float64(base.Y) + math.Sin(ang)*rad))

			if !fits(x, y) {
				continue
			}
			place(x, y)
			found = true
			break
		}

		if !found {
			// Точка исчерпана: удаляем из активных свопом с хвостом.
			active[ai] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
