package dungeon

// Мультипликаторы для трансформации координат в 8 октантов
var fovMultipliers = [4][8]int{
	{1, 0, 0, -1, -1, 0, 0, 1},
	{0, 1, -1, 0, 0, -1, 1, 0},
	{0, 1, 1, 0, 0, -1, -1, 0},
	{1, 0, 0, 1, -1, 0, 0, -1},
}

// ComputeFov пересчитывает видимость от наблюдателя рекурсивным
// shadowcasting-ом: сбрасывает Visible по всей карте, помечает видимые клетки
// и взводит на них Explored. Радиус - евклидов (сравнение по квадрату).
func (d *Dungeon) ComputeFov(origin Vec2i, radius int) {
	for i := range d.Tiles {
		d.Tiles[i].Visible = false
	}

	mask := d.ComputeFovMask(origin, radius)
	for i, v := range mask {
		if v {
			d.Tiles[i].Visible = true
			d.Tiles[i].Explored = true
		}
	}
}

// ComputeFovMask возвращает маску видимости без мутации тайлов.
func (d *Dungeon) ComputeFovMask(origin Vec2i, radius int) []bool {
	mask := make([]bool, d.Width*d.Height)
	if radius <= 0 || !d.InBounds(origin.X, origin.Y) {
		return mask
	}

	// 1. Центр всегда виден.
	mask[origin.Y*d.Width+origin.X] = true

	// 2. Восемь октантов.
	for i := 0; i < 8; i++ {
		d.castLight(origin.X, origin.Y, 1, 1.0, 0.0, radius,
			fovMultipliers[0][i], fovMultipliers[1][i],
			fovMultipliers[2][i], fovMultipliers[3][i], mask)
	}
	return mask
}

func (d *Dungeon) castLight(cx, cy, row int, start, end float64, radius, xx, xy, yx, yy int, mask []bool) {
	if start < end {
		return
	}

	radiusSq := float64(radius * radius)

	for j := row; j <= radius; j++ {
		dx, dy := -j-1, -j
		blocked := false
		newStart := start

		for {
			dx++
			if dx > 0 {
				break
			}
			dy = -j

			// Расчет наклонов (Slopes)
			lSlope := (float64(dx) - 0.5) / (float64(dy) + 0.5)
			rSlope := (float64(dx) + 0.5) / (float64(dy) - 0.5)

			if start < rSlope {
				continue
			}
			if end > lSlope {
				break
			}

			// Трансформация координат в глобальные
			x := cx + dx*xx + dy*xy
			y := cy + dx*yx + dy*yy

			// Клетка ровно на радиусе тоже видима.
			if d.InBounds(x, y) && float64(dx*dx+dy*dy) <= radiusSq {
				mask[y*d.Width+x] = true
			}

			opaque := !d.InBounds(x, y) || d.IsOpaque(x, y)

			// Логика теней
			if blocked {
				// Мы идем вдоль стены...
				if opaque {
					newStart = rSlope
					continue
				}
				// Стена кончилась, началась пустота
				blocked = false
				start = newStart
			} else {
				// Мы шли по пустоте и наткнулись на стену
				if opaque && j < radius {
					blocked = true
					d.castLight(cx, cy, j+1, start, lSlope, radius, xx, xy, yx, yy, mask)
					newStart = rSlope
				}
			}
		}

		if blocked {
			break
		}
	}
}

// HasLineOfSight проверяет прямую видимость по линии Брезенхэма. Конечная
// клетка считается видимой, даже если она сама непрозрачна (стену видно).
func (d *Dungeon) HasLineOfSight(from, to Vec2i) bool {
	x0, y0 := from.X, from.Y
	x1, y1 := to.X, to.Y

	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 == x1 && y0 == y1 {
			return true
		}
		// Непрозрачная промежуточная клетка обрывает луч.
		if (x0 != from.X || y0 != from.Y) && d.IsOpaque(x0, y0) {
			return false
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}
