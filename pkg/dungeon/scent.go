package dungeon

// Следовое поле запаха для выслеживания игрока ИИ за углами.
//
// Модель за один ход:
//  1. Глобальное затухание (зависит от материала клетки).
//  2. Депозит в клетке источника (берется максимум с текущим значением).
//  3. Один проход релаксации по 4 соседям.
//
// Ветер (опционально): распространение по ветру теряет меньше (попутный),
// против ветра - больше (встречный). Получаются вытянутые подветренные
// градиенты без многопроходной диффузии. Детерминированно, без RNG.

// ScentCellFx - аддитивные поправки материала клетки к базовым параметрам.
type ScentCellFx struct {
	DecayDelta      int
	SpreadDropDelta int
}

// ScentParams - глобальные параметры поля запаха.
type ScentParams struct {
	BaseDecay      int // базовое затухание за ход
	BaseSpreadDrop int // базовая потеря при переходе на соседнюю клетку

	MaxDecay      int
	MinSpreadDrop int
	MaxSpreadDrop int

	WindDir      Vec2i
	WindStrength int // 0..3

	TailwindDropBiasPerStrength int
	HeadwindDropBiasPerStrength int
}

// DefaultScentParams возвращает штатные параметры поля запаха.
func DefaultScentParams() ScentParams {
	return ScentParams{
		BaseDecay:                   2,
		BaseSpreadDrop:              14,
		MaxDecay:                    20,
		MinSpreadDrop:               6,
		MaxSpreadDrop:               40,
		TailwindDropBiasPerStrength: 2,
		HeadwindDropBiasPerStrength: 3,
	}
}

// UpdateScentField обновляет поле запаха на месте. field имеет размер
// width*height и значения 0..255; depositPos/depositStrength - источник за
// этот ход. Непроходимые клетки принудительно обнуляются, чтобы запах не
// просачивался сквозь стены. fxAt может быть nil (нулевые поправки).
func UpdateScentField(width, height int, field []uint8, depositPos Vec2i, depositStrength uint8,
	isWalkable func(x, y int) bool, fxAt func(x, y int) ScentCellFx, params ScentParams) {

	if width <= 0 || height <= 0 || len(field) != width*height {
		return
	}
	if fxAt == nil {
		fxAt = func(int, int) ScentCellFx { return ScentCellFx{} }
	}

	// --- Фаза 1: глобальное затухание ---
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x

			if !isWalkable(x, y) {
				field[i] = 0
				continue
			}

			v := field[i]
			if v == 0 {
				continue
			}

			fx := fxAt(x, y)
			decay := clampInt(params.BaseDecay+fx.DecayDelta, 0, params.MaxDecay)
			if int(v) > decay {
				field[i] = v - uint8(decay)
			} else {
				field[i] = 0
			}
		}
	}

	// --- Фаза 2: депозит источника ---
	if depositStrength > 0 && depositPos.X >= 0 && depositPos.Y >= 0 &&
		depositPos.X < width && depositPos.Y < height && isWalkable(depositPos.X, depositPos.Y) {
		pi := depositPos.Y*width + depositPos.X
		if depositStrength > field[pi] {
			field[pi] = depositStrength
		}
	}

	// --- Фаза 3: один проход релаксации ---
	next := make([]uint8, len(field))
	copy(next, field)

	windy := params.WindStrength > 0 && !(params.WindDir.X == 0 && params.WindDir.Y == 0)

	// travelDx/travelDy - направление движения запаха (сосед -> текущая).
	windDropAdjust := func(travelDx, travelDy int) int {
		if !windy {
			return 0
		}
		if travelDx == params.WindDir.X && travelDy == params.WindDir.Y {
			return -params.TailwindDropBiasPerStrength * params.WindStrength
		}
		if travelDx == -params.WindDir.X && travelDy == -params.WindDir.Y {
			return params.HeadwindDropBiasPerStrength * params.WindStrength
		}
		return 0
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x

			if !isWalkable(x, y) {
				next[i] = 0
				continue
			}

			fx := fxAt(x, y)
			baseDrop := params.BaseSpreadDrop + fx.SpreadDropDelta

			var best uint8
			for _, dv := range dirs4 {
				nx, ny := x+dv.X, y+dv.Y
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				if !isWalkable(nx, ny) {
					continue
				}
				nv := field[ny*width+nx]
				if nv == 0 {
					continue
				}

				drop := clampInt(baseDrop+windDropAdjust(x-nx, y-ny), params.MinSpreadDrop, params.MaxSpreadDrop)
				var cand uint8
				if int(nv) > drop {
					cand = nv - uint8(drop)
				}
				if cand > best {
					best = cand
				}
			}

			if best > next[i] {
				next[i] = best
			}
		}
	}

	copy(field, next)
}
