package dungeon

import "deepdelve-server/pkg/rng"

// Стиль скульптинга рельефа.
type SculptStyle uint8

const (
	SculptOff SculptStyle = iota
	SculptSubtle
	SculptRuins
	SculptTunnels
)

// SculptResult - телеметрия прохода скульптинга.
type SculptResult struct {
	Carved     int
	Collapsed  int
	Smoothed   int
	RolledBack bool
}

// TotalEdits возвращает суммарное число правок.
func (r SculptResult) TotalEdits() int { return r.Carved + r.Collapsed + r.Smoothed }

type sculptParams struct {
	bandRadius         int     // ширина рабочей полосы вокруг границы пол/стена
	carveSeedP         float64 // шанс выдолбить стену в полосе
	collapseSeedP      float64 // шанс обрушить пол в полосе
	smoothIters        int     // итерации сглаживания
	preferOutsideRooms bool    // обрушения вне комнат
}

func sculptParamsFor(style SculptStyle, depth int) sculptParams {
	var p sculptParams
	switch style {
	case SculptRuins:
		p = sculptParams{bandRadius: 2, carveSeedP: 0.040, collapseSeedP: 0.014, smoothIters: 2, preferOutsideRooms: false}
	case SculptTunnels:
		p = sculptParams{bandRadius: 1, carveSeedP: 0.060, collapseSeedP: 0.006, smoothIters: 1, preferOutsideRooms: true}
	default:
		p = sculptParams{bandRadius: 1, carveSeedP: 0.018, collapseSeedP: 0.004, smoothIters: 1, preferOutsideRooms: true}
	}

	// Глубже - чуть агрессивнее, но в разумных пределах.
	boost := 0.004 * float64(clampInt(depth-1, 0, 8))
	p.carveSeedP = clampF(p.carveSeedP+boost, 0, 0.10)
	p.collapseSeedP = clampF(p.collapseSeedP+boost*0.6, 0, 0.06)
	return p
}

// ApplyTerrainSculpt добавляет рельефу выветренность: точечные выдалбливания
// стен и обрушения пола в полосе вокруг границы пол/стена, затем сглаживание.
// Лестницы защищены ромбом радиуса 3, двери - радиуса 2, специальные комнаты -
// целиком вместе с примыкающими стенами, рамка неприкосновенна. Интенсивность
// посева слегка растет с глубиной (+0.004 за уровень ниже первого, до 8).
// Проход атомарен: при потере связности лестниц все правки откатываются.
// Счетчик Smoothed урезается потолком правок clamp(area/4, 500, 4000); сами
// правки при этом сохраняются.
func ApplyTerrainSculpt(d *Dungeon, r *rng.RNG, depth int, style SculptStyle) SculptResult {
	var res SculptResult
	if style == SculptOff {
		return res
	}

	p := sculptParamsFor(style, depth)
	protected := d.buildProtectionMask()
	band := d.buildBoundaryBand(p.bandRadius)

	snapshot := make([]TileKind, len(d.Tiles))
	for i, t := range d.Tiles {
		snapshot[i] = t.Kind
	}

	inRoom := d.roomMask()

	// 1. Посев: выдалбливания и обрушения.
	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			idx := y*d.Width + x
			if protected[idx] || !band[idx] {
				continue
			}

			switch d.Tiles[idx].Kind {
			case TileWall:
				if r.Chance(p.carveSeedP) {
					d.Tiles[idx].Kind = TileFloor
					res.Carved++
				}
			case TileFloor:
				if p.preferOutsideRooms && inRoom[idx] {
					continue
				}
				if !r.Chance(p.collapseSeedP) {
					continue
				}
				// Обрушение допустимо только у клетки с >=3 соседями-полами:
				// одиночные коридоры не пережимаем.
				if d.countFloorNeighbors4(x, y) >= 3 {
					d.Tiles[idx].Kind = TileWall
					res.Collapsed++
				}
			}
		}
	}

	// 2. Сглаживание по Муру внутри полосы.
	next := make([]TileKind, len(d.Tiles))
	for iter := 0; iter < p.smoothIters; iter++ {
		for i, t := range d.Tiles {
			next[i] = t.Kind
		}
		for y := 1; y < d.Height-1; y++ {
			for x := 1; x < d.Width-1; x++ {
				idx := y*d.Width + x
				if protected[idx] || !band[idx] {
					continue
				}
				k := d.Tiles[idx].Kind
				if k != TileWall && k != TileFloor {
					continue
				}
				walls := d.countWallsMoore(x, y)
				switch {
				case walls >= 5 && k == TileFloor:
					next[idx] = TileWall
					res.Smoothed++
				case walls <= 2 && k == TileWall:
					next[idx] = TileFloor
					res.Smoothed++
				}
			}
		}
		for i := range next {
			d.Tiles[i].Kind = next[i]
		}
	}

	// 3. Потолок правок: урезает только счетчик сглаживания.
	editCap := clampInt(d.Width*d.Height/4, 500, 4000)
	if res.TotalEdits() > editCap {
		over := res.TotalEdits() - editCap
		res.Smoothed -= minInt(over, res.Smoothed)
	}

	// 4. Атомарность.
	if !d.StairsConnected() {
		for i := range d.Tiles {
			d.Tiles[i].Kind = snapshot[i]
		}
		return SculptResult{RolledBack: true}
	}
	return res
}

// buildProtectionMask помечает клетки, которые скульптингу трогать нельзя:
// рамку, ромб радиуса 3 вокруг лестниц, ромб радиуса 2 вокруг дверей, а также
// внутренности специальных комнат (не RoomNormal) вместе с их 4-соседями,
// чтобы не вскрыть стену хранилища соседним выдалбливанием.
func (d *Dungeon) buildProtectionMask() []bool {
	mask := make([]bool, d.Width*d.Height)

	for x := 0; x < d.Width; x++ {
		mask[x] = true
		mask[(d.Height-1)*d.Width+x] = true
	}
	for y := 0; y < d.Height; y++ {
		mask[y*d.Width] = true
		mask[y*d.Width+d.Width-1] = true
	}

	protectDiamond := func(c Vec2i, radius int) {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if absInt(dx)+absInt(dy) > radius {
					continue
				}
				x, y := c.X+dx, c.Y+dy
				if d.InBounds(x, y) {
					mask[y*d.Width+x] = true
				}
			}
		}
	}

	if d.InBounds(d.StairsUp.X, d.StairsUp.Y) {
		protectDiamond(d.StairsUp, 3)
	}
	if d.InBounds(d.StairsDown.X, d.StairsDown.Y) {
		protectDiamond(d.StairsDown, 3)
	}

	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			if isDoorKind(d.KindAt(x, y)) {
				protectDiamond(Vec2i{x, y}, 2)
			}
		}
	}

	for _, room := range d.Rooms {
		if room.Kind == RoomNormal {
			continue
		}
		// Расширенный футпринт: интерьер плюс кольцо стен вокруг.
		for y := room.Y - 1; y <= room.Y2(); y++ {
			for x := room.X - 1; x <= room.X2(); x++ {
				if d.InBounds(x, y) {
					mask[y*d.Width+x] = true
				}
			}
		}
	}
	return mask
}

// buildBoundaryBand помечает клетки в пределах radius (по Чебышеву) от
// границы пол/стена.
func (d *Dungeon) buildBoundaryBand(radius int) []bool {
	band := make([]bool, d.Width*d.Height)

	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			if d.KindAt(x, y) != TileFloor {
				continue
			}
			boundary := false
			for _, dv := range dirs4 {
				if d.KindAt(x+dv.X, y+dv.Y) == TileWall {
					boundary = true
					break
				}
			}
			if !boundary {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					nx, ny := x+dx, y+dy
					if d.InBounds(nx, ny) {
						band[ny*d.Width+nx] = true
					}
				}
			}
		}
	}
	return band
}

func (d *Dungeon) countFloorNeighbors4(x, y int) int {
	n := 0
	for _, dv := range dirs4 {
		if d.KindAt(x+dv.X, y+dv.Y) == TileFloor {
			n++
		}
	}
	return n
}
