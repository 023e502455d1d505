package dungeon

import "deepdelve-server/pkg/rng"

// generateCavern строит органическую пещеру клеточным автоматом:
// случайный шум -> 5 итераций сглаживания -> оставить крупнейшую полость.
// Если полость вырождается (< 1/6 площади), откатываемся на BSP.
func (d *Dungeon) generateCavern(r *rng.RNG, depth int) {
	d.fillWalls()

	floorChance := cavernFloorChance(depth)

	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			if r.Chance(floorChance) {
				d.At(x, y).Kind = TileFloor
			}
		}
	}

	// Сглаживание по Муру: клетка становится стеной при >=5 стенах вокруг,
	// полом - при <=2.
	next := make([]TileKind, d.Width*d.Height)
	for iter := 0; iter < 5; iter++ {
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				idx := y*d.Width + x
				if x == 0 || y == 0 || x == d.Width-1 || y == d.Height-1 {
					next[idx] = TileWall
					continue
				}
				walls := d.countWallsMoore(x, y)
				switch {
				case walls >= 5:
					next[idx] = TileWall
				case walls <= 2:
					next[idx] = TileFloor
				default:
					next[idx] = d.Tiles[idx].Kind
				}
			}
		}
		for i := range next {
			d.Tiles[i].Kind = next[i]
		}
	}

	// Оставляем только крупнейшую связную полость.
	kept := d.keepLargestCavity()
	if kept < d.Width*d.Height/6 {
		// Автомат дал слишком тесную пещеру: этаж перестраивается как BSP.
		d.generateBSP(r, depth)
		return
	}

	// Стартовая камера гарантирует место под вход.
	startX := r.Range(d.Width/4, 3*d.Width/4)
	startY := r.Range(d.Height/4, 3*d.Height/4)
	d.carveChamber(startX, startY, 3, r)
	d.Rooms = append(d.Rooms, Room{X: startX - 2, Y: startY - 2, W: 5, H: 5, Kind: RoomNormal})
	d.ChamberCount++

	// Дополнительные камеры, врезанные в пещеру и соединенные тоннелями.
	chambers := r.Range(6, 10)
	prev := Vec2i{startX, startY}
	for i := 0; i < chambers; i++ {
		cx := r.Range(4, d.Width-5)
		cy := r.Range(4, d.Height-5)
		radius := r.Range(2, 4)
		d.carveChamber(cx, cy, radius, r)
		d.Rooms = append(d.Rooms, Room{X: cx - radius, Y: cy - radius, W: radius*2 + 1, H: radius*2 + 1, Kind: RoomNormal})
		d.ChamberCount++

		d.carveWindingTunnel(prev, Vec2i{cx, cy}, r)
		prev = Vec2i{cx, cy}
	}

	// После камер полость могла раздробиться - соединяем все заново.
	d.keepLargestCavity()
	d.carveChamber(startX, startY, 2, r)

	// Лестницы: вход в стартовой камере, спуск в BFS-самой дальней точке
	// (равные расстояния разрешаются резервуарным выбором).
	d.StairsUp = Vec2i{startX, startY}
	d.At(startX, startY).Kind = TileStairsUp

	far, _ := d.farthestPassable(d.StairsUp, func(count int) bool {
		return r.Range(0, count-1) == 0
	})
	if far == d.StairsUp {
		far = Vec2i{startX + 1, startY}
		d.carveFloor(far.X, far.Y)
	}
	d.StairsDown = far
	d.At(far.X, far.Y).Kind = TileStairsDown
}

// cavernFloorChance - шанс посева пола: чуть падает с глубиной, глубокие
// пещеры теснее и давят на игрока.
func cavernFloorChance(depth int) float64 {
	return 0.44 - 0.004*float64(minInt(depth, 15))
}

// countWallsMoore считает стены в окрестности Мура 3x3 (граница = стена).
func (d *Dungeon) countWallsMoore(x, y int) int {
	walls := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !d.InBounds(nx, ny) || d.KindAt(nx, ny) == TileWall {
				walls++
			}
		}
	}
	return walls
}

// keepLargestCavity заливает стенами все полости, кроме крупнейшей.
// Возвращает размер оставленной полости.
func (d *Dungeon) keepLargestCavity() int {
	size := d.Width * d.Height
	label := make([]int, size)
	for i := range label {
		label[i] = -1
	}

	bestLabel := -1
	bestSize := 0
	nextLabel := 0
	queue := make([]int, 0, 256)

	for start := 0; start < size; start++ {
		if label[start] >= 0 || d.Tiles[start].Kind != TileFloor {
			continue
		}

		cur := nextLabel
		nextLabel++
		label[start] = cur
		queue = queue[:0]
		queue = append(queue, start)
		count := 0

		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			count++

			x, y := idx%d.Width, idx/d.Width
			for _, dv := range dirs4 {
				nx, ny := x+dv.X, y+dv.Y
				if !d.InBounds(nx, ny) {
					continue
				}
				nidx := ny*d.Width + nx
				if label[nidx] < 0 && d.Tiles[nidx].Kind == TileFloor {
					label[nidx] = cur
					queue = append(queue, nidx)
				}
			}
		}

		if count > bestSize {
			bestSize = count
			bestLabel = cur
		}
	}

	for i := 0; i < size; i++ {
		if d.Tiles[i].Kind == TileFloor && label[i] != bestLabel {
			d.Tiles[i].Kind = TileWall
		}
	}
	return bestSize
}

// carveChamber вырезает грубо круглую камеру радиуса radius с рваным краем.
func (d *Dungeon) carveChamber(cx, cy, radius int, r *rng.RNG) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius+1 {
				continue
			}
			// Рваный край: внешнее кольцо иногда остается стеной.
			if dx*dx+dy*dy == radius*radius+1 && r.Chance(0.4) {
				continue
			}
			x, y := cx+dx, cy+dy
			if x > 0 && y > 0 && x < d.Width-1 && y < d.Height-1 {
				d.carveFloor(x, y)
			}
		}
	}
}

// carveWindingTunnel прокладывает извилистый тоннель шириной 1-2 между точками.
func (d *Dungeon) carveWindingTunnel(from, to Vec2i, r *rng.RNG) {
	x, y := from.X, from.Y
	for (x != to.X || y != to.Y) && d.InBounds(x, y) {
		// Шаг преимущественно к цели, изредка вбок.
		if r.Chance(0.2) {
			dv := dirs4[r.Range(0, 3)]
			x += dv.X
			y += dv.Y
		} else if x != to.X && (y == to.Y || r.Chance(0.5)) {
			if to.X > x {
				x++
			} else {
				x--
			}
		} else if y != to.Y {
			if to.Y > y {
				y++
			} else {
				y--
			}
		}

		x = clampInt(x, 1, d.Width-2)
		y = clampInt(y, 1, d.Height-2)
		d.carveFloor(x, y)
		// Иногда расширяем до ширины 2.
		if r.Chance(0.35) && x+1 < d.Width-1 {
			d.carveFloor(x+1, y)
		}
	}
}
