package dungeon

import "deepdelve-server/pkg/rng"

// generateMaze строит идеальный лабиринт рекурсивным бэктрекером на
// полурешетке (клетки лабиринта на нечетных координатах), затем пробивает
// часть стен для петель, вырезает камеры и ставит двери-чокепойнты.
func (d *Dungeon) generateMaze(r *rng.RNG, depth int) {
	d.fillWalls()

	// Размер полурешетки: клетка (cx,cy) живет на тайле (cx*2+1, cy*2+1).
	cw := (d.Width - 1) / 2
	ch := (d.Height - 1) / 2
	if cw < 3 || ch < 3 {
		d.generateBSP(r, depth)
		return
	}

	visited := make([]bool, cw*ch)
	tileOf := func(cx, cy int) (int, int) { return cx*2 + 1, cy*2 + 1 }

	startCX := r.Range(0, cw-1)
	startCY := r.Range(0, ch-1)
	stack := []Vec2i{{startCX, startCY}}
	visited[startCY*cw+startCX] = true
	tx, ty := tileOf(startCX, startCY)
	d.carveFloor(tx, ty)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		// Непосещенные соседи по полурешетке.
		var cand [4]Vec2i
		n := 0
		for _, dv := range dirs4 {
			nx, ny := cur.X+dv.X, cur.Y+dv.Y
			if nx < 0 || ny < 0 || nx >= cw || ny >= ch || visited[ny*cw+nx] {
				continue
			}
			cand[n] = Vec2i{nx, ny}
			n++
		}

		if n == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := cand[r.Range(0, n-1)]
		visited[next.Y*cw+next.X] = true

		// Прорубаем клетку и стену между ней и текущей.
		ctx, cty := tileOf(cur.X, cur.Y)
		ntx, nty := tileOf(next.X, next.Y)
		d.carveFloor(ntx, nty)
		d.carveFloor((ctx+ntx)/2, (cty+nty)/2)

		stack = append(stack, next)
	}

	// Пробиваем стены для петель: идеальный лабиринт слишком карателен.
	breaks := maxInt(6, (cw*ch)/6)
	made := 0
	for try := 0; try < breaks*8 && made < breaks; try++ {
		x := r.Range(1, d.Width-2)
		y := r.Range(1, d.Height-2)
		if d.KindAt(x, y) != TileWall {
			continue
		}
		// Стена между двумя полами по одной оси.
		horiz := d.KindAt(x-1, y) == TileFloor && d.KindAt(x+1, y) == TileFloor
		vert := d.KindAt(x, y-1) == TileFloor && d.KindAt(x, y+1) == TileFloor
		if horiz == vert {
			continue
		}
		d.At(x, y).Kind = TileFloor
		made++
	}
	d.MazeBreakCount = made

	// Стартовая камера врезается у клетки коридора, ближайшей к центру
	// карты: вход всегда читается как "сердце" лабиринта.
	sw, sh := r.Range(4, 7), r.Range(3, 5)
	anchor := d.nearestFloor(Vec2i{d.Width / 2, d.Height / 2})
	sx := clampInt(anchor.X-sw/2, 2, d.Width-sw-3)
	sy := clampInt(anchor.Y-sh/2, 2, d.Height-sh-3)
	d.carveRect(sx, sy, sw, sh, TileFloor)
	start := Room{X: sx, Y: sy, W: sw, H: sh, Kind: RoomNormal}
	d.Rooms = append(d.Rooms, start)
	d.ChamberCount++

	// Вторичные камеры: небольшие комнаты, врезанные поверх коридоров.
	chambers := r.Range(5, 8)
	for i := 0; i < chambers; i++ {
		w := r.Range(4, 7)
		h := r.Range(3, 5)
		x := r.Range(2, d.Width-w-3)
		y := r.Range(2, d.Height-h-3)
		d.carveRect(x, y, w, h, TileFloor)
		d.Rooms = append(d.Rooms, Room{X: x, Y: y, W: w, H: h, Kind: RoomNormal})
		d.ChamberCount++
	}

	// Чокепойнты: редкие двери в одноклеточных проходах (~3.5% кандидатов).
	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			if d.KindAt(x, y) != TileFloor {
				continue
			}
			// Горизонтальный проход между стенами сверху/снизу или наоборот.
			narrowH := d.KindAt(x, y-1) == TileWall && d.KindAt(x, y+1) == TileWall &&
				d.KindAt(x-1, y) == TileFloor && d.KindAt(x+1, y) == TileFloor
			narrowV := d.KindAt(x-1, y) == TileWall && d.KindAt(x+1, y) == TileWall &&
				d.KindAt(x, y-1) == TileFloor && d.KindAt(x, y+1) == TileFloor
			if (narrowH || narrowV) && r.Chance(0.035) {
				d.At(x, y).Kind = TileDoorClosed
			}
		}
	}

	// Лестницы: вход в центре стартовой камеры, спуск - в BFS-самой
	// дальней клетке.
	up := Vec2i{start.CX(), start.CY()}
	d.StairsUp = up
	d.At(up.X, up.Y).Kind = TileStairsUp

	far, _ := d.farthestPassable(up, func(count int) bool {
		return r.Range(0, count-1) == 0
	})
	if far == up {
		far = Vec2i{up.X + 1, up.Y}
		d.carveFloor(far.X, far.Y)
	}
	d.StairsDown = far
	d.At(far.X, far.Y).Kind = TileStairsDown
}

// nearestFloor возвращает клетку пола, ближайшую к p (евклидово; при
// равенстве - первая в порядке строк). Без пола возвращает саму p.
func (d *Dungeon) nearestFloor(p Vec2i) Vec2i {
	best := p
	bestD := -1
	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			if d.KindAt(x, y) != TileFloor {
				continue
			}
			dx, dy := x-p.X, y-p.Y
			if dd := dx*dx + dy*dy; bestD < 0 || dd < bestD {
				bestD = dd
				best = Vec2i{x, y}
			}
		}
	}
	return best
}
