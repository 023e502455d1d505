package dungeon

import "deepdelve-server/pkg/rng"

// generateLabyrinth строит предфинальный этаж: плотный лабиринт с тяжелыми
// петлями, логовом за рвом с мостами и запертыми дверями, и дальним святилищем.
func (d *Dungeon) generateLabyrinth(r *rng.RNG, depth int) {
	// База - лабиринт с собственными камерами и чокепойнтами.
	d.generateMaze(r, depth)

	// Дополнительные проломы: по одному на каждую шестую клетки, минимум 12.
	cw := (d.Width - 1) / 2
	ch := (d.Height - 1) / 2
	extra := maxInt(12, (cw*ch)/6)
	made := 0
	for try := 0; try < extra*8 && made < extra; try++ {
		x := r.Range(1, d.Width-2)
		y := r.Range(1, d.Height-2)
		if d.KindAt(x, y) != TileWall {
			continue
		}
		horiz := d.KindAt(x-1, y) == TileFloor && d.KindAt(x+1, y) == TileFloor
		vert := d.KindAt(x, y-1) == TileFloor && d.KindAt(x, y+1) == TileFloor
		if horiz == vert {
			continue
		}
		d.At(x, y).Kind = TileFloor
		made++
	}
	d.MazeBreakCount += made

	// Центральное логово за рвом.
	lairW, lairH := 13, 9
	lx := d.Width/2 - lairW/2
	ly := d.Height/2 - lairH/2
	d.carveMoatedRoom(lx, ly, lairW, lairH, RoomLair, TileDoorLocked, 4, r)

	// Вход мог попасть под футпринт логова (стартовая камера лабиринта тоже
	// тяготеет к центру): тогда он съезжает на ближайший пол снаружи.
	inLair := func(x, y int) bool {
		return x >= lx-1 && x <= lx+lairW && y >= ly-1 && y <= ly+lairH
	}
	if inLair(d.StairsUp.X, d.StairsUp.Y) {
		best := Vec2i{-1, -1}
		bestD := -1
		for y := 1; y < d.Height-1; y++ {
			for x := 1; x < d.Width-1; x++ {
				if inLair(x, y) || d.KindAt(x, y) != TileFloor {
					continue
				}
				dx, dy := x-d.StairsUp.X, y-d.StairsUp.Y
				if dd := dx*dx + dy*dy; bestD < 0 || dd < bestD {
					bestD = dd
					best = Vec2i{x, y}
				}
			}
		}
		if best.X >= 0 {
			d.StairsUp = best
			d.At(best.X, best.Y).Kind = TileStairsUp
		}
	}

	// Дальнее святилище: пол с BFS-дистанцией > 10 от логова. Дистанция
	// считается сквозь запертые двери - снаружи логово закрыто ими всеми.
	lairC := Vec2i{lx + lairW/2, ly + lairH/2}
	dist := d.bfsDistanceEventually(lairC)
	var shrine Vec2i
	found := false
	seen := 0
	for y := 2; y < d.Height-2; y++ {
		for x := 2; x < d.Width-2; x++ {
			if d.KindAt(x, y) != TileFloor {
				continue
			}
			// Камера святилища (радиус 2) не должна дотянуться до рва логова.
			if x >= lx-4 && x <= lx+lairW+3 && y >= ly-4 && y <= ly+lairH+3 {
				continue
			}
			if dd := dist[y*d.Width+x]; dd > 10 {
				seen++
				if r.Range(0, seen-1) == 0 {
					shrine = Vec2i{x, y}
					found = true
				}
			}
		}
	}
	if found {
		d.carveChamber(shrine.X, shrine.Y, 2, r)
		d.At(shrine.X, shrine.Y).Kind = TileAltar
		d.Rooms = append(d.Rooms, Room{X: shrine.X - 2, Y: shrine.Y - 2, W: 5, H: 5, Kind: RoomShrine})
	}

	// Спуск переезжает в логово: финальный этаж открывается только через него.
	if d.InBounds(d.StairsDown.X, d.StairsDown.Y) && d.KindAt(d.StairsDown.X, d.StairsDown.Y) == TileStairsDown {
		d.At(d.StairsDown.X, d.StairsDown.Y).Kind = TileFloor
	}
	d.StairsDown = lairC
	d.At(lairC.X, lairC.Y).Kind = TileStairsDown
}

// generateSanctum строит финальный этаж: арена с симметричными колоннами и
// хранилище за рвом. Спуска нет - StairsDown = {-1,-1}.
func (d *Dungeon) generateSanctum(r *rng.RNG) {
	d.fillWalls()

	// Арена - большой овал в центре.
	cx, cy := d.Width/2, d.Height/2
	ax := d.Width/2 - 4
	ay := d.Height/2 - 4
	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			dx := float64(x-cx) / float64(ax)
			dy := float64(y-cy) / float64(ay)
			if dx*dx+dy*dy <= 1.0 {
				d.At(x, y).Kind = TileFloor
			}
		}
	}
	d.Rooms = append(d.Rooms, Room{X: cx - ax, Y: cy - ay, W: ax * 2, H: ay * 2, Kind: RoomLair})

	// Симметричные колонны: два кольца по четыре, зеркальные по обеим осям.
	for _, off := range [2]Vec2i{{ax / 2, ay / 2}, {ax * 3 / 4, ay / 4}} {
		for _, sign := range [4]Vec2i{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}} {
			px := cx + off.X*sign.X
			py := cy + off.Y*sign.Y
			if d.KindAt(px, py) == TileFloor {
				d.At(px, py).Kind = TilePillar
				d.PillarCount++
			}
		}
	}

	// Хранилище за рвом в северной части арены: единственная запертая дверь.
	vw, vh := 9, 6
	vx := cx - vw/2
	vy := cy - ay + 2
	d.carveMoatedRoom(vx, vy, vw, vh, RoomVault, TileDoorLocked, 1, r)
	if d.KindAt(cx, vy+vh/2) == TileFloor {
		d.At(cx, vy+vh/2).Kind = TileAltar
	}

	// Вход - южный край арены. Спуска с финального этажа нет.
	d.StairsUp = Vec2i{cx, cy + ay - 2}
	if !d.InBounds(d.StairsUp.X, d.StairsUp.Y) || d.KindAt(d.StairsUp.X, d.StairsUp.Y) == TileWall {
		d.StairsUp = Vec2i{cx, cy + 2}
	}
	d.At(d.StairsUp.X, d.StairsUp.Y).Kind = TileStairsUp
	d.StairsDown = Vec2i{-1, -1}
}

// carveMoatedRoom вырезает комнату, окруженную рвом-провалом шириной 1, с
// мостами по серединам сторон (N/S/W/E) и дверями на них. doors задает число
// входов (1..4); стороны выбираются случайно, остальные остаются рвом.
func (d *Dungeon) carveMoatedRoom(x, y, w, h int, kind RoomKind, doorKind TileKind, doors int, r *rng.RNG) {
	// Ров по периметру расширенного футпринта.
	for yy := y - 1; yy <= y+h; yy++ {
		for xx := x - 1; xx <= x+w; xx++ {
			if !d.InBounds(xx, yy) || xx <= 0 || yy <= 0 || xx >= d.Width-1 || yy >= d.Height-1 {
				continue
			}
			onRing := xx == x-1 || xx == x+w || yy == y-1 || yy == y+h
			if onRing {
				d.At(xx, yy).Kind = TileChasm
				d.ChasmCount++
			}
		}
	}

	// Внутренность.
	d.carveRect(x, y, w, h, TileFloor)
	d.Rooms = append(d.Rooms, Room{X: x, Y: y, W: w, H: h, Kind: kind})

	// Мосты через ров по серединам сторон, с дверью на внутреннем конце.
	mid := func(a, b int) int { return a + (b-a)/2 }
	bridges := [4]struct {
		moat Vec2i
		door Vec2i
		out  Vec2i
	}{
		{Vec2i{mid(x, x+w), y - 1}, Vec2i{mid(x, x+w), y}, Vec2i{mid(x, x+w), y - 2}},
		{Vec2i{mid(x, x+w), y + h}, Vec2i{mid(x, x+w), y + h - 1}, Vec2i{mid(x, x+w), y + h + 1}},
		{Vec2i{x - 1, mid(y, y+h)}, Vec2i{x, mid(y, y+h)}, Vec2i{x - 2, mid(y, y+h)}},
		{Vec2i{x + w, mid(y, y+h)}, Vec2i{x + w - 1, mid(y, y+h)}, Vec2i{x + w + 1, mid(y, y+h)}},
	}
	// Случайные стороны под мосты; лишние остаются сплошным рвом. Стороны,
	// чей внешний подход уже открыт, идут первыми: единственная дверь не
	// должна смотреть в глухой камень.
	doors = clampInt(doors, 1, 4)
	ord := [4]int{0, 1, 2, 3}
	for i := 3; i > 0; i-- {
		j := r.Range(0, i)
		ord[i], ord[j] = ord[j], ord[i]
	}
	openOut := func(b Vec2i) bool {
		return d.InBounds(b.X, b.Y) && d.IsWalkable(b.X, b.Y) && d.passableDegree4(b.X, b.Y) > 0
	}
	ranked := make([]int, 0, 4)
	for _, oi := range ord {
		if openOut(bridges[oi].out) {
			ranked = append(ranked, oi)
		}
	}
	for _, oi := range ord {
		if !openOut(bridges[oi].out) {
			ranked = append(ranked, oi)
		}
	}

	built := 0
	for _, oi := range ranked {
		if built >= doors {
			break
		}
		b := bridges[oi]
		if !d.InBounds(b.moat.X, b.moat.Y) || !d.InBounds(b.out.X, b.out.Y) {
			continue
		}
		if d.KindAt(b.moat.X, b.moat.Y) == TileChasm {
			d.ChasmCount--
		}
		d.At(b.moat.X, b.moat.Y).Kind = TileFloor
		d.At(b.door.X, b.door.Y).Kind = doorKind
		// Подход к мосту снаружи должен быть проходим.
		if d.KindAt(b.out.X, b.out.Y) == TileWall {
			d.carveFloor(b.out.X, b.out.Y)
		}
		built++
	}
}
