package dungeon

import (
	"deepdelve-server/pkg/rng"

	"github.com/zyedidia/generic/mapset"
)

// Стратегия раскладки этажа.
type LayoutStyle uint8

const (
	StyleBSP LayoutStyle = iota
	StyleCavern
	StyleMaze
	StyleLabyrinth
	StyleSanctum
)

// Name возвращает имя стратегии.
func (s LayoutStyle) Name() string {
	switch s {
	case StyleBSP:
		return "BSP"
	case StyleCavern:
		return "CAVERN"
	case StyleMaze:
		return "MAZE"
	case StyleLabyrinth:
		return "LABYRINTH"
	case StyleSanctum:
		return "SANCTUM"
	default:
		return "BSP"
	}
}

// StyleForDepth выбирает стратегию раскладки по глубине.
//
//   - Последний этаж - санктум (арена без спуска), предпоследний - лабиринт.
//   - Глубины 1-3 всегда BSP (мягкий вход в забег).
//   - 4-9: фиксированная последовательность Cavern/Maze/BSP (пейсинг).
//   - Глубже: взвешенный случайный выбор 22% / 30% / 48%.
func StyleForDepth(r *rng.RNG, depth, maxDepth int) LayoutStyle {
	if maxDepth > 0 {
		if depth >= maxDepth {
			return StyleSanctum
		}
		if depth == maxDepth-1 {
			return StyleLabyrinth
		}
	}

	if depth <= 3 {
		return StyleBSP
	}

	if depth <= 9 {
		seq := [6]LayoutStyle{StyleCavern, StyleMaze, StyleBSP, StyleCavern, StyleMaze, StyleBSP}
		return seq[(depth-4)%6]
	}

	roll := r.Range(0, 99)
	switch {
	case roll < 22:
		return StyleMaze
	case roll < 52:
		return StyleCavern
	default:
		return StyleBSP
	}
}

// Generate полностью перезаписывает этаж выбранной стратегией и прогоняет
// пост-процессы. Гарантирует связность лестниц (кроме санктума, где спуска нет).
func (d *Dungeon) Generate(r *rng.RNG, depth, maxDepth int) {
	style := StyleForDepth(r, depth, maxDepth)
	d.GenerateStyled(r, depth, maxDepth, style)
}

// GenerateStyled - то же, но с явной стратегией (для тестов и отладки).
func (d *Dungeon) GenerateStyled(r *rng.RNG, depth, maxDepth int, style LayoutStyle) {
	if d.Width < 16 || d.Height < 16 {
		// Вырожденно маленькие карты: одна комната на весь этаж.
		d.fillWalls()
		d.carveFallbackRoom()
		d.placeStairsSimple()
		d.ensureBorders()
		return
	}

	// 1. Базовая раскладка.
	switch style {
	case StyleCavern:
		d.generateCavern(r, depth)
	case StyleMaze:
		d.generateMaze(r, depth)
	case StyleLabyrinth:
		d.generateLabyrinth(r, depth)
	case StyleSanctum:
		d.generateSanctum(r)
	default:
		d.generateBSP(r, depth)
	}

	// Эксклюзивные этажи сами расставляют специальные комнаты и декор.
	if style == StyleLabyrinth || style == StyleSanctum {
		d.ensureBorders()
		return
	}

	// 2. Специальные комнаты (пул исключает комнаты с лестницами).
	d.assignSpecialRooms(r, depth)

	// 3. Секретные клады и запертые хранилища, врезанные в стены.
	d.carveSecretClosets(r, depth)

	// 4. Пост-процессы с откатом при потере связности.
	braidStyle, sculptStyle := postProcessStylesFor(style, depth)
	res := ApplyCorridorBraiding(d, r, depth, braidStyle)
	d.BraidTunnelCount = res.TunnelsCarved
	sres := ApplyTerrainSculpt(d, r, depth, sculptStyle)
	d.SculptEditCount = sres.TotalEdits()

	// 5. Декорации (колонны/провалы) - мелкие и всегда безопасные.
	d.decorateRooms(r, depth)

	// 6. Финал: запечатать периметр.
	d.ensureBorders()
}

// postProcessStylesFor подбирает интенсивность пост-процессов под раскладку.
// Пещеры уже органичны - их не скульптим; лабиринты получают тяжелое плетение.
func postProcessStylesFor(style LayoutStyle, depth int) (BraidStyle, SculptStyle) {
	switch style {
	case StyleCavern:
		return BraidSparse, SculptOff
	case StyleMaze:
		return BraidHeavy, SculptTunnels
	default:
		if depth >= 6 {
			return BraidModerate, SculptRuins
		}
		return BraidModerate, SculptSubtle
	}
}

// --- Внутренние помощники раскладки ---

func (d *Dungeon) fillWalls() {
	for i := range d.Tiles {
		d.Tiles[i] = Tile{Kind: TileWall}
	}
	d.Rooms = d.Rooms[:0]
	d.StairsUp = Vec2i{-1, -1}
	d.StairsDown = Vec2i{-1, -1}
	d.BraidTunnelCount = 0
	d.SculptEditCount = 0
	d.ChamberCount = 0
	d.MazeBreakCount = 0
	d.AnnexWfcCount = 0
}

func (d *Dungeon) carveRect(x, y, w, h int, kind TileKind) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			if d.InBounds(xx, yy) {
				d.At(xx, yy).Kind = kind
			}
		}
	}
}

// carveFloor кладет пол, не затирая двери и лестницы.
func (d *Dungeon) carveFloor(x, y int) {
	if !d.InBounds(x, y) {
		return
	}
	t := d.At(x, y)
	if isDoorKind(t.Kind) || isStairsKind(t.Kind) {
		return
	}
	t.Kind = TileFloor
}

func (d *Dungeon) carveH(x1, x2, y int) {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		d.carveFloor(x, y)
	}
}

func (d *Dungeon) carveV(y1, y2, x int) {
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		d.carveFloor(x, y)
	}
}

func (d *Dungeon) ensureBorders() {
	for x := 0; x < d.Width; x++ {
		d.At(x, 0).Kind = TileWall
		d.At(x, d.Height-1).Kind = TileWall
	}
	for y := 0; y < d.Height; y++ {
		d.At(0, y).Kind = TileWall
		d.At(d.Width-1, y).Kind = TileWall
	}
}

func (d *Dungeon) carveFallbackRoom() {
	r := Room{X: d.Width / 4, Y: d.Height / 4, W: d.Width / 2, H: d.Height / 2, Kind: RoomNormal}
	d.Rooms = append(d.Rooms, r)
	d.carveRect(r.X, r.Y, r.W, r.H, TileFloor)
}

func (d *Dungeon) placeStairsSimple() {
	if len(d.Rooms) == 0 {
		return
	}
	first := d.Rooms[0]
	d.StairsUp = Vec2i{first.CX(), first.CY()}
	d.At(d.StairsUp.X, d.StairsUp.Y).Kind = TileStairsUp

	last := d.Rooms[len(d.Rooms)-1]
	d.StairsDown = Vec2i{last.CX(), last.CY()}
	if d.StairsDown == d.StairsUp {
		d.StairsDown = Vec2i{last.CX() + 1, last.CY()}
	}
	if d.InBounds(d.StairsDown.X, d.StairsDown.Y) {
		d.At(d.StairsDown.X, d.StairsDown.Y).Kind = TileStairsDown
	}
}

// --- BSP генератор ---

// leaf - узел BSP-дерева в плоском массиве; left/right = -1 у листа,
// roomIndex = -1, пока комната не вырезана. Индексы вместо указателей -
// сейвам и тестам не нужны циклы владения.
type leaf struct {
	x, y, w, h int
	left       int
	right      int
	roomIndex  int
}

func isLeafNode(n leaf) bool { return n.left < 0 && n.right < 0 }

func (d *Dungeon) generateBSP(r *rng.RNG, depth int) {
	d.fillWalls()

	const minLeaf = 8
	nodes := make([]leaf, 0, 64)
	nodes = append(nodes, leaf{x: 1, y: 1, w: d.Width - 2, h: d.Height - 2, left: -1, right: -1, roomIndex: -1})

	// Рекурсивное деление (итеративный стек).
	stack := []int{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &nodes[idx]
		if n.w < minLeaf*2 && n.h < minLeaf*2 {
			continue
		}

		// Ориентация деления: вдоль длинной оси, при равенстве - случайно.
		splitVert := n.w > n.h
		if n.w == n.h {
			splitVert = r.Chance(0.5)
		}

		if splitVert {
			if n.w < minLeaf*2 {
				continue
			}
			split := r.Range(minLeaf, n.w-minLeaf)
			a := leaf{x: n.x, y: n.y, w: split, h: n.h, left: -1, right: -1, roomIndex: -1}
			b := leaf{x: n.x + split, y: n.y, w: n.w - split, h: n.h, left: -1, right: -1, roomIndex: -1}
			n.left = len(nodes)
			nodes = append(nodes, a)
			n = &nodes[idx] // append мог перевыделить массив
			n.right = len(nodes)
			nodes = append(nodes, b)
			n = &nodes[idx]
		} else {
			if n.h < minLeaf*2 {
				continue
			}
			split := r.Range(minLeaf, n.h-minLeaf)
			a := leaf{x: n.x, y: n.y, w: n.w, h: split, left: -1, right: -1, roomIndex: -1}
			b := leaf{x: n.x, y: n.y + split, w: n.w, h: n.h - split, left: -1, right: -1, roomIndex: -1}
			n.left = len(nodes)
			nodes = append(nodes, a)
			n = &nodes[idx]
			n.right = len(nodes)
			nodes = append(nodes, b)
			n = &nodes[idx]
		}

		stack = append(stack, n.left, n.right)
	}

	// Комната в каждом терминальном листе.
	const minRoomW, minRoomH = 4, 4
	for i := range nodes {
		n := &nodes[i]
		if !isLeafNode(*n) {
			continue
		}

		maxRoomW := maxInt(minRoomW, n.w-2)
		maxRoomH := maxInt(minRoomH, n.h-2)

		rw := r.Range(minRoomW, maxRoomW)
		rh := r.Range(minRoomH, maxRoomH)
		rx := n.x + r.Range(1, maxInt(1, n.w-rw-1))
		ry := n.y + r.Range(1, maxInt(1, n.h-rh-1))

		room := Room{X: rx, Y: ry, W: rw, H: rh, Kind: RoomNormal}
		n.roomIndex = len(d.Rooms)
		d.Rooms = append(d.Rooms, room)
		d.carveRect(rx, ry, rw, rh, TileFloor)
	}

	if len(d.Rooms) == 0 {
		// Патологический минимальный размер листьев: одна комната на весь этаж.
		d.carveFallbackRoom()
	}

	// Соединяем братские поддеревья.
	for i := range nodes {
		n := nodes[i]
		if n.left < 0 || n.right < 0 {
			continue
		}
		ra := pickRandomRoomInSubtree(nodes, n.left, r)
		rb := pickRandomRoomInSubtree(nodes, n.right, r)
		if ra >= 0 && rb >= 0 && ra != rb {
			d.connectRooms(d.Rooms[ra], d.Rooms[rb], r)
		}
	}

	// Дополнительные петли между случайными парами комнат.
	extra := maxInt(1, len(d.Rooms)/3)
	for i := 0; i < extra; i++ {
		a := r.Range(0, len(d.Rooms)-1)
		b := r.Range(0, len(d.Rooms)-1)
		if a == b {
			continue
		}
		d.connectRooms(d.Rooms[a], d.Rooms[b], r)
	}

	// Тупиковые ответвления для текстуры.
	d.carveBranchCorridors(r)

	// Лестницы: вверх - в первой комнате, вниз - в BFS-самой дальней.
	d.placeStairsFarthestRoom()
}

func collectRoomsInSubtree(nodes []leaf, idx int, out []int) []int {
	if idx < 0 {
		return out
	}
	n := nodes[idx]
	if n.roomIndex >= 0 {
		out = append(out, n.roomIndex)
	}
	out = collectRoomsInSubtree(nodes, n.left, out)
	out = collectRoomsInSubtree(nodes, n.right, out)
	return out
}

func pickRandomRoomInSubtree(nodes []leaf, idx int, r *rng.RNG) int {
	rooms := collectRoomsInSubtree(nodes, idx, nil)
	if len(rooms) == 0 {
		return -1
	}
	return rooms[r.Range(0, len(rooms)-1)]
}

type doorPick struct {
	door          Vec2i
	corridorStart Vec2i
}

// pickDoorOnRoom выбирает точку двери на случайной стене комнаты.
func (d *Dungeon) pickDoorOnRoom(room Room, r *rng.RNG) doorPick {
	for tries := 0; tries < 20; tries++ {
		side := r.Range(0, 3)
		door := Vec2i{room.CX(), room.CY()}
		out := door

		switch side {
		case 0: // север
			door.X = r.Range(room.X+1, room.X+room.W-2)
			door.Y = room.Y
			out = Vec2i{door.X, door.Y - 1}
		case 1: // юг
			door.X = r.Range(room.X+1, room.X+room.W-2)
			door.Y = room.Y + room.H - 1
			out = Vec2i{door.X, door.Y + 1}
		case 2: // запад
			door.X = room.X
			door.Y = r.Range(room.Y+1, room.Y+room.H-2)
			out = Vec2i{door.X - 1, door.Y}
		default: // восток
			door.X = room.X + room.W - 1
			door.Y = r.Range(room.Y+1, room.Y+room.H-2)
			out = Vec2i{door.X + 1, door.Y}
		}

		if d.InBounds(out.X, out.Y) && d.InBounds(door.X, door.Y) {
			return doorPick{door: door, corridorStart: out}
		}
	}

	// Фолбэк: около центра.
	door := Vec2i{room.CX(), room.CY()}
	for _, out := range []Vec2i{{door.X, door.Y + 1}, {door.X, door.Y - 1}, {door.X + 1, door.Y}, {door.X - 1, door.Y}} {
		if d.InBounds(out.X, out.Y) {
			return doorPick{door: door, corridorStart: out}
		}
	}
	return doorPick{door: door, corridorStart: door}
}

// connectRooms проводит L/Z-образный коридор между дверными точками двух комнат.
func (d *Dungeon) connectRooms(a, b Room, r *rng.RNG) {
	da := d.pickDoorOnRoom(a, r)
	db := d.pickDoorOnRoom(b, r)

	if d.InBounds(da.door.X, da.door.Y) {
		d.At(da.door.X, da.door.Y).Kind = TileDoorClosed
	}
	if d.InBounds(db.door.X, db.door.Y) {
		d.At(db.door.X, db.door.Y).Kind = TileDoorClosed
	}

	d.carveFloor(da.corridorStart.X, da.corridorStart.Y)
	d.carveFloor(db.corridorStart.X, db.corridorStart.Y)

	x1, y1 := da.corridorStart.X, da.corridorStart.Y
	x2, y2 := db.corridorStart.X, db.corridorStart.Y

	if r.Chance(0.5) {
		d.carveH(x1, x2, y1)
		d.carveV(y1, y2, x2)
	} else {
		d.carveV(y1, y2, x1)
		d.carveH(x1, x2, y2)
	}
}

// carveBranchCorridors прорубает короткие тупиковые ответвления от коридоров.
func (d *Dungeon) carveBranchCorridors(r *rng.RNG) {
	inRoom := d.roomMask()
	branches := maxInt(2, len(d.Rooms))

	for i := 0; i < branches; i++ {
		x := r.Range(1, d.Width-2)
		y := r.Range(1, d.Height-2)

		if d.KindAt(x, y) != TileFloor {
			continue
		}
		if inRoom[y*d.Width+x] {
			continue // предпочитаем коридоры
		}

		dv := dirs4[r.Range(0, 3)]
		nx, ny := x+dv.X, y+dv.Y
		if d.KindAt(nx, ny) != TileWall {
			continue // копать нужно в стену
		}

		length := r.Range(3, 8)
		cx, cy := x, y
		for step := 0; step < length; step++ {
			cx += dv.X
			cy += dv.Y
			if !d.InBounds(cx, cy) || d.KindAt(cx, cy) != TileWall {
				break
			}
			if cx <= 0 || cy <= 0 || cx >= d.Width-1 || cy >= d.Height-1 {
				break
			}
			d.carveFloor(cx, cy)
		}
	}
}

// roomMask строит маску "клетка внутри какой-либо комнаты".
func (d *Dungeon) roomMask() []bool {
	mask := make([]bool, d.Width*d.Height)
	for _, room := range d.Rooms {
		for y := room.Y; y < room.Y2(); y++ {
			for x := room.X; x < room.X2(); x++ {
				if d.InBounds(x, y) {
					mask[y*d.Width+x] = true
				}
			}
		}
	}
	return mask
}

// placeStairsFarthestRoom ставит вход в первой комнате, спуск - в комнате с
// максимальным BFS-расстоянием от входа (при равенстве - первая найденная).
func (d *Dungeon) placeStairsFarthestRoom() {
	if len(d.Rooms) == 0 {
		return
	}

	start := d.Rooms[0]
	d.StairsUp = Vec2i{start.CX(), start.CY()}
	d.At(d.StairsUp.X, d.StairsUp.Y).Kind = TileStairsUp

	dist := d.BFSDistanceMap(d.StairsUp)
	bestIdx := 0
	bestDist := -1
	for i, room := range d.Rooms {
		cx, cy := room.CX(), room.CY()
		if !d.InBounds(cx, cy) {
			continue
		}
		dd := dist[cy*d.Width+cx]
		if dd > bestDist {
			bestDist = dd
			bestIdx = i
		}
	}

	end := d.Rooms[bestIdx]
	d.StairsDown = Vec2i{end.CX(), end.CY()}
	if d.StairsDown == d.StairsUp {
		d.StairsDown = Vec2i{end.CX() + 1, end.CY()}
	}
	if d.InBounds(d.StairsDown.X, d.StairsDown.Y) {
		d.At(d.StairsDown.X, d.StairsDown.Y).Kind = TileStairsDown
	}
}

// --- Специальные комнаты ---

// assignSpecialRooms назначает типы комнат из пула, исключая (по возможности)
// комнаты с лестницами.
func (d *Dungeon) assignSpecialRooms(r *rng.RNG, depth int) {
	if len(d.Rooms) < 3 {
		return
	}

	excluded := mapset.New[int]()
	for i, room := range d.Rooms {
		if room.Contains(d.StairsUp.X, d.StairsUp.Y) || room.Contains(d.StairsDown.X, d.StairsDown.Y) {
			excluded.Put(i)
		}
	}

	pool := make([]int, 0, len(d.Rooms))
	for i := range d.Rooms {
		if !excluded.Has(i) {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		// Все комнаты с лестницами (крошечный этаж) - работаем по всем.
		for i := range d.Rooms {
			pool = append(pool, i)
		}
	}

	// Перемешиваем пул (Fisher-Yates).
	for i := len(pool) - 1; i > 0; i-- {
		j := r.Range(0, i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	// Состав: сокровищница + логово + святилище, глубже добавляются
	// тематические комнаты и лавка.
	wanted := []RoomKind{RoomTreasure, RoomLair, RoomShrine}
	if depth >= 3 && r.Chance(0.45) {
		themed := []RoomKind{RoomArmory, RoomLibrary, RoomLaboratory}
		wanted = append(wanted, themed[r.Range(0, len(themed)-1)])
	}
	if depth >= 2 && r.Chance(0.30) {
		wanted = append(wanted, RoomShop)
	}

	for i, kind := range wanted {
		if i >= len(pool) {
			break
		}
		d.Rooms[pool[i]].Kind = kind
	}

	// Святилище получает алтарь в центре.
	for _, room := range d.Rooms {
		if room.Kind != RoomShrine {
			continue
		}
		cx, cy := room.CX(), room.CY()
		if d.KindAt(cx, cy) == TileFloor {
			d.At(cx, cy).Kind = TileAltar
		}
	}
}

// carveSecretClosets врезает в стены 0-2 маленьких клада: секретная комната
// за потайной дверью или хранилище за запертой.
func (d *Dungeon) carveSecretClosets(r *rng.RNG, depth int) {
	attempts := 24
	placed := 0
	want := 1
	if depth >= 4 && r.Chance(0.5) {
		want = 2
	}

	inRoom := d.roomMask()

	for try := 0; try < attempts && placed < want; try++ {
		// Размер клада 4x4..6x5.
		w := r.Range(4, 6)
		h := r.Range(4, 5)
		x := r.Range(2, d.Width-w-3)
		y := r.Range(2, d.Height-h-3)

		// Футпринт плюс рамка должны быть сплошной стеной вне комнат.
		ok := true
		for yy := y - 1; yy <= y+h && ok; yy++ {
			for xx := x - 1; xx <= x+w && ok; xx++ {
				if !d.InBounds(xx, yy) || d.KindAt(xx, yy) != TileWall || inRoom[yy*d.Width+xx] {
					ok = false
				}
			}
		}
		if !ok {
			continue
		}

		// Ищем коридорный пол на расстоянии 2 от рамки (через одну стену).
		type doorSpot struct {
			door  Vec2i
			inner Vec2i
		}
		var spots []doorSpot
		for xx := x; xx < x+w; xx++ {
			if d.KindAt(xx, y-2) == TileFloor && !inRoom[(y-2)*d.Width+xx] {
				spots = append(spots, doorSpot{door: Vec2i{xx, y - 1}, inner: Vec2i{xx, y}})
			}
			if d.KindAt(xx, y+h+1) == TileFloor && !inRoom[(y+h+1)*d.Width+xx] {
				spots = append(spots, doorSpot{door: Vec2i{xx, y + h}, inner: Vec2i{xx, y + h - 1}})
			}
		}
		for yy := y; yy < y+h; yy++ {
			if d.KindAt(x-2, yy) == TileFloor && !inRoom[yy*d.Width+x-2] {
				spots = append(spots, doorSpot{door: Vec2i{x - 1, yy}, inner: Vec2i{x, yy}})
			}
			if d.KindAt(x+w+1, yy) == TileFloor && !inRoom[yy*d.Width+x+w+1] {
				spots = append(spots, doorSpot{door: Vec2i{x + w, yy}, inner: Vec2i{x + w - 1, yy}})
			}
		}
		if len(spots) == 0 {
			continue
		}

		spot := spots[r.Range(0, len(spots)-1)]

		kind := RoomSecret
		doorKind := TileDoorSecret
		if r.Chance(0.5) {
			kind = RoomVault
			doorKind = TileDoorLocked
		}

		d.carveRect(x, y, w, h, TileFloor)
		d.At(spot.door.X, spot.door.Y).Kind = doorKind
		d.carveFloor(spot.inner.X, spot.inner.Y)
		d.Rooms = append(d.Rooms, Room{X: x, Y: y, W: w, H: h, Kind: kind})

		// Хранилища обставляются через WFC-микропаттерн.
		if kind == RoomVault {
			d.furnishVaultWFC(r, Room{X: x, Y: y, W: w, H: h, Kind: kind}, spot.inner)
		}

		placed++
	}
}

// decorateRooms добавляет колонны в больших комнатах и редкие карманы-провалы.
// Только обычные комнаты; после каждого провала проверяется связность.
func (d *Dungeon) decorateRooms(r *rng.RNG, depth int) {
	for _, room := range d.Rooms {
		if room.Kind != RoomNormal {
			continue
		}

		// Колонны в просторных комнатах: углы внутреннего прямоугольника.
		if room.W >= 8 && room.H >= 6 && r.Chance(0.40) {
			for _, p := range [4]Vec2i{
				{room.X + 2, room.Y + 2},
				{room.X2() - 3, room.Y + 2},
				{room.X + 2, room.Y2() - 3},
				{room.X2() - 3, room.Y2() - 3},
			} {
				if d.KindAt(p.X, p.Y) == TileFloor {
					d.At(p.X, p.Y).Kind = TilePillar
					d.PillarCount++
				}
			}
		}

		// Редкий фонтан в центре средних комнат.
		if room.W >= 6 && room.H >= 5 && r.Chance(0.10) {
			cx, cy := room.CX(), room.CY()
			if d.KindAt(cx, cy) == TileFloor {
				d.At(cx, cy).Kind = TileFountain
			}
		}

		// Глубже - карман провала 2x2 с проверкой связности и откатом.
		if depth >= 5 && room.W >= 9 && room.H >= 7 && r.Chance(0.18) {
			px := r.Range(room.X+2, room.X2()-4)
			py := r.Range(room.Y+2, room.Y2()-4)

			var backup [4]TileKind
			coords := [4]Vec2i{{px, py}, {px + 1, py}, {px, py + 1}, {px + 1, py + 1}}
			okPocket := true
			for i, c := range coords {
				if d.KindAt(c.X, c.Y) != TileFloor {
					okPocket = false
					break
				}
				backup[i] = d.At(c.X, c.Y).Kind
				d.At(c.X, c.Y).Kind = TileChasm
			}
			if okPocket && !d.StairsConnected() {
				for i, c := range coords {
					d.At(c.X, c.Y).Kind = backup[i]
				}
			} else if okPocket {
				d.ChasmCount += 4
			}
		}
	}
}

// RandomFloor возвращает случайную проходимую клетку (для спавна).
func (d *Dungeon) RandomFloor(r *rng.RNG, avoidDoors bool) Vec2i {
	for tries := 0; tries < 4000; tries++ {
		x := r.Range(1, d.Width-2)
		y := r.Range(1, d.Height-2)
		t := d.KindAt(x, y)
		if t == TileFloor || isStairsKind(t) || (!avoidDoors && (t == TileDoorOpen || t == TileDoorClosed)) {
			return Vec2i{x, y}
		}
	}
	// Фолбэк: линейный скан.
	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			if d.KindAt(x, y) == TileFloor {
				return Vec2i{x, y}
			}
		}
	}
	return Vec2i{1, 1}
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
