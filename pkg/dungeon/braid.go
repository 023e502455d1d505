package dungeon

import "deepdelve-server/pkg/rng"

// Интенсивность плетения коридоров.
type BraidStyle uint8

const (
	BraidOff BraidStyle = iota
	BraidSparse
	BraidModerate
	BraidHeavy
)

// BraidResult - телеметрия прохода плетения.
type BraidResult struct {
	DeadEndsBefore int
	DeadEndsAfter  int
	TunnelsCarved  int
	TilesCarved    int
	RolledBack     bool
}

type braidParams struct {
	chance      float64 // шанс заплести конкретный тупик
	maxLen      int     // потолок длины прорубаемого тоннеля
	budgetScale float64 // множитель бюджета тоннелей
}

func braidParamsFor(style BraidStyle) braidParams {
	switch style {
	case BraidSparse:
		return braidParams{chance: 0.22, maxLen: 6, budgetScale: 0.7}
	case BraidHeavy:
		return braidParams{chance: 0.60, maxLen: 10, budgetScale: 1.4}
	default:
		return braidParams{chance: 0.38, maxLen: 8, budgetScale: 1.0}
	}
}

// ApplyCorridorBraiding снижает долю тупиков: от коридорного тупика BFS-ом по
// сплошной стене ищется другой коридорный пол неподалеку, и найденный путь
// прорубается. Копать нельзя возле лестниц (манхэттен <= 3), дверей (радиус 1
// по Чебышеву), провалов и вплотную к комнатам: тоннели живут в сплошном камне
// между коридорами. Шанс растет с глубиной (+0.015 за уровень ниже третьего,
// зажат в [0.10, 0.80]); бюджет тоннелей - max(4, area/650) с масштабом стиля,
// зажатый в [3, 28]. Весь проход атомарен: если связность лестниц потеряна,
// все правки откатываются.
func ApplyCorridorBraiding(d *Dungeon, r *rng.RNG, depth int, style BraidStyle) BraidResult {
	var res BraidResult
	if style == BraidOff {
		return res
	}

	p := braidParamsFor(style)
	chance := p.chance + 0.015*float64(clampInt(depth-3, 0, 12))
	if chance < 0.10 {
		chance = 0.10
	}
	if chance > 0.80 {
		chance = 0.80
	}

	area := d.Width * d.Height
	budget := maxInt(4, area/650)
	budget = clampInt(int(float64(budget)*p.budgetScale+0.5), 3, 28)

	inRoom := d.roomMask()

	snapshot := make([]TileKind, len(d.Tiles))
	for i, t := range d.Tiles {
		snapshot[i] = t.Kind
	}

	// Коридорные тупики (ровно один проходимый сосед) в случайном порядке.
	deadEnds := make([]Vec2i, 0, area/20)
	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			if !d.isCorridorFloor(x, y, inRoom) {
				continue
			}
			if d.passableDegree4(x, y) == 1 {
				deadEnds = append(deadEnds, Vec2i{x, y})
			}
		}
	}
	res.DeadEndsBefore = len(deadEnds)

	for i := len(deadEnds) - 1; i > 0; i-- {
		j := r.Range(0, i)
		deadEnds[i], deadEnds[j] = deadEnds[j], deadEnds[i]
	}

	for _, de := range deadEnds {
		if res.TunnelsCarved >= budget {
			break
		}
		// Тупик мог исчезнуть, пока плелись соседние.
		if !d.isCorridorFloor(de.X, de.Y, inRoom) || d.passableDegree4(de.X, de.Y) != 1 {
			continue
		}
		if !r.Chance(chance) {
			continue
		}
		if carved, ok := d.carveBraidTunnel(de, inRoom, p.maxLen, r); ok {
			res.TunnelsCarved++
			res.TilesCarved += carved
		}
	}

	// Пересчет тупиков после прохода.
	for y := 1; y < d.Height-1; y++ {
		for x := 1; x < d.Width-1; x++ {
			if d.isCorridorFloor(x, y, inRoom) && d.passableDegree4(x, y) == 1 {
				res.DeadEndsAfter++
			}
		}
	}

	if !d.StairsConnected() {
		for i := range d.Tiles {
			d.Tiles[i].Kind = snapshot[i]
		}
		return BraidResult{DeadEndsBefore: res.DeadEndsBefore, DeadEndsAfter: res.DeadEndsBefore, RolledBack: true}
	}
	return res
}

// isCorridorFloor - внутренний пол вне комнат, не ближе 3 (манхэттен) к
// лестницам, без дверей в окрестности Чебышева 1 и без провалов по соседству.
func (d *Dungeon) isCorridorFloor(x, y int, inRoom []bool) bool {
	if x <= 0 || y <= 0 || x >= d.Width-1 || y >= d.Height-1 {
		return false
	}
	if inRoom[y*d.Width+x] {
		return false
	}
	if d.KindAt(x, y) != TileFloor {
		return false
	}
	if d.nearStairs(x, y, 3) || d.anyDoorInRadius(x, y, 1) || d.adjacentToChasm(x, y) {
		return false
	}
	return true
}

// isDigWallOk - стена, которую можно прорубить: те же запреты, что у
// isCorridorFloor, плюс двойная рамка и запрет копать вплотную к комнатам.
func (d *Dungeon) isDigWallOk(x, y int, inRoom []bool) bool {
	if x <= 1 || y <= 1 || x >= d.Width-2 || y >= d.Height-2 {
		return false
	}
	if inRoom[y*d.Width+x] {
		return false
	}
	if d.KindAt(x, y) != TileWall {
		return false
	}
	if d.nearStairs(x, y, 3) || d.anyDoorInRadius(x, y, 1) || d.adjacentToChasm(x, y) {
		return false
	}
	for _, dv := range dirs4 {
		nx, ny := x+dv.X, y+dv.Y
		if d.InBounds(nx, ny) && inRoom[ny*d.Width+nx] {
			return false
		}
	}
	return true
}

func (d *Dungeon) nearStairs(x, y, dist int) bool {
	p := Vec2i{x, y}
	if d.InBounds(d.StairsUp.X, d.StairsUp.Y) && p.Manhattan(d.StairsUp) <= dist {
		return true
	}
	if d.InBounds(d.StairsDown.X, d.StairsDown.Y) && p.Manhattan(d.StairsDown) <= dist {
		return true
	}
	return false
}

func (d *Dungeon) anyDoorInRadius(x, y, radius int) bool {
	for oy := -radius; oy <= radius; oy++ {
		for ox := -radius; ox <= radius; ox++ {
			nx, ny := x+ox, y+oy
			if d.InBounds(nx, ny) && isDoorKind(d.KindAt(nx, ny)) {
				return true
			}
		}
	}
	return false
}

func (d *Dungeon) adjacentToChasm(x, y int) bool {
	for _, dv := range dirs4 {
		nx, ny := x+dv.X, y+dv.Y
		if d.InBounds(nx, ny) && d.KindAt(nx, ny) == TileChasm {
			return true
		}
	}
	return false
}

// carveBraidTunnel ищет BFS-ом по пригодным стенам путь от тупика de до
// другого коридорного пола в пределах maxLen шагов и прорубает его целиком.
// Возвращает число прорубленных клеток. Поиск идет от трех соседей тупика
// (кроме "спины" - единственного проходимого соседа); порядок обхода
// перемешивается на каждый тупик.
func (d *Dungeon) carveBraidTunnel(de Vec2i, inRoom []bool, maxLen int, r *rng.RNG) (int, bool) {
	var back Vec2i
	for _, dv := range dirs4 {
		if d.IsPassable(de.X+dv.X, de.Y+dv.Y) {
			back = dv
			break
		}
	}
	backTile := Vec2i{de.X + back.X, de.Y + back.Y}

	idx := func(x, y int) int { return y*d.Width + x }
	parent := make([]int, d.Width*d.Height)
	for i := range parent {
		parent[i] = -1
	}

	ord := [4]int{0, 1, 2, 3}
	for i := 3; i > 0; i-- {
		j := r.Range(0, i)
		ord[i], ord[j] = ord[j], ord[i]
	}

	type node struct {
		x, y, dist int
	}
	queue := make([]node, 0, 64)
	for _, dv := range dirs4 {
		if dv == back {
			continue
		}
		sx, sy := de.X+dv.X, de.Y+dv.Y
		if !d.isDigWallOk(sx, sy, inRoom) || parent[idx(sx, sy)] != -1 {
			continue
		}
		parent[idx(sx, sy)] = idx(sx, sy) // корень ссылается на себя
		queue = append(queue, node{sx, sy, 1})
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.dist > maxLen || !d.isDigWallOk(n.x, n.y, inRoom) {
			continue
		}

		// Стена по соседству с чужим коридорным полом - выход найден.
		for _, dv := range dirs4 {
			tx, ty := n.x+dv.X, n.y+dv.Y
			if (tx == de.X && ty == de.Y) || (tx == backTile.X && ty == backTile.Y) {
				continue
			}
			if d.isCorridorFloor(tx, ty, inRoom) {
				return d.carveParentPath(idx(n.x, n.y), parent), true
			}
		}

		if n.dist == maxLen {
			continue
		}
		for _, oi := range ord {
			dv := dirs4[oi]
			nx, ny := n.x+dv.X, n.y+dv.Y
			if !d.isDigWallOk(nx, ny, inRoom) || parent[idx(nx, ny)] != -1 {
				continue
			}
			parent[idx(nx, ny)] = idx(n.x, n.y)
			queue = append(queue, node{nx, ny, n.dist + 1})
		}
	}
	return 0, false
}

// carveParentPath прорубает стены вдоль цепочки parent от end до корня
// (клетка, ссылающаяся на себя), включая сам корень.
func (d *Dungeon) carveParentPath(end int, parent []int) int {
	carved := 0
	cur := end
	for guard := 0; guard < len(parent); guard++ {
		x, y := cur%d.Width, cur/d.Width
		if d.KindAt(x, y) == TileWall {
			d.At(x, y).Kind = TileFloor
			carved++
		}
		if parent[cur] == cur {
			break
		}
		cur = parent[cur]
	}
	return carved
}
