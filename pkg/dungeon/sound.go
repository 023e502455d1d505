package dungeon

import "container/heap"

// Акустические стоимости: звук свободно идет по полу, глушится дверями и
// не проходит сквозь стены, колонны и потайные двери (те маскируются под
// стену и для звука).
const (
	soundCostFloor  = 1
	soundCostClosed = 2
	soundCostLocked = 3
)

// SoundPassable сообщает, проводит ли клетка звук.
func (d *Dungeon) SoundPassable(x, y int) bool {
	switch d.KindAt(x, y) {
	case TileWall, TilePillar, TileDoorSecret:
		return false
	default:
		return true
	}
}

// SoundTileCost возвращает акустическую стоимость входа в клетку.
func (d *Dungeon) SoundTileCost(x, y int) int {
	switch d.KindAt(x, y) {
	case TileDoorClosed:
		return soundCostClosed
	case TileDoorLocked:
		return soundCostLocked
	default:
		return soundCostFloor
	}
}

// SoundDiagonalOk запрещает диагональ, если оба ортогональных угла глухие:
// звук не просачивается сквозь сомкнутый угол стен.
func (d *Dungeon) SoundDiagonalOk(x, y, dx, dy int) bool {
	return d.SoundPassable(x+dx, y) || d.SoundPassable(x, y+dy)
}

type soundQueueItem struct {
	idx  int
	cost int
}

type soundQueue []soundQueueItem

func (q soundQueue) Len() int            { return len(q) }
func (q soundQueue) Less(i, j int) bool  { return q[i].cost < q[j].cost }
func (q soundQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *soundQueue) Push(v interface{}) { *q = append(*q, v.(soundQueueItem)) }
func (q *soundQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ComputeSoundMap строит карту акустической стоимости от источника методом
// Дейкстры (8 направлений). Клетки дороже maxCost и недостижимые помечаются -1.
// Громкость в клетке = maxCost - стоимость.
func (d *Dungeon) ComputeSoundMap(source Vec2i, maxCost int) []int {
	size := d.Width * d.Height
	dist := make([]int, size)
	for i := range dist {
		dist[i] = -1
	}
	if !d.InBounds(source.X, source.Y) || maxCost <= 0 {
		return dist
	}

	start := source.Y*d.Width + source.X
	dist[start] = 0

	q := &soundQueue{{idx: start, cost: 0}}
	heap.Init(q)

	for q.Len() > 0 {
		cur := heap.Pop(q).(soundQueueItem)
		if cur.cost > dist[cur.idx] {
			continue // устаревшая запись
		}

		x, y := cur.idx%d.Width, cur.idx/d.Width

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if !d.InBounds(nx, ny) || !d.SoundPassable(nx, ny) {
					continue
				}
				if dx != 0 && dy != 0 && !d.SoundDiagonalOk(x, y, dx, dy) {
					continue
				}

				nc := cur.cost + d.SoundTileCost(nx, ny)
				if nc > maxCost {
					continue
				}
				nidx := ny*d.Width + nx
				if dist[nidx] >= 0 && dist[nidx] <= nc {
					continue
				}
				dist[nidx] = nc
				heap.Push(q, soundQueueItem{idx: nidx, cost: nc})
			}
		}
	}
	return dist
}

// SoundLoudnessAt переводит карту стоимости в громкость в конкретной клетке.
// Возвращает 0, если звук туда не доходит.
func SoundLoudnessAt(dist []int, width int, p Vec2i, maxCost int) int {
	idx := p.Y*width + p.X
	if idx < 0 || idx >= len(dist) || dist[idx] < 0 {
		return 0
	}
	loud := maxCost - dist[idx]
	if loud < 0 {
		return 0
	}
	return loud
}
