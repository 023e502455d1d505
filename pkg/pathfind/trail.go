package pathfind

import (
	"container/heap"

	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/rng"
)

// TrailParams - параметры трассировщика троп.
//
// Поиск идет по расширенному состоянию (x, y, курс): повороты стоят
// TurnPenalty, развороты на 180 - UTurnPenalty, поэтому тропы выходят
// плавными, а не лесенкой. TileCost - полная стоимость входа в клетку
// (рельеф + склон + влажность, как решит вызывающий); стены должны быть
// дорогими, но конечными - тропа вправе прорубить перевал.
type TrailParams struct {
	TurnPenalty  int // штраф за поворот на 90 (6-9 по биому)
	UTurnPenalty int // штраф за разворот (16-20)
	MinStepCost  int // минимальная стоимость шага (для эвристики)
	JitterSeed   uint32
	TileCost     func(x, y int) int
	MaxNodes     int // 0 = без ограничения сверх w*h*4
}

type trailNode struct {
	state    int // (y*w+x)*4 + dir
	priority int
}

type trailQueue []trailNode

func (q trailQueue) Len() int            { return len(q) }
func (q trailQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q trailQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *trailQueue) Push(v interface{}) { *q = append(*q, v.(trailNode)) }
func (q *trailQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func isReverse(a, b int) bool {
	return (a == 0 && b == 1) || (a == 1 && b == 0) || (a == 2 && b == 3) || (a == 3 && b == 2)
}

// PlanTrail прокладывает тропу A*-ом с состоянием курса. Эвристика -
// манхэттен * MinStepCost (допустима). Детерминированный хэш-джиттер
// стоимости клетки разрывает равенства, чтобы тропы разных троп не слипались
// в одну прямую. При провале поиска возвращается жадное случайное блуждание
// к цели (r нужен только для этого фолбэка).
func PlanTrail(w, h int, from, to dungeon.Vec2i, p TrailParams, r *rng.RNG) []dungeon.Vec2i {
	if w <= 0 || h <= 0 ||
		from.X < 0 || from.Y < 0 || from.X >= w || from.Y >= h ||
		to.X < 0 || to.Y < 0 || to.X >= w || to.Y >= h {
		return nil
	}
	if from == to {
		return []dungeon.Vec2i{from}
	}

	minStep := p.MinStepCost
	if minStep < 1 {
		minStep = 1
	}
	maxNodes := p.MaxNodes
	if maxNodes <= 0 {
		maxNodes = w * h * 4
	}

	jitter := func(x, y int) int {
		return int(rng.HashCombine(p.JitterSeed, uint32(x), uint32(y)) % 3)
	}

	heur := func(x, y int) int {
		return (absInt(x-to.X) + absInt(y-to.Y)) * minStep
	}

	nStates := w * h * 4
	gScore := make([]int, nStates)
	cameFrom := make([]int, nStates)
	for i := range gScore {
		gScore[i] = -1
		cameFrom[i] = -1
	}

	q := &trailQueue{}

	// Старт без курса: четыре состояния с нулевой стоимостью.
	startBase := (from.Y*w + from.X) * 4
	for dir := 0; dir < 4; dir++ {
		gScore[startBase+dir] = 0
		heap.Push(q, trailNode{state: startBase + dir, priority: heur(from.X, from.Y)})
	}

	visited := 0
	goalState := -1

	for q.Len() > 0 && visited < maxNodes {
		cur := heap.Pop(q).(trailNode)
		cell := cur.state / 4
		dir := cur.state % 4
		x, y := cell%w, cell/w

		g := gScore[cur.state]
		if cur.priority > g+heur(x, y) {
			continue
		}
		visited++

		if x == to.X && y == to.Y {
			goalState = cur.state
			break
		}

		for nd := 0; nd < 4; nd++ {
			nx, ny := x+dirs4[nd].X, y+dirs4[nd].Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}

			step := p.TileCost(nx, ny)
			if step < minStep {
				step = minStep
			}
			step += jitter(nx, ny)

			if nd != dir {
				if isReverse(nd, dir) {
					step += p.UTurnPenalty
				} else {
					step += p.TurnPenalty
				}
			}

			ns := (ny*w+nx)*4 + nd
			ng := g + step
			if gScore[ns] >= 0 && gScore[ns] <= ng {
				continue
			}
			gScore[ns] = ng
			cameFrom[ns] = cur.state
			heap.Push(q, trailNode{state: ns, priority: ng + heur(nx, ny)})
		}
	}

	if goalState < 0 {
		return greedyWalk(w, h, from, to, r)
	}

	// Восстановление пути; дубли клеток (смена курса на месте) схлопываются.
	var rev []dungeon.Vec2i
	for s := goalState; s >= 0; s = cameFrom[s] {
		cell := s / 4
		pt := dungeon.Vec2i{X: cell % w, Y: cell / w}
		if len(rev) == 0 || rev[len(rev)-1] != pt {
			rev = append(rev, pt)
		}
	}
	path := make([]dungeon.Vec2i, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

// greedyWalk - фолбэк: смещенное случайное блуждание к цели. Гарантированно
// завершается бюджетом шагов; путь может не дойти до цели на патологиях.
func greedyWalk(w, h int, from, to dungeon.Vec2i, r *rng.RNG) []dungeon.Vec2i {
	path := []dungeon.Vec2i{from}
	p := from
	maxSteps := (w + h) * 4

	for i := 0; i < maxSteps; i++ {
		if p == to {
			break
		}
		dx, dy := to.X-p.X, to.Y-p.Y

		stepX := false
		switch {
		case dx == 0:
			stepX = false
		case dy == 0:
			stepX = true
		default:
			stepX = absInt(dx) >= absInt(dy)
			if r != nil && r.Chance(0.18) {
				stepX = !stepX
			}
		}

		n := p
		if stepX {
			if dx > 0 {
				n.X++
			} else {
				n.X--
			}
		} else {
			if dy > 0 {
				n.Y++
			} else {
				n.Y--
			}
		}
		if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
			break
		}
		p = n
		path = append(path, p)
	}
	return path
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
