// Package pathfind - поисковые алгоритмы по сетке, общие для подземелья и
// надземного мира: Дейкстра с колбэками стоимости и трассировщик троп на A*
// с состоянием курса.
package pathfind

import (
	"container/heap"

	"deepdelve-server/pkg/dungeon"
)

var dirs4 = [4]dungeon.Vec2i{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

type pqItem struct {
	idx      int
	priority int
}

type priorityQueue []pqItem

func (q priorityQueue) Len() int            { return len(q) }
func (q priorityQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q priorityQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue) Push(v interface{}) { *q = append(*q, v.(pqItem)) }
func (q *priorityQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// DistanceMap строит карту стоимостей Дейкстрой по 4 направлениям от
// нескольких источников. stepCost - стоимость входа в клетку (>=1);
// недостижимые и дороже maxCost клетки помечаются -1. maxCost < 0 снимает
// потолок.
func DistanceMap(w, h int, sources []dungeon.Vec2i,
	passable func(x, y int) bool, stepCost func(x, y int) int, maxCost int) []int {

	dist := make([]int, w*h)
	for i := range dist {
		dist[i] = -1
	}
	if w <= 0 || h <= 0 {
		return dist
	}

	q := &priorityQueue{}
	for _, s := range sources {
		if s.X < 0 || s.Y < 0 || s.X >= w || s.Y >= h || !passable(s.X, s.Y) {
			continue
		}
		idx := s.Y*w + s.X
		dist[idx] = 0
		heap.Push(q, pqItem{idx: idx, priority: 0})
	}

	for q.Len() > 0 {
		cur := heap.Pop(q).(pqItem)
		if cur.priority > dist[cur.idx] {
			continue
		}

		x, y := cur.idx%w, cur.idx/w
		for _, dv := range dirs4 {
			nx, ny := x+dv.X, y+dv.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h || !passable(nx, ny) {
				continue
			}
			sc := stepCost(nx, ny)
			if sc < 1 {
				sc = 1
			}
			nc := cur.priority + sc
			if maxCost >= 0 && nc > maxCost {
				continue
			}
			nidx := ny*w + nx
			if dist[nidx] >= 0 && dist[nidx] <= nc {
				continue
			}
			dist[nidx] = nc
			heap.Push(q, pqItem{idx: nidx, priority: nc})
		}
	}
	return dist
}

// CostToNearest возвращает стоимость пути от start до ближайшей клетки,
// удовлетворяющей goal, и саму клетку. ok=false, если цель недостижима.
func CostToNearest(w, h int, start dungeon.Vec2i,
	passable func(x, y int) bool, stepCost func(x, y int) int,
	goal func(x, y int) bool) (dungeon.Vec2i, int, bool) {

	if start.X < 0 || start.Y < 0 || start.X >= w || start.Y >= h {
		return dungeon.Vec2i{}, -1, false
	}
	if goal(start.X, start.Y) {
		return start, 0, true
	}

	dist := make([]int, w*h)
	for i := range dist {
		dist[i] = -1
	}
	startIdx := start.Y*w + start.X
	dist[startIdx] = 0

	q := &priorityQueue{{idx: startIdx, priority: 0}}
	heap.Init(q)

	for q.Len() > 0 {
		cur := heap.Pop(q).(pqItem)
		if cur.priority > dist[cur.idx] {
			continue
		}

		x, y := cur.idx%w, cur.idx/w
		if goal(x, y) {
			return dungeon.Vec2i{X: x, Y: y}, cur.priority, true
		}

		for _, dv := range dirs4 {
			nx, ny := x+dv.X, y+dv.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h || !passable(nx, ny) {
				continue
			}
			sc := stepCost(nx, ny)
			if sc < 1 {
				sc = 1
			}
			nc := cur.priority + sc
			nidx := ny*w + nx
			if dist[nidx] >= 0 && dist[nidx] <= nc {
				continue
			}
			dist[nidx] = nc
			heap.Push(q, pqItem{idx: nidx, priority: nc})
		}
	}
	return dungeon.Vec2i{}, -1, false
}
