// Package wfc - минимальный детерминированный солвер Wave Function Collapse
// для маленьких сеток (обстановка комнат, микропаттерны процгена).
//
//   - Домены хранятся 32-битными масками (не больше 32 тайлов).
//   - Правила задаются per-tile, per-direction масками разрешенных соседей.
//   - Коллапс жадный по минимальной энтропии + распространение ограничений.
//   - На противоречии солвер перезапускается с исходных доменов.
package wfc

import (
	"math/bits"

	"deepdelve-server/pkg/rng"
)

// SolveStats - телеметрия решения (best-effort, не сериализуется).
type SolveStats struct {
	Restarts       int
	Contradictions int

	Decisions    int // успешные ветвления (коллапсы клеток)
	Backtracks   int // сколько раз решение было отменено
	MaxDepth     int // максимальная глубина рекурсии
	NodesVisited int // посещено узлов DFS (ограничено бюджетом)
}

// Направления соседей: 0=+X, 1=-X, 2=+Y, 3=-Y.
var (
	wfcDx = [4]int{1, -1, 0, 0}
	wfcDy = [4]int{0, 0, 1, -1}
)

func allMask(nTiles int) uint32 {
	if nTiles <= 0 {
		return 0
	}
	if nTiles >= 32 {
		return 0xFFFFFFFF
	}
	return (1 << uint32(nTiles)) - 1
}

// pickWeightedFromMask выбирает тайл из маски с учетом весов; вырожденные
// веса откатываются на равномерный выбор.
func pickWeightedFromMask(mask uint32, weights []float64, r *rng.RNG) int {
	if mask == 0 {
		return -1
	}

	total := 0.0
	for m := mask; m != 0; m &= m - 1 {
		t := bits.TrailingZeros32(m)
		if t < len(weights) && weights[t] > 0 {
			total += weights[t]
		}
	}

	if !(total > 0) {
		n := bits.OnesCount32(mask)
		pick := r.Range(0, maxInt(0, n-1))
		k := 0
		for m := mask; m != 0; m &= m - 1 {
			t := bits.TrailingZeros32(m)
			if k == pick {
				return t
			}
			k++
		}
		return bits.TrailingZeros32(mask)
	}

	rv := r.Next01() * total
	last := -1
	for m := mask; m != 0; m &= m - 1 {
		t := bits.TrailingZeros32(m)
		last = t
		w := 1.0
		if t < len(weights) {
			w = weights[t]
			if w < 0 {
				w = 0
			}
		}
		rv -= w
		if rv <= 0 {
			return t
		}
	}
	return last
}

// unionAllowed объединяет маски разрешенных соседей по всем тайлам домена.
func unionAllowed(domain uint32, allowForDir []uint32) uint32 {
	var out uint32
	for m := domain; m != 0; m &= m - 1 {
		t := bits.TrailingZeros32(m)
		if t < len(allowForDir) {
			out |= allowForDir[t]
		}
	}
	return out
}

// Solve решает задачу WFC на сетке w*h.
//
// allow[dir][tile] - маска тайлов, разрешенных в соседней клетке в
// направлении dir. initialDomains либо пуст ("все тайлы везде"), либо
// ровно w*h. outTiles получает id тайла на клетку.
//
// Солвер нарочно продвигает RNG вызывающего ровно на один вызов за попытку
// (остальные броски идут из локального потока, посеянного от этого вызова):
// изменение сложности ограничений или поведения бэктрекинга не возмущает
// несвязанные шаги процгена после WFC.
func Solve(w, h, nTiles int, allow [4][]uint32, weights []float64, r *rng.RNG,
	initialDomains []uint32, maxRestarts int, outStats *SolveStats) ([]uint8, bool) {

	if w <= 0 || h <= 0 || nTiles <= 0 || nTiles > 32 {
		return nil, false
	}
	n := w * h

	for dir := 0; dir < 4; dir++ {
		if len(allow[dir]) != nTiles {
			return nil, false
		}
	}

	fullMask := allMask(nTiles)
	if len(initialDomains) != 0 && len(initialDomains) != n {
		return nil, false
	}

	dom := make([]uint32, n)
	q := make([]int, 0, n)

	inBounds := func(x, y int) bool { return x >= 0 && y >= 0 && x < w && y < h }

	// propagate возвращает false при противоречии.
	propagate := func() bool {
		head := 0
		for head < len(q) {
			cur := q[head]
			head++
			if cur < 0 || cur >= n {
				continue
			}

			cx, cy := cur%w, cur/w
			curDom := dom[cur]
			if curDom == 0 {
				return false
			}

			for dir := 0; dir < 4; dir++ {
				nx, ny := cx+wfcDx[dir], cy+wfcDy[dir]
				if !inBounds(nx, ny) {
					continue
				}
				ni := ny*w + nx
				allowed := unionAllowed(curDom, allow[dir])
				oldDom := dom[ni]
				newDom := oldDom & allowed
				if newDom == 0 {
					return false
				}
				if newDom != oldDom {
					dom[ni] = newDom
					q = append(q, ni)
				}
			}
		}
		return true
	}

	restartCap := maxInt(0, maxRestarts)
	contradictions := 0

	for attempt := 0; attempt <= restartCap; attempt++ {
		// Детерминированный поток RNG на попытку.
		attemptSeed := rng.HashCombine(r.NextU32(), rng.Tag32("WFC_SOLVE"))
		local := rng.New(attemptSeed)

		if len(initialDomains) == 0 {
			for i := range dom {
				dom[i] = fullMask
			}
		} else {
			copy(dom, initialDomains)
		}

		// Старт распространения со всех предограниченных клеток.
		q = q[:0]
		failed := false
		for i := 0; i < n; i++ {
			if dom[i] == 0 {
				contradictions++
				failed = true
				break
			}
			if dom[i] != fullMask {
				q = append(q, i)
			}
		}
		if failed {
			continue
		}
		if !propagate() {
			contradictions++
			continue
		}

		decisions := 0
		backtracks := 0
		maxDepth := 0
		nodesVisited := 0

		// Бюджет узлов защищает от экспоненциального взрыва на плохих правилах.
		nodeBudget := int64(w) * int64(h) * 8192
		maxNodes := int(clampI64(nodeBudget, 2048, 2000000))

		var dfs func(depth int) bool
		dfs = func(depth int) bool {
			nodesVisited++
			if nodesVisited > maxNodes {
				return false
			}
			if depth > maxDepth {
				maxDepth = depth
			}

			// Несколлапснутая клетка с минимальной энтропией; равенства
			// разрешаются резервуарным выбором из локального потока.
			bestEntropy := int(^uint(0) >> 1)
			pickCell := -1
			pickCount := 0
			for i := 0; i < n; i++ {
				e := bits.OnesCount32(dom[i])
				if e <= 1 {
					continue
				}
				if e < bestEntropy {
					bestEntropy = e
					pickCell = i
					pickCount = 1
				} else if e == bestEntropy {
					pickCount++
					if local.Range(0, pickCount-1) == 0 {
						pickCell = i
					}
				}
			}

			if pickCell < 0 {
				return true // все клетки схлопнуты
			}

			cellMask := dom[pickCell]
			if cellMask == 0 {
				return false
			}

			// Взвешенно-случайный порядок вариантов для этого решения.
			options := make([]int, 0, bits.OnesCount32(cellMask))
			remaining := cellMask
			for remaining != 0 {
				choice := pickWeightedFromMask(remaining, weights, local)
				if choice < 0 || choice >= nTiles {
					choice = bits.TrailingZeros32(remaining)
				}
				options = append(options, choice)
				remaining &^= 1 << uint32(choice)
			}

			baseDom := make([]uint32, n)
			copy(baseDom, dom)

			for _, choice := range options {
				copy(dom, baseDom)
				dom[pickCell] = 1 << uint32(choice)
				q = q[:0]
				q = append(q, pickCell)

				if !propagate() {
					contradictions++
					continue
				}

				decisions++
				if dfs(depth + 1) {
					return true
				}
				backtracks++
			}

			copy(dom, baseDom)
			return false
		}

		if dfs(0) {
			out := make([]uint8, n)
			for i := 0; i < n; i++ {
				t := bits.TrailingZeros32(dom[i])
				if t >= 32 {
					t = 0
				}
				out[i] = uint8(t)
			}
			if outStats != nil {
				outStats.Restarts = attempt
				outStats.Contradictions = contradictions
				outStats.Decisions = decisions
				outStats.Backtracks = backtracks
				outStats.MaxDepth = maxDepth
				outStats.NodesVisited = nodesVisited
			}
			return out, true
		}

		// Полный провал DFS считается рестартом по противоречию.
		contradictions++
	}

	if outStats != nil {
		*outStats = SolveStats{Restarts: restartCap, Contradictions: contradictions}
	}
	return nil, false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampI64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
