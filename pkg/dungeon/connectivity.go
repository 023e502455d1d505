package dungeon

var dirs4 = [4]Vec2i{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// BFSDistanceMap строит карту расстояний (в шагах) от точки start по
// 4-связности через проходимые клетки. Недостижимые клетки = -1.
func (d *Dungeon) BFSDistanceMap(start Vec2i) []int {
	dist := make([]int, d.Width*d.Height)
	for i := range dist {
		dist[i] = -1
	}
	if !d.InBounds(start.X, start.Y) {
		return dist
	}

	idx := func(x, y int) int { return y*d.Width + x }
	dist[idx(start.X, start.Y)] = 0

	queue := make([]Vec2i, 0, d.Width*d.Height/4)
	queue = append(queue, start)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		cd := dist[idx(p.X, p.Y)]

		for _, dv := range dirs4 {
			nx, ny := p.X+dv.X, p.Y+dv.Y
			if !d.InBounds(nx, ny) || !d.IsPassable(nx, ny) {
				continue
			}
			if dist[idx(nx, ny)] != -1 {
				continue
			}
			dist[idx(nx, ny)] = cd + 1
			queue = append(queue, Vec2i{nx, ny})
		}
	}

	return dist
}

// StairsConnected проверяет инвариант связности лестниц.
//
// Для валидатора дверь в ЛЮБОМ состоянии проходима - запертые отпирают,
// секретные находят. Этаж, где спуск лежит за запертой дверью (логово
// лабиринта), связен; непроходимы только стены, провалы и прочий рельеф.
//
// Если какая-то из лестниц вне карты (санктум без спуска), инвариант
// считается выполненным.
func (d *Dungeon) StairsConnected() bool {
	if !d.InBounds(d.StairsUp.X, d.StairsUp.Y) {
		return true
	}
	if !d.InBounds(d.StairsDown.X, d.StairsDown.Y) {
		return true
	}
	if d.StairsUp == d.StairsDown {
		return true
	}

	dist := d.bfsDistanceEventually(d.StairsUp)
	return dist[d.StairsDown.Y*d.Width+d.StairsDown.X] >= 0
}

// bfsDistanceEventually - та же карта расстояний, но двери в любом состоянии
// проходимы. Используется валидатором связности и расстановкой святилища.
func (d *Dungeon) bfsDistanceEventually(start Vec2i) []int {
	dist := make([]int, d.Width*d.Height)
	for i := range dist {
		dist[i] = -1
	}
	if !d.InBounds(start.X, start.Y) {
		return dist
	}

	idx := func(x, y int) int { return y*d.Width + x }
	dist[idx(start.X, start.Y)] = 0

	queue := make([]Vec2i, 0, d.Width*d.Height/4)
	queue = append(queue, start)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		cd := dist[idx(p.X, p.Y)]

		for _, dv := range dirs4 {
			nx, ny := p.X+dv.X, p.Y+dv.Y
			if !d.InBounds(nx, ny) || !d.isTraversableEventually(nx, ny) {
				continue
			}
			if dist[idx(nx, ny)] != -1 {
				continue
			}
			dist[idx(nx, ny)] = cd + 1
			queue = append(queue, Vec2i{nx, ny})
		}
	}

	return dist
}

// farthestPassable возвращает проходимую клетку с максимальным BFS-расстоянием
// от start (среди равных - случайная, через reservoir sampling c tieBreak).
func (d *Dungeon) farthestPassable(start Vec2i, tieBreak func(count int) bool) (Vec2i, int) {
	dist := d.BFSDistanceMap(start)
	best := Vec2i{-1, -1}
	bestDist := -1
	ties := 0

	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			dd := dist[y*d.Width+x]
			if dd < 0 {
				continue
			}
			if dd > bestDist {
				bestDist = dd
				best = Vec2i{x, y}
				ties = 1
			} else if dd == bestDist && tieBreak != nil {
				ties++
				if tieBreak(ties) {
					best = Vec2i{x, y}
				}
			}
		}
	}

	return best, bestDist
}

// passableDegree4 возвращает число проходимых соседей по 4-связности.
func (d *Dungeon) passableDegree4(x, y int) int {
	deg := 0
	for _, dv := range dirs4 {
		if d.IsPassable(x+dv.X, y+dv.Y) {
			deg++
		}
	}
	return deg
}
