package pathfind

import (
	"testing"

	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/rng"
)

func openGrid(int, int) bool { return true }
func unitCost(int, int) int  { return 1 }
func flatTrail(int, int) int { return 2 }

func TestDistanceMap_Basic(t *testing.T) {
	dist := DistanceMap(10, 10, []dungeon.Vec2i{{X: 0, Y: 0}}, openGrid, unitCost, -1)
	if dist[0] != 0 {
		t.Fatalf("source distance = %d", dist[0])
	}
	if dist[9*10+9] != 18 {
		t.Errorf("far corner = %d, expected 18", dist[9*10+9])
	}
}

func TestDistanceMap_MultiSource(t *testing.T) {
	sources := []dungeon.Vec2i{{X: 0, Y: 5}, {X: 9, Y: 5}}
	dist := DistanceMap(10, 11, sources, openGrid, unitCost, -1)
	// Середина равноудалена от обоих источников.
	if dist[5*10+4] != 4 {
		t.Errorf("midpoint = %d, expected 4 (nearest source)", dist[5*10+4])
	}
}

func TestDistanceMap_ImpassableAndCap(t *testing.T) {
	wallAtX5 := func(x, y int) bool { return x != 5 }
	dist := DistanceMap(11, 3, []dungeon.Vec2i{{X: 0, Y: 1}}, wallAtX5, unitCost, -1)
	if dist[1*11+5] != -1 {
		t.Error("wall column must stay unreached")
	}
	if dist[1*11+7] != -1 {
		t.Error("area behind a full wall must stay unreached")
	}

	capped := DistanceMap(11, 3, []dungeon.Vec2i{{X: 0, Y: 1}}, openGrid, unitCost, 2)
	if capped[1*11+3] != -1 {
		t.Error("tile beyond maxCost must stay unreached")
	}
	if capped[1*11+2] != 2 {
		t.Errorf("tile at maxCost = %d, expected 2", capped[1*11+2])
	}
}

func TestCostToNearest(t *testing.T) {
	goal := func(x, y int) bool { return x == 7 && y == 2 }
	p, cost, ok := CostToNearest(10, 5, dungeon.Vec2i{X: 1, Y: 2}, openGrid, unitCost, goal)
	if !ok {
		t.Fatal("goal not found on an open grid")
	}
	if p != (dungeon.Vec2i{X: 7, Y: 2}) || cost != 6 {
		t.Errorf("got %v cost %d, expected (7,2) cost 6", p, cost)
	}

	_, _, ok = CostToNearest(10, 5, dungeon.Vec2i{X: 1, Y: 2}, openGrid, unitCost,
		func(int, int) bool { return false })
	if ok {
		t.Error("missing goal must report failure")
	}
}

func trailParams(seed uint32) TrailParams {
	return TrailParams{
		TurnPenalty:  7,
		UTurnPenalty: 18,
		MinStepCost:  2,
		JitterSeed:   seed,
		TileCost:     flatTrail,
	}
}

func TestPlanTrail_ReachesTarget(t *testing.T) {
	from := dungeon.Vec2i{X: 2, Y: 2}
	to := dungeon.Vec2i{X: 27, Y: 17}
	path := PlanTrail(30, 20, from, to, trailParams(1), rng.New(1))
	if len(path) == 0 {
		t.Fatal("empty path on an open grid")
	}
	if path[len(path)-1] != to {
		t.Errorf("path ends at %v, expected %v", path[len(path)-1], to)
	}
	// Соседние точки пути отличаются ровно на один шаг по стороне.
	for i := 1; i < len(path); i++ {
		dx := absInt(path[i].X - path[i-1].X)
		dy := absInt(path[i].Y - path[i-1].Y)
		if dx+dy != 1 {
			t.Fatalf("non-cardinal step %v -> %v", path[i-1], path[i])
		}
	}
}

func TestPlanTrail_TurnPenaltyStraightens(t *testing.T) {
	// При дорогих поворотах путь по диагонали должен держать курс
	// длинными прямыми, а не лесенкой из единичных шагов.
	from := dungeon.Vec2i{X: 1, Y: 1}
	to := dungeon.Vec2i{X: 24, Y: 24}
	path := PlanTrail(26, 26, from, to, trailParams(3), rng.New(3))
	if len(path) == 0 || path[len(path)-1] != to {
		t.Fatal("trail did not reach the target")
	}

	turns := 0
	for i := 2; i < len(path); i++ {
		d1 := dungeon.Vec2i{X: path[i-1].X - path[i-2].X, Y: path[i-1].Y - path[i-2].Y}
		d2 := dungeon.Vec2i{X: path[i].X - path[i-1].X, Y: path[i].Y - path[i-1].Y}
		if d1 != d2 {
			turns++
		}
	}
	// Лесенка дала бы ~46 поворотов; курс-штраф должен резко уменьшить их.
	if turns > 12 {
		t.Errorf("too many turns for a heading-penalized trail: %d", turns)
	}
}

func TestPlanTrail_AvoidsExpensiveTiles(t *testing.T) {
	// Дорогая полоса по x=5 с дешевым разрывом на y=8.
	cost := func(x, y int) int {
		if x == 5 && y != 8 {
			return 200
		}
		return 2
	}
	p := trailParams(9)
	p.TileCost = cost

	path := PlanTrail(12, 12, dungeon.Vec2i{X: 1, Y: 1}, dungeon.Vec2i{X: 10, Y: 1}, p, rng.New(9))
	if len(path) == 0 {
		t.Fatal("no path found")
	}
	for _, pt := range path {
		if pt.X == 5 && pt.Y != 8 {
			t.Fatalf("trail crossed the expensive band at %v", pt)
		}
	}
}

func TestPlanTrail_Deterministic(t *testing.T) {
	from := dungeon.Vec2i{X: 0, Y: 0}
	to := dungeon.Vec2i{X: 19, Y: 19}
	a := PlanTrail(20, 20, from, to, trailParams(5), rng.New(5))
	b := PlanTrail(20, 20, from, to, trailParams(5), rng.New(5))
	if len(a) != len(b) {
		t.Fatalf("path lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("paths diverge at step %d", i)
		}
	}
}

func TestPlanTrail_DegenerateInputs(t *testing.T) {
	p := trailParams(1)
	if got := PlanTrail(10, 10, dungeon.Vec2i{X: 3, Y: 3}, dungeon.Vec2i{X: 3, Y: 3}, p, rng.New(1)); len(got) != 1 {
		t.Errorf("from==to must return the single point, got %v", got)
	}
	if got := PlanTrail(10, 10, dungeon.Vec2i{X: -1, Y: 0}, dungeon.Vec2i{X: 3, Y: 3}, p, rng.New(1)); got != nil {
		t.Error("out-of-bounds start must return nil")
	}
}

func TestPlanTrail_FallbackWalk(t *testing.T) {
	// Нулевой бюджет узлов: A* не успевает, обязан сработать жадный фолбэк.
	p := trailParams(2)
	p.MaxNodes = 1
	path := PlanTrail(15, 15, dungeon.Vec2i{X: 1, Y: 1}, dungeon.Vec2i{X: 13, Y: 13}, p, rng.New(77))
	if len(path) == 0 {
		t.Fatal("fallback walk returned nothing")
	}
	if path[len(path)-1] != (dungeon.Vec2i{X: 13, Y: 13}) {
		t.Error("fallback walk must still end at the target")
	}
}
