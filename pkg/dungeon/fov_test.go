package dungeon

import (
	"testing"

	"deepdelve-server/pkg/rng"
)

func openArena(w, h int) *Dungeon {
	d := New(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			d.At(x, y).Kind = TileFloor
		}
	}
	return d
}

func TestFov_OriginAlwaysVisible(t *testing.T) {
	d := openArena(21, 21)
	d.ComputeFov(Vec2i{X: 10, Y: 10}, 0)
	if !d.At(10, 10).Visible {
		t.Fatal("origin must be visible even with radius 0")
	}
}

func TestFov_OpenRoomRadius(t *testing.T) {
	d := openArena(31, 31)
	o := Vec2i{X: 15, Y: 15}
	d.ComputeFov(o, 6)

	// В открытом зале видимость ограничена только радиусом.
	if !d.At(15, 9).Visible || !d.At(21, 15).Visible {
		t.Error("tiles at the cardinal edge of the radius must be visible")
	}
	if d.At(15, 7).Visible {
		t.Error("tile beyond the radius must not be visible")
	}
}

func TestFov_ExactRadiusVisible(t *testing.T) {
	d := openArena(31, 31)
	d.ComputeFov(Vec2i{X: 15, Y: 15}, 5)

	// (3,4): ровно на радиусе (9+16=25).
	if !d.At(18, 19).Visible {
		t.Error("tile exactly at the radius must be visible")
	}
	if !d.At(15, 20).Visible || !d.At(10, 15).Visible {
		t.Error("cardinal tiles exactly at the radius must be visible")
	}
	// (4,4): сразу за радиусом (32>25).
	if d.At(19, 19).Visible {
		t.Error("tile just beyond the radius must not be visible")
	}
}

func TestFov_WallBlocks(t *testing.T) {
	d := openArena(31, 15)
	// Вертикальная стена с одной бойницей.
	for y := 1; y < 14; y++ {
		d.At(15, y).Kind = TileWall
	}
	d.At(15, 7).Kind = TileFloor

	d.ComputeFov(Vec2i{X: 5, Y: 7}, 20)

	if d.At(20, 2).Visible {
		t.Error("tile behind the wall must be hidden")
	}
	if !d.At(15, 7).Visible {
		t.Error("the gap itself must be visible")
	}
	if !d.At(15, 6).Visible {
		t.Error("the wall face must be visible")
	}
}

func TestFov_ClosedDoorBlocks(t *testing.T) {
	d := openArena(21, 9)
	for y := 1; y < 8; y++ {
		d.At(10, y).Kind = TileWall
	}
	d.At(10, 4).Kind = TileDoorClosed

	d.ComputeFov(Vec2i{X: 4, Y: 4}, 15)
	if d.At(16, 4).Visible {
		t.Error("closed door must block sight")
	}

	d.OpenDoor(10, 4)
	d.ComputeFov(Vec2i{X: 4, Y: 4}, 15)
	if !d.At(16, 4).Visible {
		t.Error("open door must let sight through")
	}
}

func TestFov_MarksExplored(t *testing.T) {
	d := openArena(15, 15)
	d.ComputeFov(Vec2i{X: 7, Y: 7}, 4)
	if !d.At(9, 7).Explored {
		t.Error("visible tiles must be marked explored")
	}
	// Второй вызов из другой точки сбрасывает видимость, но не память.
	d.ComputeFov(Vec2i{X: 2, Y: 2}, 2)
	if d.At(9, 7).Visible {
		t.Error("visibility must reset between computations")
	}
	if !d.At(9, 7).Explored {
		t.Error("explored flag must persist")
	}
}

func TestFovMask_DoesNotMutate(t *testing.T) {
	d := openArena(15, 15)
	mask := d.ComputeFovMask(Vec2i{X: 7, Y: 7}, 5)
	if !mask[7*15+7] {
		t.Fatal("origin missing from mask")
	}
	for i := range d.Tiles {
		if d.Tiles[i].Visible || d.Tiles[i].Explored {
			t.Fatal("ComputeFovMask must not mutate tiles")
		}
	}
}

func TestFov_Symmetry(t *testing.T) {
	// Взаимность: если A видит B, то B видит A (на проходимых клетках).
	d := openArena(25, 25)
	r := rng.New(404)
	for i := 0; i < 40; i++ {
		d.At(r.Range(2, 22), r.Range(2, 22)).Kind = TilePillar
	}

	a := Vec2i{X: 3, Y: 3}
	b := Vec2i{X: 20, Y: 19}
	if d.KindAt(a.X, a.Y) != TileFloor || d.KindAt(b.X, b.Y) != TileFloor {
		t.Skip("pillar landed on a probe point")
	}

	ab := d.HasLineOfSight(a, b)
	ba := d.HasLineOfSight(b, a)
	if ab != ba {
		t.Errorf("line of sight not symmetric: a->b=%v b->a=%v", ab, ba)
	}
}

func TestHasLineOfSight_EndpointVisible(t *testing.T) {
	d := openArena(11, 11)
	d.At(5, 5).Kind = TileWall
	// Стена сама видна, но дальше взгляд не идет.
	if !d.HasLineOfSight(Vec2i{X: 2, Y: 5}, Vec2i{X: 5, Y: 5}) {
		t.Error("the wall tile itself must be sightable")
	}
	if d.HasLineOfSight(Vec2i{X: 2, Y: 5}, Vec2i{X: 8, Y: 5}) {
		t.Error("sight must stop at the wall")
	}
}
