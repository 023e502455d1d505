package dungeon

import (
	"testing"

	"deepdelve-server/pkg/rng"
)

// roomOnlyLevel строит этаж из двух комнат и одного коридора с тупиком.
func roomOnlyLevel() *Dungeon {
	d := New(40, 24)
	for y := 3; y < 9; y++ {
		for x := 3; x < 12; x++ {
			d.At(x, y).Kind = TileFloor
		}
	}
	for y := 14; y < 20; y++ {
		for x := 24; x < 36; x++ {
			d.At(x, y).Kind = TileFloor
		}
	}
	// Коридор между комнатами.
	for x := 12; x <= 28; x++ {
		d.At(x, 6).Kind = TileFloor
	}
	for y := 6; y <= 14; y++ {
		d.At(28, y).Kind = TileFloor
	}
	// Тупиковый аппендикс.
	for x := 5; x <= 5; x++ {
		for y := 9; y <= 13; y++ {
			d.At(5, y).Kind = TileFloor
		}
	}
	d.StairsUp = Vec2i{X: 4, Y: 4}
	d.StairsDown = Vec2i{X: 34, Y: 18}
	d.At(4, 4).Kind = TileStairsUp
	d.At(34, 18).Kind = TileStairsDown
	d.Rooms = append(d.Rooms,
		Room{X: 3, Y: 3, W: 9, H: 6, Kind: RoomNormal},
		Room{X: 24, Y: 14, W: 12, H: 6, Kind: RoomNormal})
	return d
}

func TestBraid_KeepsConnectivity(t *testing.T) {
	for seed := uint32(1); seed <= 30; seed++ {
		d := roomOnlyLevel()
		res := ApplyCorridorBraiding(d, rng.New(seed), 5, BraidHeavy)
		if !d.StairsConnected() {
			t.Fatalf("seed %d: braiding broke connectivity (rolledBack=%v)", seed, res.RolledBack)
		}
	}
}

func TestBraid_Deterministic(t *testing.T) {
	a := roomOnlyLevel()
	b := roomOnlyLevel()
	ra := ApplyCorridorBraiding(a, rng.New(9), 7, BraidModerate)
	rb := ApplyCorridorBraiding(b, rng.New(9), 7, BraidModerate)
	if ra != rb {
		t.Fatalf("same seed gave different braid results: %+v vs %+v", ra, rb)
	}
	if levelHash(a) != levelHash(b) {
		t.Fatal("same seed gave different braided levels")
	}
}

func TestBraid_CountsDeadEnds(t *testing.T) {
	d := roomOnlyLevel()
	res := ApplyCorridorBraiding(d, rng.New(3), 5, BraidHeavy)
	if res.DeadEndsBefore == 0 {
		t.Error("the appendix dead end was not detected")
	}
}

func TestBraid_ReducesDeadEnds(t *testing.T) {
	carvedOnce := false
	for seed := uint32(1); seed <= 15; seed++ {
		d := roomOnlyLevel()
		res := ApplyCorridorBraiding(d, rng.New(seed), 5, BraidHeavy)
		if res.DeadEndsAfter > res.DeadEndsBefore {
			t.Fatalf("seed %d: braiding added dead ends (%d -> %d)", seed, res.DeadEndsBefore, res.DeadEndsAfter)
		}
		if res.TunnelsCarved > 0 {
			carvedOnce = true
			if res.TilesCarved == 0 {
				t.Fatalf("seed %d: tunnel reported without carved tiles", seed)
			}
			if res.DeadEndsAfter >= res.DeadEndsBefore {
				t.Fatalf("seed %d: tunnel carved but dead ends did not drop (%d -> %d)",
					seed, res.DeadEndsBefore, res.DeadEndsAfter)
			}
		}
	}
	if !carvedOnce {
		t.Error("no seed ever braided the appendix dead end")
	}
}

func TestBraid_RespectsExclusionZones(t *testing.T) {
	for seed := uint32(1); seed <= 25; seed++ {
		d := New(80, 48)
		d.GenerateStyled(rng.New(seed), 6, 12, StyleBSP)

		before := make([]TileKind, len(d.Tiles))
		for i, tl := range d.Tiles {
			before[i] = tl.Kind
		}
		inRoom := d.roomMask()

		res := ApplyCorridorBraiding(d, rng.New(seed+500), 6, BraidHeavy)
		if res.RolledBack {
			continue
		}

		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				idx := y*d.Width + x
				if d.Tiles[idx].Kind == before[idx] {
					continue
				}
				if before[idx] != TileWall || d.Tiles[idx].Kind != TileFloor {
					t.Fatalf("seed %d: braid edit at (%d,%d) is not wall->floor", seed, x, y)
				}
				if d.adjacentToChasm(x, y) {
					t.Errorf("seed %d: tunnel carved next to a chasm at (%d,%d)", seed, x, y)
				}
				if d.anyDoorInRadius(x, y, 1) {
					t.Errorf("seed %d: tunnel carved next to a door at (%d,%d)", seed, x, y)
				}
				if d.nearStairs(x, y, 3) {
					t.Errorf("seed %d: tunnel carved near the stairs at (%d,%d)", seed, x, y)
				}
				if inRoom[idx] {
					t.Errorf("seed %d: tunnel carved inside a room at (%d,%d)", seed, x, y)
				}
				for _, dv := range dirs4 {
					nx, ny := x+dv.X, y+dv.Y
					if d.InBounds(nx, ny) && inRoom[ny*d.Width+nx] {
						t.Errorf("seed %d: tunnel carved against a room wall at (%d,%d)", seed, x, y)
					}
				}
			}
		}
	}
}

func TestBraid_RollbackRestoresTiles(t *testing.T) {
	// На уровне без пола снимок должен совпасть с результатом в любом случае.
	d := New(20, 20)
	d.StairsUp = Vec2i{X: 2, Y: 2}
	d.StairsDown = Vec2i{X: 17, Y: 17}
	d.At(2, 2).Kind = TileStairsUp
	d.At(17, 17).Kind = TileStairsDown
	before := levelHash(d)
	res := ApplyCorridorBraiding(d, rng.New(11), 5, BraidHeavy)
	if !res.RolledBack && res.TunnelsCarved > 0 && !d.StairsConnected() {
		t.Fatal("disconnected result without rollback")
	}
	if res.RolledBack && levelHash(d) != before {
		t.Fatal("rollback did not restore the level")
	}
}

func TestSculpt_ProtectsStairsAndDoors(t *testing.T) {
	for seed := uint32(1); seed <= 20; seed++ {
		d := New(60, 36)
		d.GenerateStyled(rng.New(seed), 6, 12, StyleBSP)

		up, down := d.StairsUp, d.StairsDown
		doors := map[Vec2i]TileKind{}
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				k := d.KindAt(x, y)
				if k == TileDoorOpen || k == TileDoorClosed || k == TileDoorLocked {
					doors[Vec2i{X: x, Y: y}] = k
				}
			}
		}

		ApplyTerrainSculpt(d, rng.New(seed+1000), 6, SculptRuins)

		if d.KindAt(up.X, up.Y) != TileStairsUp || d.KindAt(down.X, down.Y) != TileStairsDown {
			t.Fatalf("seed %d: sculpt touched a staircase", seed)
		}
		for p, k := range doors {
			if d.KindAt(p.X, p.Y) != k {
				t.Fatalf("seed %d: sculpt touched the door at %v", seed, p)
			}
		}
		if !d.StairsConnected() {
			t.Fatalf("seed %d: sculpt broke connectivity", seed)
		}
	}
}

func TestSculpt_ProtectsSpecialRooms(t *testing.T) {
	for seed := uint32(1); seed <= 30; seed++ {
		d := New(80, 48)
		d.GenerateStyled(rng.New(seed), 7, 12, StyleBSP)

		type cell struct {
			p Vec2i
			k TileKind
		}
		var special []cell
		for _, room := range d.Rooms {
			if room.Kind == RoomNormal {
				continue
			}
			for y := room.Y; y < room.Y2(); y++ {
				for x := room.X; x < room.X2(); x++ {
					if d.InBounds(x, y) {
						special = append(special, cell{Vec2i{X: x, Y: y}, d.KindAt(x, y)})
					}
				}
			}
		}
		if len(special) == 0 {
			continue
		}

		ApplyTerrainSculpt(d, rng.New(seed+300), 7, SculptRuins)

		for _, c := range special {
			if d.KindAt(c.p.X, c.p.Y) != c.k {
				t.Fatalf("seed %d: sculpt edited special room tile %v (%v -> %v)",
					seed, c.p, c.k, d.KindAt(c.p.X, c.p.Y))
			}
		}
	}
}

func TestSculptParams_DepthBoost(t *testing.T) {
	shallow := sculptParamsFor(SculptRuins, 1)
	deep := sculptParamsFor(SculptRuins, 9)
	if deep.carveSeedP <= shallow.carveSeedP {
		t.Errorf("carve seed chance must grow with depth: %.3f vs %.3f", shallow.carveSeedP, deep.carveSeedP)
	}
	if deep.collapseSeedP <= shallow.collapseSeedP {
		t.Errorf("collapse seed chance must grow with depth: %.3f vs %.3f", shallow.collapseSeedP, deep.collapseSeedP)
	}
	// Рост капится на восьмом уровне ниже первого и общими потолками.
	if deeper := sculptParamsFor(SculptRuins, 30); deeper != deep {
		t.Errorf("depth boost must cap: %+v vs %+v", deeper, deep)
	}
	if deep.carveSeedP > 0.10 || deep.collapseSeedP > 0.06 {
		t.Errorf("boosted chances exceed the ceilings: %+v", deep)
	}
}

func TestSculpt_OffIsNoop(t *testing.T) {
	d := New(60, 36)
	d.GenerateStyled(rng.New(77), 5, 12, StyleBSP)
	before := levelHash(d)
	res := ApplyTerrainSculpt(d, rng.New(5), 5, SculptOff)
	if res.TotalEdits() != 0 || levelHash(d) != before {
		t.Fatal("SculptOff must not edit the level")
	}
}

func TestSculpt_EditCap(t *testing.T) {
	d := New(60, 36)
	d.GenerateStyled(rng.New(13), 8, 12, StyleBSP)
	res := ApplyTerrainSculpt(d, rng.New(14), 8, SculptTunnels)
	if res.RolledBack {
		return
	}
	editCap := 60 * 36 / 4
	if editCap < 500 {
		editCap = 500
	}
	if res.TotalEdits() > editCap {
		t.Errorf("edits %d exceed the cap %d", res.TotalEdits(), editCap)
	}
}

func TestSculpt_Deterministic(t *testing.T) {
	a := New(60, 36)
	b := New(60, 36)
	a.GenerateStyled(rng.New(21), 7, 12, StyleBSP)
	b.GenerateStyled(rng.New(21), 7, 12, StyleBSP)
	ApplyTerrainSculpt(a, rng.New(22), 7, SculptSubtle)
	ApplyTerrainSculpt(b, rng.New(22), 7, SculptSubtle)
	if levelHash(a) != levelHash(b) {
		t.Fatal("same seed gave different sculpted levels")
	}
}
