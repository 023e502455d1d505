package engine

import (
	"os"
	"testing"

	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testConfig() Config {
	return Config{Seed: 0xC0FFEE, MaxDepth: 6, MapW: 60, MapH: 40}
}

func TestDeterminismHash_SameConfigSameHash(t *testing.T) {
	a := NewInstance(1, testConfig())
	b := NewInstance(2, testConfig())

	ha, hb := a.DeterminismHash(), b.DeterminismHash()
	if ha != hb {
		t.Fatalf("same config produced different hashes: %016x vs %016x", ha, hb)
	}

	cfg := testConfig()
	cfg.Seed++
	c := NewInstance(3, cfg)
	if c.DeterminismHash() == ha {
		t.Errorf("different seed produced identical hash %016x", ha)
	}
}

func TestFloor_DepthClamped(t *testing.T) {
	inst := NewInstance(1, testConfig())

	low, _ := inst.Floor(0)
	one, _ := inst.Floor(1)
	if low != one {
		t.Error("depth below 1 should clamp to floor 1")
	}

	high, _ := inst.Floor(99)
	max, _ := inst.Floor(inst.Cfg.MaxDepth)
	if high != max {
		t.Error("depth above MaxDepth should clamp to the deepest floor")
	}
}

func TestEvictFloor_RegeneratesIdentically(t *testing.T) {
	inst := NewInstance(1, testConfig())

	d, style := inst.Floor(3)
	before := make([]dungeon.TileKind, len(d.Tiles))
	for i, tl := range d.Tiles {
		before[i] = tl.Kind
	}

	inst.EvictFloor(3)
	d2, style2 := inst.Floor(3)
	if d2 == d {
		t.Fatal("evicted floor returned the same cached object")
	}
	if style2 != style {
		t.Fatalf("style changed after evict: %v -> %v", style, style2)
	}
	for i, tl := range d2.Tiles {
		if tl.Kind != before[i] {
			t.Fatalf("tile %d changed after regeneration: %v -> %v", i, before[i], tl.Kind)
		}
	}
}

func TestGameplayRngIsolatedFromGeneration(t *testing.T) {
	inst := NewInstance(1, testConfig())
	state := inst.Rng.State()

	for depth := 1; depth <= inst.Cfg.MaxDepth; depth++ {
		inst.Floor(depth)
	}
	inst.Chunk(0, 0)
	inst.Chunk(-3, 7)
	inst.DeterminismHash()

	if inst.Rng.State() != state {
		t.Error("generation must not advance the gameplay RNG stream")
	}
}

func TestScentStep_DepositAndSneak(t *testing.T) {
	inst := NewInstance(1, testConfig())
	d, _ := inst.Floor(1)

	pos := findFloorTile(t, d)
	inst.ScentStep(1, pos)
	if got := inst.ScentAt(1, pos); got != scentDepositNormal {
		t.Errorf("scent at actor = %d, want %d", got, scentDepositNormal)
	}

	inst.SetSneak(true)
	d2, _ := inst.Floor(2)
	pos2 := findFloorTile(t, d2)
	inst.ScentStep(2, pos2)
	if got := inst.ScentAt(2, pos2); got != scentDepositSneak {
		t.Errorf("sneak scent at actor = %d, want %d", got, scentDepositSneak)
	}
}

func TestScentAt_UnloadedFloorIsZero(t *testing.T) {
	inst := NewInstance(1, testConfig())
	if got := inst.ScentAt(4, dungeon.Vec2i{X: 5, Y: 5}); got != 0 {
		t.Errorf("scent on unloaded floor = %d, want 0", got)
	}
}

func TestStepNoiseMap_SneakIsQuieter(t *testing.T) {
	inst := NewInstance(1, testConfig())
	d, _ := inst.Floor(1)
	pos := findFloorTile(t, d)

	m, loud := inst.StepNoiseMap(1, pos)
	if m == nil {
		t.Fatal("noise map is nil for a loaded floor")
	}
	if m[pos.Y*d.Width+pos.X] != 0 {
		t.Errorf("noise distance at source = %d, want 0", m[pos.Y*d.Width+pos.X])
	}

	inst.SetSneak(true)
	_, sneakLoud := inst.StepNoiseMap(1, pos)
	if sneakLoud >= loud {
		t.Errorf("sneak loudness %d not below normal %d", sneakLoud, loud)
	}
	if sneakLoud < 1 {
		t.Errorf("loudness must stay positive, got %d", sneakLoud)
	}
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	inst := NewInstance(1, testConfig())
	d, _ := inst.Floor(2)

	// Игровые мутации: дверь, разведка, запах, скрытность, игровые броски.
	door := findDoorTile(d)
	if door.X >= 0 {
		d.OpenDoor(door.X, door.Y)
	}
	mark := findFloorTile(t, d)
	d.At(mark.X, mark.Y).Explored = true

	inst.ScentStep(2, mark)
	inst.SetSneak(true)
	inst.CurrentDepth = 2
	inst.Rng.NextU32()
	inst.Rng.NextU32()

	wantHash := inst.DeterminismHash()
	sg := inst.Snapshot()

	back, err := RestoreInstance(7, sg)
	if err != nil {
		t.Fatalf("RestoreInstance: %v", err)
	}

	if got := back.DeterminismHash(); got != wantHash {
		t.Errorf("hash after restore = %016x, want %016x", got, wantHash)
	}
	if !back.Sneak {
		t.Error("sneak flag lost in round trip")
	}
	if back.CurrentDepth != 2 {
		t.Errorf("current depth = %d, want 2", back.CurrentDepth)
	}
	if back.Rng.State() != inst.Rng.State() {
		t.Error("gameplay RNG state lost in round trip")
	}

	rd, _ := back.Floor(2)
	if door.X >= 0 && rd.KindAt(door.X, door.Y) != dungeon.TileDoorOpen {
		t.Error("opened door reverted after restore")
	}
	tl := rd.At(mark.X, mark.Y)
	if !tl.Explored {
		t.Error("explored flag lost in round trip")
	}
	if tl.Visible {
		t.Error("visibility must reset on restore")
	}
	if got := back.ScentAt(2, mark); got != inst.ScentAt(2, mark) {
		t.Errorf("scent at mark = %d, want %d", got, inst.ScentAt(2, mark))
	}
}

func TestRestoreInstance_BadSnapshots(t *testing.T) {
	if _, err := RestoreInstance(1, nil); err == nil {
		t.Error("nil snapshot must fail")
	}

	inst := NewInstance(1, testConfig())
	sg := inst.Snapshot()
	if len(sg.Floors) == 0 {
		t.Fatal("snapshot has no floors")
	}
	sg.Floors[0].Kinds = sg.Floors[0].Kinds[:10]
	if _, err := RestoreInstance(2, sg); err == nil {
		t.Error("truncated floor record must fail")
	}
}

// findFloorTile возвращает первую обычную клетку пола вдали от границы.
func findFloorTile(t *testing.T, d *dungeon.Dungeon) dungeon.Vec2i {
	t.Helper()
	for y := 2; y < d.Height-2; y++ {
		for x := 2; x < d.Width-2; x++ {
			if d.KindAt(x, y) == dungeon.TileFloor {
				return dungeon.Vec2i{X: x, Y: y}
			}
		}
	}
	t.Fatal("no floor tile found")
	return dungeon.Vec2i{}
}

// findDoorTile возвращает закрытую дверь или (-1,-1), если их нет.
func findDoorTile(d *dungeon.Dungeon) dungeon.Vec2i {
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			if d.KindAt(x, y) == dungeon.TileDoorClosed {
				return dungeon.Vec2i{X: x, Y: y}
			}
		}
	}
	return dungeon.Vec2i{X: -1, Y: -1}
}
