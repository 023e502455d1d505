package dungeon

import "testing"

func TestMaterials_Deterministic(t *testing.T) {
	a := New(40, 30)
	b := New(40, 30)
	a.EnsureMaterials(9001, 5, 12)
	b.EnsureMaterials(9001, 5, 12)
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			if a.MaterialAt(x, y) != b.MaterialAt(x, y) {
				t.Fatalf("material mismatch at (%d,%d)", x, y)
			}
			if a.BioluminescenceAt(x, y) != b.BioluminescenceAt(x, y) {
				t.Fatalf("biolum mismatch at (%d,%d)", x, y)
			}
		}
	}
}

func TestMaterials_PaletteByTier(t *testing.T) {
	shallow := New(60, 40)
	deep := New(60, 40)
	shallow.EnsureMaterials(7, 1, 12)
	deep.EnsureMaterials(7, 12, 12)

	shallowSet := map[Material]bool{MatStone: true, MatBrick: true, MatDirt: true, MatMoss: true}
	deepSet := map[Material]bool{MatObsidian: true, MatBasalt: true, MatCrystal: true, MatBone: true}

	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			if !shallowSet[shallow.MaterialAt(x, y)] {
				t.Fatalf("shallow tier produced %s", shallow.MaterialAt(x, y).Name())
			}
			if !deepSet[deep.MaterialAt(x, y)] {
				t.Fatalf("deep tier produced %s", deep.MaterialAt(x, y).Name())
			}
		}
	}
}

func TestMaterials_BiolumRange(t *testing.T) {
	d := New(50, 50)
	d.EnsureMaterials(3, 10, 12)
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			g := d.BioluminescenceAt(x, y)
			if g < 0 || g > 1 {
				t.Fatalf("biolum out of range at (%d,%d): %f", x, y, g)
			}
		}
	}
}

func TestMaterials_DefaultsBeforeEnsure(t *testing.T) {
	d := New(10, 10)
	if d.MaterialAt(5, 5) != MatStone {
		t.Error("material before EnsureMaterials must default to stone")
	}
	if d.BioluminescenceAt(5, 5) != 0 {
		t.Error("biolum before EnsureMaterials must be zero")
	}
}

func TestMaterials_ScentFxBridge(t *testing.T) {
	fx := MatMoss.ScentFx()
	base := MatMoss.Fx()
	if fx.DecayDelta != base.ScentDecayDelta || fx.SpreadDropDelta != base.ScentSpreadDropDelta {
		t.Error("ScentFx must mirror the material scent deltas")
	}
}
