package engine

import (
	"fmt"
	"strings"
	"testing"

	"deepdelve-server/pkg/api"
)

func TestCreateInstance_AssignsIDs(t *testing.T) {
	svc := NewService(testConfig())

	if svc.Default() == nil {
		t.Fatal("service must create a default instance")
	}
	if got := svc.Default().ID; got != 1 {
		t.Fatalf("default instance ID = %d, want 1", got)
	}

	second := svc.CreateInstance()
	if second.ID != 2 {
		t.Errorf("second instance ID = %d, want 2", second.ID)
	}
	if svc.Instance(2) != second {
		t.Error("Instance(2) did not return the created run")
	}
	if svc.Instance(99) != nil {
		t.Error("Instance(99) must be nil")
	}
}

func TestHandleCommand_Floor(t *testing.T) {
	svc := NewService(testConfig())
	inst := svc.Default()

	resp := svc.HandleCommand(inst, api.ClientCommand{Op: "FLOOR", Depth: 2})
	if resp.Type != "FLOOR" {
		t.Fatalf("type = %q (%s), want FLOOR", resp.Type, resp.Error)
	}
	fv := resp.Floor
	if fv == nil {
		t.Fatal("FLOOR response has no floor payload")
	}
	if fv.Depth != 2 {
		t.Errorf("depth = %d, want 2", fv.Depth)
	}
	if fv.Grid.Width != inst.Cfg.MapW || fv.Grid.Height != inst.Cfg.MapH {
		t.Errorf("grid %dx%d, want %dx%d", fv.Grid.Width, fv.Grid.Height, inst.Cfg.MapW, inst.Cfg.MapH)
	}
	if len(fv.Grid.Rows) != fv.Grid.Height {
		t.Errorf("rows = %d, want %d", len(fv.Grid.Rows), fv.Grid.Height)
	}
	if fv.Style == "" {
		t.Error("floor style is empty")
	}
	if len(fv.Rooms) == 0 {
		t.Error("floor has no rooms")
	}
}

func TestHandleCommand_Chunk(t *testing.T) {
	svc := NewService(testConfig())

	resp := svc.HandleCommand(svc.Default(), api.ClientCommand{Op: "CHUNK", Cx: -2, Cy: 5})
	if resp.Type != "CHUNK" {
		t.Fatalf("type = %q (%s), want CHUNK", resp.Type, resp.Error)
	}
	cv := resp.Chunk
	if cv == nil {
		t.Fatal("CHUNK response has no chunk payload")
	}
	if cv.Cx != -2 || cv.Cy != 5 {
		t.Errorf("chunk coords (%d,%d), want (-2,5)", cv.Cx, cv.Cy)
	}
	if cv.Name == "" || cv.Biome == "" || cv.Weather == "" {
		t.Errorf("chunk metadata incomplete: name=%q biome=%q weather=%q", cv.Name, cv.Biome, cv.Weather)
	}
	if len(cv.Gates) != 4 {
		t.Errorf("gates = %d, want 4", len(cv.Gates))
	}
}

func TestHandleCommand_Fov(t *testing.T) {
	svc := NewService(testConfig())
	inst := svc.Default()
	d, _ := inst.Floor(1)
	pos := findFloorTile(t, d)

	resp := svc.HandleCommand(inst, api.ClientCommand{Op: "FOV", Depth: 1, X: pos.X, Y: pos.Y, Radius: 8})
	if resp.Type != "FOV" {
		t.Fatalf("type = %q (%s), want FOV", resp.Type, resp.Error)
	}
	if resp.Fov == nil || len(resp.Fov.Rows) != d.Height {
		t.Fatal("FOV payload missing or wrong height")
	}
	if resp.Fov.Rows[pos.Y][pos.X] != '*' {
		t.Error("origin is not marked visible")
	}

	bad := svc.HandleCommand(inst, api.ClientCommand{Op: "FOV", Depth: 1, X: d.Width + 5, Y: 0, Radius: 8})
	if bad.Type != "ERROR" {
		t.Errorf("out-of-bounds origin: type = %q, want ERROR", bad.Type)
	}
}

func TestHandleCommand_SneakAndHash(t *testing.T) {
	svc := NewService(testConfig())
	inst := svc.Default()

	on := svc.HandleCommand(inst, api.ClientCommand{Op: "SNEAK", Enabled: true})
	if on.Type != "SNEAK" || !on.Sneak || !inst.Sneak {
		t.Errorf("sneak on: type=%q sneak=%v inst=%v", on.Type, on.Sneak, inst.Sneak)
	}

	resp := svc.HandleCommand(inst, api.ClientCommand{Op: "HASH"})
	if resp.Type != "HASH" {
		t.Fatalf("type = %q (%s), want HASH", resp.Type, resp.Error)
	}
	want := fmt.Sprintf("%016x", inst.DeterminismHash())
	if resp.Hash != want {
		t.Errorf("hash = %q, want %q", resp.Hash, want)
	}
}

func TestHandleCommand_Errors(t *testing.T) {
	svc := NewService(testConfig())

	if resp := svc.HandleCommand(nil, api.ClientCommand{Op: "HASH"}); resp.Type != "ERROR" {
		t.Errorf("nil instance: type = %q, want ERROR", resp.Type)
	}

	cases := []api.ClientCommand{
		{Op: "FLOOR", Depth: 0},
		{Op: "FLOOR", Depth: 999},
		{Op: "FOV", Depth: 1, X: 5, Y: 5, Radius: 999},
		{Op: "TELEPORT"},
		{Op: ""},
	}
	for _, cmd := range cases {
		resp := svc.HandleCommand(svc.Default(), cmd)
		if resp.Type != "ERROR" || resp.Error == "" {
			t.Errorf("cmd %+v: type=%q error=%q, want ERROR with message", cmd, resp.Type, resp.Error)
		}
	}
}

func TestHandleCommand_FloorGridGlyphs(t *testing.T) {
	svc := NewService(testConfig())

	resp := svc.HandleCommand(svc.Default(), api.ClientCommand{Op: "FLOOR", Depth: 1})
	if resp.Floor == nil {
		t.Fatal("no floor payload")
	}
	for y, row := range resp.Floor.Grid.Rows {
		if strings.ContainsRune(row, '?') {
			t.Fatalf("row %d contains unknown glyph: %q", y, row)
		}
	}
}
