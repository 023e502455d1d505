package engine

import (
	"fmt"
	"sort"

	"deepdelve-server/internal/infrastructure/storage"
	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/rng"
)

// Snapshot сворачивает забег в плоский снимок для записи на диск.
// Сохраняются тайлы (двери, раскопки), разведка и запах каждого
// закешированного этажа; комнаты и лестницы восстанавливаются
// перегенерацией по сиду.
func (i *Instance) Snapshot() *storage.SaveGame {
	i.mu.Lock()
	defer i.mu.Unlock()

	sg := &storage.SaveGame{
		Seed:         i.Cfg.Seed,
		MaxDepth:     int32(i.Cfg.MaxDepth),
		MapW:         int32(i.Cfg.MapW),
		MapH:         int32(i.Cfg.MapH),
		CurrentDepth: int32(i.CurrentDepth),
		Sneak:        i.Sneak,
		RngState:     i.Rng.State(),
	}

	depths := make([]int, 0, len(i.floors))
	for depth := range i.floors {
		depths = append(depths, depth)
	}
	sort.Ints(depths)

	for _, depth := range depths {
		fs := i.floors[depth]
		d := fs.Level
		n := d.Width * d.Height

		fr := storage.FloorRecord{
			Depth:    int32(depth),
			Width:    int32(d.Width),
			Height:   int32(d.Height),
			Kinds:    make([]byte, n),
			Explored: make([]byte, (n+7)/8),
			Scent:    make([]byte, n),
		}
		for idx := 0; idx < n; idx++ {
			fr.Kinds[idx] = byte(d.Tiles[idx].Kind)
			if d.Tiles[idx].Explored {
				fr.Explored[idx/8] |= 1 << (idx % 8)
			}
		}
		copy(fr.Scent, fs.Scent)
		sg.Floors = append(sg.Floors, fr)
	}

	return sg
}

// RestoreInstance восстанавливает забег из снимка: этажи перегенерируются
// по сиду, поверх накатываются сохраненные тайлы, разведка и запах.
func RestoreInstance(id int, sg *storage.SaveGame) (*Instance, error) {
	if sg == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	cfg := Config{
		Seed:     sg.Seed,
		MaxDepth: int(sg.MaxDepth),
		MapW:     int(sg.MapW),
		MapH:     int(sg.MapH),
	}
	inst := NewInstance(id, cfg)
	inst.CurrentDepth = int(sg.CurrentDepth)
	inst.Sneak = sg.Sneak
	inst.Rng = rng.New(1)
	inst.Rng.SetState(sg.RngState)

	inst.mu.Lock()
	defer inst.mu.Unlock()

	for _, fr := range sg.Floors {
		depth := int(fr.Depth)
		d, _ := inst.floorLocked(depth)
		if int(fr.Width) != d.Width || int(fr.Height) != d.Height {
			return nil, fmt.Errorf("floor %d: saved size %dx%d, generated %dx%d",
				depth, fr.Width, fr.Height, d.Width, d.Height)
		}

		n := d.Width * d.Height
		if len(fr.Kinds) != n || len(fr.Scent) != n || len(fr.Explored) != (n+7)/8 {
			return nil, fmt.Errorf("floor %d: truncated record", depth)
		}

		for idx := 0; idx < n; idx++ {
			d.Tiles[idx].Kind = dungeon.TileKind(fr.Kinds[idx])
			d.Tiles[idx].Explored = fr.Explored[idx/8]&(1<<(idx%8)) != 0
			d.Tiles[idx].Visible = false
		}
		copy(inst.floors[depth].Scent, fr.Scent)
	}

	return inst, nil
}
