package dungeon

import (
	"deepdelve-server/pkg/rng"
	"deepdelve-server/pkg/wfc"
)

// Микропаттерн обстановки хранилища: 0=пол, 1=колонна, 2=валун.
const (
	annexFloor   = 0
	annexPillar  = 1
	annexBoulder = 2
	annexNTiles  = 3
)

// annexRules строит правила смежности: колонны не соседствуют с колоннами и
// валунами, валуны - с валунами. Правила симметричны, поэтому одна маска
// на все четыре направления.
func annexRules() [4][]uint32 {
	const (
		mFloor   = 1 << annexFloor
		mPillar  = 1 << annexPillar
		mBoulder = 1 << annexBoulder
		mAll     = mFloor | mPillar | mBoulder
	)
	perDir := []uint32{
		annexFloor:   mAll,
		annexPillar:  mFloor,
		annexBoulder: mFloor,
	}

	var allow [4][]uint32
	for dir := 0; dir < 4; dir++ {
		allow[dir] = perDir
	}
	return allow
}

// furnishVaultWFC обставляет внутренность хранилища WFC-микропаттерном из
// колонн и валунов. Кольцо у стен и клетка входа принудительно остаются
// полом, чтобы обстановка не запирала дверь. Провал решения безвреден:
// комната просто остается пустой.
func (d *Dungeon) furnishVaultWFC(r *rng.RNG, room Room, entry Vec2i) {
	iw := room.W - 2
	ih := room.H - 2
	if iw < 2 || ih < 2 {
		return
	}

	weights := []float64{
		annexFloor:   8.0,
		annexPillar:  1.0,
		annexBoulder: 0.7,
	}

	full := uint32(1<<annexNTiles) - 1
	domains := make([]uint32, iw*ih)
	for i := range domains {
		domains[i] = full
	}

	ox, oy := room.X+1, room.Y+1
	forceFloor := func(gx, gy int) {
		lx, ly := gx-ox, gy-oy
		if lx >= 0 && ly >= 0 && lx < iw && ly < ih {
			domains[ly*iw+lx] = 1 << annexFloor
		}
	}

	// Кольцо по периметру внутренности.
	for lx := 0; lx < iw; lx++ {
		domains[lx] = 1 << annexFloor
		domains[(ih-1)*iw+lx] = 1 << annexFloor
	}
	for ly := 0; ly < ih; ly++ {
		domains[ly*iw] = 1 << annexFloor
		domains[ly*iw+iw-1] = 1 << annexFloor
	}
	forceFloor(entry.X, entry.Y)

	tiles, ok := wfc.Solve(iw, ih, annexNTiles, annexRules(), weights, r, domains, 10, nil)
	if !ok {
		return
	}

	for ly := 0; ly < ih; ly++ {
		for lx := 0; lx < iw; lx++ {
			gx, gy := ox+lx, oy+ly
			if d.KindAt(gx, gy) != TileFloor {
				continue
			}
			switch tiles[ly*iw+lx] {
			case annexPillar:
				d.At(gx, gy).Kind = TilePillar
				d.PillarCount++
			case annexBoulder:
				d.At(gx, gy).Kind = TileBoulder
				d.BoulderCount++
			}
		}
	}
	d.AnnexWfcCount++
}
