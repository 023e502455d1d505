package overworld

import (
	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/rng"
)

// ChunkSeed - детерминированный сид чанка для локальных решений размещения.
func ChunkSeed(runSeed uint32, chunkX, chunkY int) uint32 {
	s := rng.HashCombine(runSeed, rng.Tag32("OW_CHUNK"))
	s = rng.HashCombine(s, uint32(chunkX))
	s = rng.HashCombine(s, uint32(chunkY))
	if s == 0 {
		s = 1
	}
	return s
}

// terrainBaseSeed - домен полей рельефа (непрерывных через чанки).
func terrainBaseSeed(runSeed uint32) uint32 {
	s := rng.HashCombine(runSeed, rng.Tag32("OW_TERRAIN"))
	if s == 0 {
		s = 1
	}
	return s
}

// materialSeed - домен палитры материалов чанка.
func materialSeed(runSeed uint32, chunkX, chunkY int) uint32 {
	s := rng.HashCombine(runSeed, rng.Tag32("OW_MAT"))
	s = rng.HashCombine(s, uint32(chunkX))
	s = rng.HashCombine(s, uint32(chunkY))
	if s == 0 {
		s = 1
	}
	return s
}

// nameSeed - домен имени чанка.
func nameSeed(runSeed uint32, chunkX, chunkY int) uint32 {
	s := rng.HashCombine(runSeed, rng.Tag32("OW_NAME"))
	s = rng.HashCombine(s, uint32(chunkX))
	s = rng.HashCombine(s, uint32(chunkY))
	if s == 0 {
		s = 1
	}
	return s
}

// DangerDepthFor - скаляр опасности, растущий с удалением от (0,0). Смещает
// спавны и прочий глубинозависимый процген, не меняя фактическую глубину.
func DangerDepthFor(chunkX, chunkY, maxDepth int) int {
	if chunkX == 0 && chunkY == 0 {
		return 0 // домашний лагерь
	}
	d := absInt(chunkX) + absInt(chunkY)
	raw := 1 + d*2
	hi := maxInt(1, maxDepth)
	return clampInt(raw, 1, hi)
}

// ChunkGates - позиции краевых ворот чанка.
type ChunkGates struct {
	North dungeon.Vec2i // x, y=0
	South dungeon.Vec2i // x, y=h-1
	West  dungeon.Vec2i // x=0, y
	East  dungeon.Vec2i // x=w-1, y
}

// Ворота общие на границу между чанками, поэтому сеть троп образует
// непрерывные межчанковые дороги без швов.
//
// Вертикальный ключ границы (V): между (bx, y) и (bx+1, y) => общий Y.
// Горизонтальный ключ (H): между (x, by) и (x, by+1) => общий X.
//
// Границы, касающиеся домашнего лагеря, прибиты к середине грани, чтобы не
// ломать раскладку лагеря.
func boundaryTouchesHomeCampVertical(boundaryX, chunkY int) bool {
	return chunkY == 0 && (boundaryX == -1 || boundaryX == 0)
}

func boundaryTouchesHomeCampHorizontal(chunkX, boundaryY int) bool {
	return chunkX == 0 && (boundaryY == -1 || boundaryY == 0)
}

func sharedGateOffsetVertical(runSeed uint32, boundaryX, chunkY, height int) int {
	mid := height / 2

	// Избегаем углов: "горловина" ворот всегда в пределах карты.
	lo, hi := 2, height-3
	if hi < lo {
		lo = maxInt(1, mid)
		hi = lo
	}
	midSafe := clampInt(mid, lo, hi)

	if boundaryTouchesHomeCampVertical(boundaryX, chunkY) {
		return midSafe
	}

	s := rng.HashCombine(runSeed, rng.Tag32("OW_GATE_V"))
	s = rng.HashCombine(s, uint32(boundaryX))
	s = rng.HashCombine(s, uint32(chunkY))
	s = rng.Hash32(s)
	r := rng.New(s)
	return r.Range(lo, hi)
}

func sharedGateOffsetHorizontal(runSeed uint32, chunkX, boundaryY, width int) int {
	mid := width / 2

	lo, hi := 2, width-3
	if hi < lo {
		lo = maxInt(1, mid)
		hi = lo
	}
	midSafe := clampInt(mid, lo, hi)

	if boundaryTouchesHomeCampHorizontal(chunkX, boundaryY) {
		return midSafe
	}

	s := rng.HashCombine(runSeed, rng.Tag32("OW_GATE_H"))
	s = rng.HashCombine(s, uint32(chunkX))
	s = rng.HashCombine(s, uint32(boundaryY))
	s = rng.Hash32(s)
	r := rng.New(s)
	return r.Range(lo, hi)
}

// GatePositions вычисляет позиции всех четырех ворот чанка.
func GatePositions(w, h int, runSeed uint32, chunkX, chunkY int) ChunkGates {
	// Северная граница лежит между (chunkX, chunkY-1) и (chunkX, chunkY).
	nx := sharedGateOffsetHorizontal(runSeed, chunkX, chunkY-1, w)
	// Южная - между (chunkX, chunkY) и (chunkX, chunkY+1).
	sx := sharedGateOffsetHorizontal(runSeed, chunkX, chunkY, w)
	// Западная - между (chunkX-1, chunkY) и (chunkX, chunkY).
	wy := sharedGateOffsetVertical(runSeed, chunkX-1, chunkY, h)
	// Восточная - между (chunkX, chunkY) и (chunkX+1, chunkY).
	ey := sharedGateOffsetVertical(runSeed, chunkX, chunkY, h)

	return ChunkGates{
		North: dungeon.Vec2i{X: nx, Y: 0},
		South: dungeon.Vec2i{X: sx, Y: h - 1},
		West:  dungeon.Vec2i{X: 0, Y: wy},
		East:  dungeon.Vec2i{X: w - 1, Y: ey},
	}
}

// Biome - крупномасштабный тип региона.
type Biome uint8

const (
	BiomePlains Biome = iota
	BiomeForest
	BiomeSwamp
	BiomeDesert
	BiomeTundra
	BiomeHighlands
	BiomeBadlands
	BiomeCoast
)

// Name возвращает каноническое имя биома.
func (b Biome) Name() string {
	switch b {
	case BiomePlains:
		return "PLAINS"
	case BiomeForest:
		return "FOREST"
	case BiomeSwamp:
		return "SWAMP"
	case BiomeDesert:
		return "DESERT"
	case BiomeTundra:
		return "TUNDRA"
	case BiomeHighlands:
		return "HIGHLANDS"
	case BiomeBadlands:
		return "BADLANDS"
	case BiomeCoast:
		return "COAST"
	default:
		return "PLAINS"
	}
}

// BiomeFor выбирает биом чанка по крупномасштабным климатическим полям.
func BiomeFor(runSeed uint32, chunkX, chunkY int) Biome {
	base := rng.HashCombine(runSeed, rng.Tag32("OW_BIOME"))
	sElev := rng.HashCombine(base, rng.Tag32("ELEV"))
	sWet := rng.HashCombine(base, rng.Tag32("WET"))
	sTemp := rng.HashCombine(base, rng.Tag32("TEMP"))

	// Сэмплинг в чанковых координатах: стабильные крупные регионы.
	fx := float64(chunkX) * 0.23
	fy := float64(chunkY) * 0.23

	elev := Fbm01(sElev, fx, fy, 4)
	wet := Fbm01(sWet, fx+17, fy-29, 4)
	temp := Fbm01(sTemp, fx-53, fy+11, 3)

	// Широтный уклон: север/юг холоднее.
	lat := clampF(float64(absInt(chunkY))*0.08, 0, 1)
	temp = clampF(temp-lat*0.45, 0, 1)

	switch {
	case elev < 0.28 && wet > 0.45:
		return BiomeCoast // низина + влага
	case elev > 0.78:
		return BiomeHighlands // высота доминирует
	case temp < 0.22:
		return BiomeTundra // холод после высоты
	case wet < 0.20:
		if elev > 0.55 {
			return BiomeBadlands
		}
		return BiomeDesert
	case wet > 0.74 && elev < 0.62:
		return BiomeSwamp
	case wet > 0.55:
		return BiomeForest
	default:
		return BiomePlains
	}
}

// ChunkProfile - легковесная детерминированная идентичность чанка.
type ChunkProfile struct {
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Seed         uint32 `json:"seed"`
	NameSeed     uint32 `json:"nameSeed"`
	MaterialSeed uint32 `json:"materialSeed"`
	Biome        Biome  `json:"biome"`
	DangerDepth  int    `json:"dangerDepth"`
}

// ProfileFor собирает профиль чанка из сидов и климатических полей.
func ProfileFor(runSeed uint32, chunkX, chunkY, maxDepth int) ChunkProfile {
	return ChunkProfile{
		X:            chunkX,
		Y:            chunkY,
		Seed:         ChunkSeed(runSeed, chunkX, chunkY),
		NameSeed:     nameSeed(runSeed, chunkX, chunkY),
		MaterialSeed: materialSeed(runSeed, chunkX, chunkY),
		Biome:        BiomeFor(runSeed, chunkX, chunkY),
		DangerDepth:  DangerDepthFor(chunkX, chunkY, maxDepth),
	}
}

type nameBank struct {
	adj  []string
	noun []string
}

var nameBanks = map[Biome]nameBank{
	BiomePlains: {
		adj:  []string{"WIDE", "OPEN", "GOLD", "WIND", "GREEN", "BRIGHT", "LONG", "SUN", "MEADOW", "HOLLOW"},
		noun: []string{"FIELD", "MEADOW", "STEPPE", "PRAIRIE", "VALE", "HEATH", "DOWNS", "RIDGE", "BARROW", "PLAIN"},
	},
	BiomeForest: {
		adj:  []string{"ASH", "BRIAR", "DARK", "FERN", "MOSS", "PINE", "RAVEN", "SILVER", "OLD", "THORN"},
		noun: []string{"WOOD", "GROVE", "THICKET", "GLADE", "COPSE", "CANOPY", "HOLLOW", "BOWER", "DELL", "WILDWOOD"},
	},
	BiomeSwamp: {
		adj:  []string{"BLACK", "MIRE", "FEN", "SUNKEN", "MURK", "REED", "SILT", "BRACKISH", "SOUR", "CROAK"},
		noun: []string{"MARSH", "FEN", "MIRE", "BAYOU", "DELTA", "SINK", "POOL", "SLOUGH", "QUAG", "WETLAND"},
	},
	BiomeDesert: {
		adj:  []string{"SALT", "DUST", "DRY", "EMBER", "PALE", "RED", "BARREN", "SCOUR", "SUN", "SAND"},
		noun: []string{"DUNES", "WASTES", "SANDS", "FLATS", "BASIN", "RIM", "HOLLOW", "SCAR", "PLATEAU", "SALTFLAT"},
	},
	BiomeTundra: {
		adj:  []string{"FROST", "ICE", "WHITE", "COLD", "WINTER", "GRAY", "BLEAK", "RIME", "SNOW", "PALE"},
		noun: []string{"TUNDRA", "MOOR", "DRIFTS", "WASTE", "RIDGE", "FIELDS", "STEPPE", "ICEFIELD", "BARRENS", "FJELL"},
	},
	BiomeHighlands: {
		adj:  []string{"HIGH", "IRON", "STONE", "CLOUD", "EAGLE", "STEEP", "RUGGED", "GRANITE", "SHEER", "CRAG"},
		noun: []string{"RIDGE", "PEAK", "HEIGHTS", "CRAGS", "SLOPES", "SPINE", "RANGE", "SCARP", "SUMMIT", "HIGHLAND"},
	},
	BiomeBadlands: {
		adj:  []string{"BROKEN", "RUST", "JAGGED", "BONE", "SCAR", "HARSH", "SHATTER", "DRY", "IRON", "RED"},
		noun: []string{"BADLANDS", "GULCH", "ARROYO", "CANYON", "RAVINES", "WASH", "CUTS", "SCREE", "MAZE", "SCRUB"},
	},
	BiomeCoast: {
		adj:  []string{"SALT", "WAVE", "SEA", "FOAM", "MIST", "SHELL", "WIND", "GRAY", "TIDE", "HARBOR"},
		noun: []string{"SHORE", "COAST", "BAY", "COVE", "SANDS", "REEF", "HEADLAND", "TIDEFLAT", "STRAIT", "BEACH"},
	},
}

// ChunkNameFor генерирует имя чанка из биомных банков слов.
func ChunkNameFor(p ChunkProfile) string {
	r := rng.New(p.NameSeed)
	bank, ok := nameBanks[p.Biome]
	if !ok {
		bank = nameBanks[BiomePlains]
	}

	a := bank.adj[r.Range(0, len(bank.adj)-1)]
	n := bank.noun[r.Range(0, len(bank.noun)-1)]

	// 45% слитных имен (ASHWOOD, SALTCOAST), иначе два слова.
	var out string
	if r.Chance(0.45) {
		out = a + n
	} else {
		out = a + " " + n
	}

	if len(out) > 32 {
		out = out[:32]
	}
	return out
}
