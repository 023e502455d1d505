package overworld

import (
	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/rng"
)

// Chunk - сгенерированный чанк дикой местности: сетка в формате подземелья
// плюс идентичность, погода и телеметрия.
type Chunk struct {
	Grid    *dungeon.Dungeon `json:"grid"`
	Profile ChunkProfile     `json:"profile"`
	Weather WeatherProfile   `json:"weather"`
	Name    string           `json:"name"`
	Gates   ChunkGates       `json:"gates"`

	// Маска ворот: бит 0 = север, 1 = юг, 2 = запад, 3 = восток.
	GateMask      uint8           `json:"gateMask"`
	GatePositions []dungeon.Vec2i `json:"gatePositions"`

	// Телеметрия генерации (для логов и тестов).
	RidgePillarCount  int  `json:"-"`
	ScreeBoulderCount int  `json:"-"`
	RiverChasmCount   int  `json:"-"`
	LandmarkCount     int  `json:"-"`
	SpringCount       int  `json:"-"`
	BrookCount        int  `json:"-"`
	StrongholdPlaced  bool `json:"-"`
	WaystationPlaced  bool `json:"-"`

	// Клетки проложенных троп: станция не смеет перегораживать дорогу
	// между воротами и хабом.
	trailMask []bool
}

// Биомные пороги рельефа.
type terrainKnobs struct {
	mountainElevMin float64
	lakeElevMax     float64
	lakeWetMin      float64

	treeWetMin  float64
	treeElevMax float64
	treeChance  float64

	screeElevMin float64
	screeVarMax  float64

	deadwoodWetMax float64
	deadwoodVarMax float64

	riverBandBase float64
	riverWetBoost float64
	riverElevMin  float64

	trailTurnPenalty     int
	trailWetPenaltyAbove float64
	trailRadius          int
}

func knobsFor(biome Biome) terrainKnobs {
	k := terrainKnobs{
		mountainElevMin: 0.82,
		lakeElevMax:     0.25,
		lakeWetMin:      0.42,
		treeWetMin:      0.66,
		treeElevMax:     0.78,
		treeChance:      0.28,
		screeElevMin:    0.72,
		screeVarMax:     0.050,
		deadwoodWetMax:  0.24,
		deadwoodVarMax:  0.015,

		riverBandBase: 0.012,
		riverWetBoost: 0.004,
		riverElevMin:  0.20,

		trailTurnPenalty:     8,
		trailWetPenaltyAbove: 0.62,
		trailRadius:          0,
	}

	switch biome {
	case BiomeForest:
		k.treeWetMin = 0.56
		k.treeChance = 0.46
		k.lakeElevMax = 0.23
		k.lakeWetMin = 0.40
		k.mountainElevMin = 0.86
		k.riverBandBase = 0.014
		k.riverWetBoost = 0.006
		k.riverElevMin = 0.18
		k.trailTurnPenalty = 7
	case BiomeSwamp:
		k.lakeElevMax = 0.40
		k.lakeWetMin = 0.35
		k.treeWetMin = 0.58
		k.treeChance = 0.35
		k.mountainElevMin = 0.88
		k.riverBandBase = 0.020
		k.riverWetBoost = 0.010
		k.riverElevMin = 0.18
		k.trailTurnPenalty = 7
		k.trailRadius = 1
	case BiomeDesert:
		k.lakeElevMax = 0.18
		k.lakeWetMin = 0.70
		k.treeWetMin = 0.90
		k.treeChance = 0.10
		k.deadwoodWetMax = 0.55
		k.deadwoodVarMax = 0.025
		k.screeElevMin = 0.66
		k.screeVarMax = 0.090
		k.mountainElevMin = 0.80
		k.riverBandBase = 0.006 // редкие вади
		k.riverWetBoost = 0
		k.riverElevMin = 0.26
	case BiomeTundra:
		k.lakeElevMax = 0.22
		k.lakeWetMin = 0.55
		k.treeWetMin = 0.82
		k.treeChance = 0.14
		k.deadwoodWetMax = 0.30
		k.deadwoodVarMax = 0.010
		k.screeElevMin = 0.65
		k.screeVarMax = 0.080
		k.mountainElevMin = 0.78
		k.riverBandBase = 0.011
	case BiomeHighlands:
		k.lakeElevMax = 0.20
		k.lakeWetMin = 0.55
		k.treeWetMin = 0.78
		k.treeChance = 0.18
		k.screeElevMin = 0.60
		k.screeVarMax = 0.100
		k.mountainElevMin = 0.74
		k.riverBandBase = 0.009
		k.riverWetBoost = 0.002
		k.riverElevMin = 0.24
		k.trailTurnPenalty = 9
	case BiomeBadlands:
		k.lakeElevMax = 0.16
		k.lakeWetMin = 0.65
		k.treeWetMin = 0.92
		k.treeChance = 0.08
		k.deadwoodWetMax = 0.38
		k.deadwoodVarMax = 0.020
		k.screeElevMin = 0.58
		k.screeVarMax = 0.120
		k.mountainElevMin = 0.76
		k.riverBandBase = 0.008
		k.riverWetBoost = 0.001
		k.riverElevMin = 0.24
		k.trailTurnPenalty = 9
	case BiomeCoast:
		k.lakeElevMax = 0.30
		k.lakeWetMin = 0.38
		k.treeWetMin = 0.62
		k.treeChance = 0.24
		k.mountainElevMin = 0.84
		k.riverBandBase = 0.018
		k.riverWetBoost = 0.008
		k.riverElevMin = 0.16
		k.trailTurnPenalty = 6
		k.trailRadius = 1
	case BiomePlains:
		k.trailTurnPenalty = 6
		k.trailRadius = 1
	}
	return k
}

// elevSampler - непрерывное поле высот в мировых координатах: базовый FBM
// плюс тектоника Уорли (смещение плиты + гребни на границах с перевалами).
// Семплер один на весь мир, поэтому чанки сходятся на границах без швов.
type elevSampler struct {
	sElev     uint32
	sTectMaj  uint32
	sTectMin  uint32
	sPass     uint32
	sPlateOff uint32
}

func newElevSampler(base uint32) elevSampler {
	return elevSampler{
		sElev:     rng.HashCombine(base, rng.Tag32("ELEV")),
		sTectMaj:  rng.HashCombine(base, rng.Tag32("TECT_MAJ")),
		sTectMin:  rng.HashCombine(base, rng.Tag32("TECT_MIN")),
		sPass:     rng.HashCombine(base, rng.Tag32("TECT_PASS")),
		sPlateOff: rng.HashCombine(base, rng.Tag32("PLATE_OFF")),
	}
}

func (s elevSampler) at(wx, wy int) float64 {
	fx, fy := float64(wx), float64(wy)

	elev := Fbm01(s.sElev, fx*0.013, fy*0.013, 5)

	// Крупные плиты: смещение высоты на плиту + гребень у границы.
	maj := Worley(s.sTectMaj, fx*0.012, fy*0.012)
	plateOff := (u32To01(rng.Hash32(rng.HashCombine(maj.CellID, s.sPlateOff))) - 0.45) * 0.14
	ridgeMaj := smoothstep01(0, 0.22, 0.22-(maj.F2-maj.F1))

	// Мелкие суб-хребты.
	min := Worley(s.sTectMin, fx*0.035, fy*0.035)
	ridgeMin := smoothstep01(0, 0.14, 0.14-(min.F2-min.F1))

	// Перевалы: хребты никогда не становятся сплошной стеной.
	pass := ValueNoise01(s.sPass, fx*0.05, fy*0.05)
	if pass > 0.78 {
		ridgeMaj *= 0.15
		ridgeMin *= 0.30
	}

	return clampF(elev+plateOff+ridgeMaj*0.22+ridgeMin*0.08, 0, 1)
}

// GenerateChunk генерирует чанк дикой местности размером w x h.
func GenerateChunk(runSeed uint32, chunkX, chunkY, w, h, maxDepth int) *Chunk {
	d := dungeon.New(w, h)
	c := &Chunk{Grid: d}

	c.Profile = ProfileFor(runSeed, chunkX, chunkY, maxDepth)
	c.Weather = WeatherFor(runSeed, chunkX, chunkY, c.Profile.Biome)
	c.Name = ChunkNameFor(c.Profile)
	c.Gates = GatePositions(w, h, runSeed, chunkX, chunkY)

	if w <= 2 || h <= 2 {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				d.At(x, y).Kind = dungeon.TileFloor
			}
		}
		c.sealBorders(runSeed, chunkX, chunkY)
		return c
	}

	biome := c.Profile.Biome
	k := knobsFor(biome)

	// Базовая заливка полом.
	for i := range d.Tiles {
		d.Tiles[i] = dungeon.Tile{Kind: dungeon.TileFloor}
	}

	// --- 1-3. Поля рельефа: FBM + тектоника + орографическая влажность ---
	base := terrainBaseSeed(runSeed)
	elevS := newElevSampler(base)
	sWet := rng.HashCombine(base, rng.Tag32("WET"))
	sVar := rng.HashCombine(base, rng.Tag32("VAR"))

	wx0 := chunkX * w
	wy0 := chunkY * h

	elevField := make([]float64, w*h)
	wetField := make([]float64, w*h)
	varField := make([]float64, w*h)

	wind := PrevailingWind(runSeed)

	for y := 0; y < h; y++ {
		wy := wy0 + y
		for x := 0; x < w; x++ {
			wx := wx0 + x
			i := y*w + x

			elev := elevS.at(wx, wy)
			wet := Fbm01(sWet, float64(wx)*0.011, float64(wy)*0.011, 4)

			// Орографическая коррекция: дождевая тень за хребтами выше
			// порога с подветренной стороны, наветренные склоны влажнее.
			upMax := 0.0
			for s := 1; s <= 6; s++ {
				ue := elevS.at(wx-wind.X*s, wy-wind.Y*s)
				if ue > upMax {
					upMax = ue
				}
			}
			if upMax > elev+0.10 {
				wet -= (upMax - elev - 0.10) * 1.2 // тень
			}
			if elevS.at(wx+wind.X*2, wy+wind.Y*2) > elev+0.06 {
				wet += 0.08 // наветренный подъем
			}
			wet = clampF(wet, 0, 1)

			elevField[i] = elev
			wetField[i] = wet
			varField[i] = u32To01(hashCoord(sVar, wx, wy))
		}
	}

	// --- 4. Пороги рельефа в тайлы ---
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			elev, wet, vr := elevField[i], wetField[i], varField[i]

			tt := dungeon.TileFloor

			if elev > k.mountainElevMin {
				tt = dungeon.TileWall // горы
			}
			if tt == dungeon.TileFloor && elev < k.lakeElevMax && wet > k.lakeWetMin {
				tt = dungeon.TileChasm // озерные котловины
			}
			if tt == dungeon.TileFloor && wet > k.treeWetMin && elev < k.treeElevMax && vr < k.treeChance {
				tt = dungeon.TilePillar // растительность
				c.RidgePillarCount++
			}
			if tt == dungeon.TileFloor && elev > k.screeElevMin && vr < k.screeVarMax {
				tt = dungeon.TileBoulder // осыпи
				c.ScreeBoulderCount++
			}
			if tt == dungeon.TileFloor && wet < k.deadwoodWetMax && vr < k.deadwoodVarMax {
				tt = dungeon.TilePillar // сухостой
				c.RidgePillarCount++
			}

			d.At(x, y).Kind = tt
		}
	}

	// --- 5. Реки ---
	c.carveRivers(k, elevField, wetField, wx0, wy0, base)

	// --- 6. Талусовые шлейфы вдоль тектонических гор ---
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if d.KindAt(x, y) != dungeon.TileFloor || varField[i] >= 0.12 {
				continue
			}
			if elevField[i] < k.mountainElevMin-0.08 {
				continue
			}
			adjacentWall := false
			for _, dv := range [4]dungeon.Vec2i{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
				if d.KindAt(x+dv.X, y+dv.Y) == dungeon.TileWall {
					adjacentWall = true
					break
				}
			}
			if adjacentWall {
				d.At(x, y).Kind = dungeon.TileBoulder
				c.ScreeBoulderCount++
			}
		}
	}

	// --- 7. Ориентиры ---
	c.placeLandmarks(biome)

	// --- 8. Опорные крепости ---
	c.placeStronghold()

	// --- 9. Родники и ручьи ---
	c.placeSpringsAndBrooks(elevS, wetField, elevField, wx0, wy0)

	// --- 10. Сеть троп: A* от всех ворот к смещенному хабу ---
	hub := c.carveTrailNetwork(k, elevField, wetField)

	// --- 11. Путевая станция ---
	c.placeWaystation(k, hub, elevField, wetField)

	// Финал: пограничные стены и ворота.
	c.sealBorders(runSeed, chunkX, chunkY)

	// Одна большая "комната" на весь чанк для логики спавна. Специальные
	// комнаты (лавки, крепости) уже добавлены раньше, чтобы RoomKindAt
	// возвращал их тип первым.
	d.Rooms = append(d.Rooms, dungeon.Room{X: 1, Y: 1, W: w - 2, H: h - 2, Kind: dungeon.RoomNormal})

	return c
}

// carveRivers режет русла: два повернутых магистральных шумовых пояса,
// притоки у магистральных долин и болотные микроканалы. Весь шум в мировых
// координатах, так что русла непрерывны через границы чанков.
func (c *Chunk) carveRivers(k terrainKnobs, elevField, wetField []float64, wx0, wy0 int, base uint32) {
	d := c.Grid
	sRiv := rng.HashCombine(base, rng.Tag32("RIV"))
	sRiv2 := rng.HashCombine(base, rng.Tag32("RIV2"))
	sRivW := rng.HashCombine(base, rng.Tag32("RIVW"))
	sMicro := rng.HashCombine(base, rng.Tag32("RIVM"))

	elevMax := maxF(0, k.mountainElevMin-0.05)

	for y := 1; y < d.Height-1; y++ {
		wy := wy0 + y
		for x := 1; x < d.Width-1; x++ {
			if d.KindAt(x, y) == dungeon.TileWall {
				continue
			}
			i := y*d.Width + x
			elev := elevField[i]
			if elev < k.riverElevMin || elev > elevMax {
				continue
			}

			wx := wx0 + x
			wet := wetField[i]
			fx, fy := float64(wx), float64(wy)

			// Магистрали: тонкие ленты у изолинии 0.5.
			n1 := Fbm01(sRiv, fx*0.0062, fy*0.0062, 3)
			// Второй пояс в повернутых координатах, иной ориентации.
			n2 := Fbm01(sRiv2, (fx+fy)*0.0044, (fy-fx)*0.0044, 3)
			wv := Fbm01(sRivW, fx*0.019, fy*0.019, 2)

			band := k.riverBandBase * (0.70 + 0.80*wv)
			band += maxF(0, wet-0.55) * k.riverWetBoost

			isRiver := absF(n1-0.5) < band || absF(n2-0.5) < band*0.8

			// Притоки: узкий пояс, активный только около магистральных долин.
			if !isRiver {
				nearTrunk := minF(absF(n1-0.5), absF(n2-0.5)) < 0.06
				if nearTrunk {
					n3 := Fbm01(sRiv, fx*0.013, fy*0.013, 3)
					isRiver = absF(n3-0.5) < band*0.55
				}
			}

			// Болотные микроканалы.
			if !isRiver && wet > 0.70 {
				nm := Fbm01(sMicro, fx*0.045, fy*0.045, 2)
				isRiver = absF(nm-0.5) < 0.010
			}

			if isRiver {
				if d.KindAt(x, y) != dungeon.TileChasm {
					c.RiverChasmCount++
				}
				d.At(x, y).Kind = dungeon.TileChasm

				// Редкий прибрежный декор на берегу.
				if wv > 0.82 && d.KindAt(x+1, y) == dungeon.TileFloor {
					d.At(x+1, y).Kind = dungeon.TileBoulder
				}
			}
		}
	}
}

func (c *Chunk) gateThroats() [4]dungeon.Vec2i {
	g := c.Gates
	return [4]dungeon.Vec2i{
		{X: g.North.X, Y: g.North.Y + 1},
		{X: g.South.X, Y: g.South.Y - 1},
		{X: g.West.X + 1, Y: g.West.Y},
		{X: g.East.X - 1, Y: g.East.Y},
	}
}

func (c *Chunk) farFromGates(x, y, minD int) bool {
	for _, t := range c.gateThroats() {
		if absInt(x-t.X)+absInt(y-t.Y) < minD {
			return false
		}
	}
	return true
}

// sealBorders ставит сплошные пограничные стены и прорубает ворота с
// горловиной в одну клетку внутрь.
func (c *Chunk) sealBorders(runSeed uint32, chunkX, chunkY int) {
	d := c.Grid
	for x := 0; x < d.Width; x++ {
		d.At(x, 0).Kind = dungeon.TileWall
		d.At(x, d.Height-1).Kind = dungeon.TileWall
	}
	for y := 0; y < d.Height; y++ {
		d.At(0, y).Kind = dungeon.TileWall
		d.At(d.Width-1, y).Kind = dungeon.TileWall
	}

	c.GateMask = 0
	c.GatePositions = c.GatePositions[:0]

	carveGate := func(p dungeon.Vec2i, bit uint8) {
		if !d.InBounds(p.X, p.Y) {
			return
		}
		d.At(p.X, p.Y).Kind = dungeon.TileFloor

		// Горловина внутрь, чтобы через ворота можно было шагнуть.
		if p.Y == 0 && d.InBounds(p.X, 1) {
			d.At(p.X, 1).Kind = dungeon.TileFloor
		}
		if p.Y == d.Height-1 && d.InBounds(p.X, d.Height-2) {
			d.At(p.X, d.Height-2).Kind = dungeon.TileFloor
		}
		if p.X == 0 && d.InBounds(1, p.Y) {
			d.At(1, p.Y).Kind = dungeon.TileFloor
		}
		if p.X == d.Width-1 && d.InBounds(d.Width-2, p.Y) {
			d.At(d.Width-2, p.Y).Kind = dungeon.TileFloor
		}

		c.GateMask |= 1 << bit
		c.GatePositions = append(c.GatePositions, p)
	}

	g := GatePositions(d.Width, d.Height, runSeed, chunkX, chunkY)
	carveGate(g.North, 0)
	carveGate(g.South, 1)
	carveGate(g.West, 2)
	carveGate(g.East, 3)
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
