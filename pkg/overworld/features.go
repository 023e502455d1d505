package overworld

import (
	"math"

	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/pathfind"
	"deepdelve-server/pkg/rng"
)

// carveDisk вырезает эллипс радиусами rx/ry, не трогая рамку чанка.
func (c *Chunk) carveDisk(ctr dungeon.Vec2i, rx, ry int, tt dungeon.TileKind) {
	d := c.Grid
	rx = maxInt(1, rx)
	ry = maxInt(1, ry)
	for yy := ctr.Y - ry; yy <= ctr.Y+ry; yy++ {
		for xx := ctr.X - rx; xx <= ctr.X+rx; xx++ {
			if !d.InBounds(xx, yy) || xx <= 0 || yy <= 0 || xx >= d.Width-1 || yy >= d.Height-1 {
				continue
			}
			dx := float64(xx-ctr.X) / float64(rx)
			dy := float64(yy-ctr.Y) / float64(ry)
			if dx*dx+dy*dy <= 1.0 {
				if tt == dungeon.TileChasm && d.KindAt(xx, yy) != dungeon.TileChasm {
					c.RiverChasmCount++
				}
				d.At(xx, yy).Kind = tt
			}
		}
	}
}

// carveHut строит прямоугольное строение: стены по периметру, пол внутри.
func (c *Chunk) carveHut(x0, y0, w0, h0 int) {
	d := c.Grid
	for y := y0; y < y0+h0; y++ {
		for x := x0; x < x0+w0; x++ {
			if !d.InBounds(x, y) {
				continue
			}
			border := x == x0 || y == y0 || x == x0+w0-1 || y == y0+h0-1
			if border {
				d.At(x, y).Kind = dungeon.TileWall
			} else {
				d.At(x, y).Kind = dungeon.TileFloor
			}
		}
	}
}

// --- Ориентиры -------------------------------------------------------------

// placeLandmarks ставит 0-2 биомных ориентира (оазис/руины/каменный круг/
// роща) отбраковкой вдали от ворот. Ориентиры кладутся до троп, поэтому
// связность ворот не страдает.
func (c *Chunk) placeLandmarks(biome Biome) {
	d := c.Grid
	landRng := rng.New(rng.HashCombine(c.Profile.Seed, rng.Tag32("OW_LAND")))

	pickCenter := func() dungeon.Vec2i {
		for i := 0; i < 64; i++ {
			x := landRng.Range(3, d.Width-4)
			y := landRng.Range(3, d.Height-4)
			if !c.farFromGates(x, y, 7) || !d.IsWalkable(x, y) {
				continue
			}
			return dungeon.Vec2i{X: x, Y: y}
		}
		return dungeon.Vec2i{X: d.Width / 2, Y: d.Height / 2}
	}

	placeRuins := func(ctr dungeon.Vec2i) {
		rw := landRng.Range(5, 9)
		rh := landRng.Range(5, 9)
		x0 := clampInt(ctr.X-rw/2, 2, d.Width-rw-2)
		y0 := clampInt(ctr.Y-rh/2, 2, d.Height-rh-2)
		c.carveHut(x0, y0, rw, rh)
		// Несколько рухнувших валунов.
		rubble := landRng.Range(1, 3)
		for i := 0; i < rubble; i++ {
			rx := landRng.Range(x0+1, x0+rw-2)
			ry := landRng.Range(y0+1, y0+rh-2)
			d.At(rx, ry).Kind = dungeon.TileBoulder
			c.ScreeBoulderCount++
		}
	}

	placeStoneCircle := func(ctr dungeon.Vec2i) {
		r := landRng.Range(2, 3)
		for i := 0; i < 24; i++ {
			a := float64(i) / 24.0 * 2 * math.Pi
			x := ctr.X + int(math.Round(math.Cos(a)*float64(r)))
			y := ctr.Y + int(math.Round(math.Sin(a)*float64(r)))
			if !d.InBounds(x, y) || x <= 0 || y <= 0 || x >= d.Width-1 || y >= d.Height-1 {
				continue
			}
			d.At(x, y).Kind = dungeon.TileBoulder
			c.ScreeBoulderCount++
		}
	}

	placeGrove := func(ctr dungeon.Vec2i) {
		r := landRng.Range(2, 4)
		for y := ctr.Y - r; y <= ctr.Y+r; y++ {
			for x := ctr.X - r; x <= ctr.X+r; x++ {
				if !d.InBounds(x, y) || x <= 0 || y <= 0 || x >= d.Width-1 || y >= d.Height-1 {
					continue
				}
				if absInt(x-ctr.X)+absInt(y-ctr.Y) > r {
					continue
				}
				if landRng.Chance(0.35) {
					d.At(x, y).Kind = dungeon.TilePillar
					c.RidgePillarCount++
				}
			}
		}
	}

	count := 0
	if landRng.Chance(0.55) {
		count = 1
	}
	if landRng.Chance(0.18) {
		count++
	}

	for i := 0; i < count; i++ {
		ctr := pickCenter()
		roll := landRng.NextU32() % 100

		switch {
		case biome == BiomeDesert:
			if roll < 65 {
				c.carveDisk(ctr, landRng.Range(2, 4), landRng.Range(2, 4), dungeon.TileChasm) // оазис
			} else {
				placeRuins(ctr)
			}
		case biome == BiomeSwamp || biome == BiomeCoast:
			if roll < 70 {
				c.carveDisk(ctr, landRng.Range(2, 5), landRng.Range(2, 5), dungeon.TileChasm)
			} else {
				placeRuins(ctr)
			}
		case biome == BiomeForest:
			if roll < 55 {
				placeGrove(ctr)
			} else {
				placeRuins(ctr)
			}
		case biome == BiomeHighlands || biome == BiomeBadlands:
			if roll < 55 {
				placeRuins(ctr)
			} else {
				placeStoneCircle(ctr)
			}
		case biome == BiomeTundra:
			if roll < 45 {
				placeStoneCircle(ctr)
			} else {
				placeRuins(ctr)
			}
		default:
			// Равнины.
			if roll < 40 {
				c.carveDisk(ctr, landRng.Range(2, 4), landRng.Range(2, 4), dungeon.TileChasm)
			} else if roll < 75 {
				placeRuins(ctr)
			} else {
				placeGrove(ctr)
			}
		}
		c.LandmarkCount++
	}
}

// --- Крепость ---------------------------------------------------------------

// placeStronghold ставит редкую опорную крепость: обнесенную стеной руину с
// проломом, внутренним донжоном-хранилищем (запертая дверь, гарантированный
// тайник) и пуассоновскими хозпостройками во дворе. Шанс растет с глубиной
// опасности.
func (c *Chunk) placeStronghold() {
	d := c.Grid
	holdRng := rng.New(rng.HashCombine(c.Profile.Seed, rng.Tag32("OW_HOLD")))

	chance := clampF(0.035+float64(c.Profile.DangerDepth)*0.004, 0, 0.12)
	if c.Profile.X == 0 && c.Profile.Y == 0 {
		chance = 0 // не на домашнем лагере
	}
	if !holdRng.Chance(chance) {
		return
	}

	hw := holdRng.Range(17, 23)
	hh := holdRng.Range(13, 17)
	if d.Width < hw+10 || d.Height < hh+10 {
		return
	}

	var x0, y0 int
	placedAt := false
	for attempt := 0; attempt < 32; attempt++ {
		x0 = holdRng.Range(4, d.Width-hw-5)
		y0 = holdRng.Range(4, d.Height-hh-5)
		if !c.farFromGates(x0+hw/2, y0+hh/2, 12) {
			continue
		}
		// Не пересекаем большие водные массивы.
		bad := 0
		for y := y0; y < y0+hh; y++ {
			for x := x0; x < x0+hw; x++ {
				if d.KindAt(x, y) == dungeon.TileChasm {
					bad++
				}
			}
		}
		if bad > hw*hh/8 {
			continue
		}
		placedAt = true
		break
	}
	if !placedAt {
		return
	}

	// Двор: расчистка и внешняя стена.
	for y := y0; y < y0+hh; y++ {
		for x := x0; x < x0+hw; x++ {
			border := x == x0 || y == y0 || x == x0+hw-1 || y == y0+hh-1
			if border {
				d.At(x, y).Kind = dungeon.TileWall
			} else if d.KindAt(x, y) == dungeon.TileWall {
				d.At(x, y).Kind = dungeon.TileFloor
			}
		}
	}

	// Пролом во внешней стене: 2-3 клетки на случайной стороне.
	side := holdRng.Range(0, 3)
	breachLen := holdRng.Range(2, 3)
	switch side {
	case 0: // север
		bx := holdRng.Range(x0+2, x0+hw-3-breachLen)
		for i := 0; i < breachLen; i++ {
			d.At(bx+i, y0).Kind = dungeon.TileFloor
		}
	case 1: // юг
		bx := holdRng.Range(x0+2, x0+hw-3-breachLen)
		for i := 0; i < breachLen; i++ {
			d.At(bx+i, y0+hh-1).Kind = dungeon.TileFloor
		}
	case 2: // запад
		by := holdRng.Range(y0+2, y0+hh-3-breachLen)
		for i := 0; i < breachLen; i++ {
			d.At(x0, by+i).Kind = dungeon.TileFloor
		}
	default: // восток
		by := holdRng.Range(y0+2, y0+hh-3-breachLen)
		for i := 0; i < breachLen; i++ {
			d.At(x0+hw-1, by+i).Kind = dungeon.TileFloor
		}
	}

	// Донжон: внутренняя комната-хранилище с запертой дверью и тайником.
	kw := holdRng.Range(6, 8)
	kh := holdRng.Range(5, 6)
	kx := x0 + hw/2 - kw/2
	ky := y0 + hh/2 - kh/2
	c.carveHut(kx, ky, kw, kh)
	doorX := kx + kw/2
	doorY := ky + kh - 1
	d.At(doorX, doorY).Kind = dungeon.TileDoorLocked
	d.At(kx+kw/2, ky+kh/2).Kind = dungeon.TileAltar // тайник
	d.Rooms = append(d.Rooms, dungeon.Room{X: kx, Y: ky, W: kw, H: kh, Kind: dungeon.RoomVault})

	// Хозпостройки: пуассоновские семена во дворе, мимо донжона.
	seeds := PoissonDiscSample2D(holdRng, x0+2, y0+2, x0+hw-6, y0+hh-5, 6.0, 18)
	for _, s := range seeds {
		if s.X >= kx-1 && s.X < kx+kw+1 && s.Y >= ky-1 && s.Y < ky+kh+1 {
			continue
		}
		bw := holdRng.Range(3, 4)
		bh := 3
		if s.X+bw >= x0+hw-1 || s.Y+bh >= y0+hh-1 {
			continue
		}
		c.carveHut(s.X, s.Y, bw, bh)
		d.At(s.X+bw/2, s.Y+bh-1).Kind = dungeon.TileDoorOpen
		d.Rooms = append(d.Rooms, dungeon.Room{X: s.X, Y: s.Y, W: bw, H: bh, Kind: dungeon.RoomNormal})
	}

	c.StrongholdPlaced = true
}

// --- Родники и ручьи ---------------------------------------------------------

// placeSpringsAndBrooks сеет родники Пуассоном с уклоном к влажному плоскому
// рельефу; каждый родник порождает ручей, стекающий по градиенту высот с
// инерцией, пока не встретит воду или не исчерпает бюджет шагов. Застрявший
// в локальном стоке ручей заканчивается прудом.
func (c *Chunk) placeSpringsAndBrooks(elevS elevSampler, wetField, elevField []float64, wx0, wy0 int) {
	d := c.Grid
	springRng := rng.New(rng.HashCombine(c.Profile.Seed, rng.Tag32("OW_SPRING")))

	seeds := PoissonDiscSample2D(springRng, 3, 3, d.Width-4, d.Height-4, 14.0, 24)

	for _, s := range seeds {
		i := s.Y*d.Width + s.X
		if wetField[i] < 0.55 || elevField[i] < 0.25 || elevField[i] > 0.70 {
			continue
		}
		if d.KindAt(s.X, s.Y) != dungeon.TileFloor || !c.farFromGates(s.X, s.Y, 6) {
			continue
		}

		d.At(s.X, s.Y).Kind = dungeon.TileFountain
		c.SpringCount++

		c.flowBrook(elevS, s, wx0, wy0, springRng)
	}
}

// flowBrook ведет ручей от родника вниз по склону: на каждом шаге выбирается
// самый низкий из 4 соседей с бонусом инерции за сохранение направления.
func (c *Chunk) flowBrook(elevS elevSampler, from dungeon.Vec2i, wx0, wy0 int, r *rng.RNG) {
	d := c.Grid
	p := from
	prevDir := dungeon.Vec2i{}
	carved := 0

	for step := 0; step < 80; step++ {
		bestDir := dungeon.Vec2i{}
		bestElev := math.MaxFloat64
		for _, dv := range [4]dungeon.Vec2i{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			nx, ny := p.X+dv.X, p.Y+dv.Y
			if nx <= 0 || ny <= 0 || nx >= d.Width-1 || ny >= d.Height-1 {
				continue
			}
			if d.KindAt(nx, ny) == dungeon.TileWall {
				continue // вода обтекает скалу
			}
			e := elevS.at(wx0+nx, wy0+ny)
			if dv == prevDir {
				e -= 0.012 // инерция течения
			}
			if e < bestElev {
				bestElev = e
				bestDir = dv
			}
		}

		if bestDir == (dungeon.Vec2i{}) {
			break
		}

		here := elevS.at(wx0+p.X, wy0+p.Y)
		if bestElev >= here+0.004 {
			// Локальный сток: пруд и конец ручья.
			c.carveDisk(p, r.Range(1, 2), r.Range(1, 2), dungeon.TileChasm)
			break
		}

		p = dungeon.Vec2i{X: p.X + bestDir.X, Y: p.Y + bestDir.Y}
		prevDir = bestDir

		if d.KindAt(p.X, p.Y) == dungeon.TileChasm {
			break // дошли до воды
		}
		d.At(p.X, p.Y).Kind = dungeon.TileChasm
		carved++
	}

	if carved > 0 {
		c.BrookCount++
	}
}

// --- Тропы -------------------------------------------------------------------

// trailCost - полная стоимость шага тропы в клетку: базовый рельеф, штраф за
// локальный уклон и влажность. Стены дороги, но конечны: тропа вправе
// прорубить перевал.
func (c *Chunk) trailCost(k terrainKnobs, elevField, wetField []float64) func(x, y int) int {
	d := c.Grid
	return func(x, y int) int {
		base := 2
		switch d.KindAt(x, y) {
		case dungeon.TileWall:
			base = 36
		case dungeon.TileChasm:
			base = 18
		case dungeon.TilePillar:
			base = 7
		case dungeon.TileBoulder:
			base = 6
		case dungeon.TileFountain, dungeon.TileAltar:
			base = 9 // не мостим родники и святыни
		}

		i := y*d.Width + x
		// Уклон: максимальный перепад с 4 соседями.
		grad := 0.0
		for _, dv := range [4]dungeon.Vec2i{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			nx, ny := x+dv.X, y+dv.Y
			if nx < 0 || ny < 0 || nx >= d.Width || ny >= d.Height {
				continue
			}
			g := absF(elevField[i] - elevField[ny*d.Width+nx])
			if g > grad {
				grad = g
			}
		}
		base += int(grad * 26)

		if wetField[i] > k.trailWetPenaltyAbove {
			base += 3
		}
		return base
	}
}

// carveTrailAt кладет тропу с биомным радиусом, не трогая рамку.
func (c *Chunk) carveTrailAt(x, y, radius int) {
	d := c.Grid
	if len(c.trailMask) != d.Width*d.Height {
		c.trailMask = make([]bool, d.Width*d.Height)
	}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			xx, yy := x+dx, y+dy
			if !d.InBounds(xx, yy) || xx <= 0 || yy <= 0 || xx >= d.Width-1 || yy >= d.Height-1 {
				continue
			}
			d.At(xx, yy).Kind = dungeon.TileFloor
			c.trailMask[yy*d.Width+xx] = true
		}
	}
}

// carveTrailNetwork соединяет все четыре ворот со смещенным центральным
// хабом тропами, проложенными A* с состоянием курса. Возвращает позицию хаба.
func (c *Chunk) carveTrailNetwork(k terrainKnobs, elevField, wetField []float64) dungeon.Vec2i {
	d := c.Grid
	trailRng := rng.New(rng.HashCombine(c.Profile.Seed, rng.Tag32("OW_TRAIL")))

	hub := dungeon.Vec2i{X: d.Width / 2, Y: d.Height / 2}
	hub.X += trailRng.Range(-d.Width/6, d.Width/6)
	hub.Y += trailRng.Range(-d.Height/6, d.Height/6)
	hub.X = clampInt(hub.X, 2, d.Width-3)
	hub.Y = clampInt(hub.Y, 2, d.Height-3)

	// Поляна у хаба.
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			c.carveTrailAt(hub.X+dx, hub.Y+dy, k.trailRadius)
		}
	}

	params := pathfind.TrailParams{
		TurnPenalty:  k.trailTurnPenalty,
		UTurnPenalty: clampInt(k.trailTurnPenalty*2+4, 16, 20),
		MinStepCost:  2,
		JitterSeed:   rng.HashCombine(c.Profile.Seed, rng.Tag32("OW_TRAIL_JIT")),
		TileCost:     c.trailCost(k, elevField, wetField),
	}

	for _, start := range c.gateThroats() {
		p := start
		p.X = clampInt(p.X, 1, d.Width-2)
		p.Y = clampInt(p.Y, 1, d.Height-2)

		path := pathfind.PlanTrail(d.Width, d.Height, p, hub, params, trailRng)
		for _, pt := range path {
			c.carveTrailAt(pt.X, pt.Y, k.trailRadius)
		}
	}

	// Ответвление к крепости, если она есть: ведем тропу к ее хранилищу.
	if c.StrongholdPlaced {
		for _, room := range d.Rooms {
			if room.Kind != dungeon.RoomVault {
				continue
			}
			target := dungeon.Vec2i{X: room.CX(), Y: room.Y2()}
			target.X = clampInt(target.X, 1, d.Width-2)
			target.Y = clampInt(target.Y, 1, d.Height-2)
			path := pathfind.PlanTrail(d.Width, d.Height, hub, target, params, trailRng)
			for _, pt := range path {
				if d.KindAt(pt.X, pt.Y) == dungeon.TileWall || d.KindAt(pt.X, pt.Y) == dungeon.TileChasm ||
					d.KindAt(pt.X, pt.Y) == dungeon.TilePillar || d.KindAt(pt.X, pt.Y) == dungeon.TileBoulder {
					d.At(pt.X, pt.Y).Kind = dungeon.TileFloor
				}
			}
			break
		}
	}

	return hub
}

// --- Путевая станция -----------------------------------------------------------

func waystationChance(b Biome, dangerDepth int) float64 {
	ch := 0.05
	switch b {
	case BiomePlains:
		ch = 0.10
	case BiomeCoast:
		ch = 0.08
	case BiomeHighlands:
		ch = 0.07
	case BiomeForest:
		ch = 0.055
	case BiomeSwamp:
		ch = 0.045
	case BiomeBadlands:
		ch = 0.035
	case BiomeTundra:
		ch = 0.030
	case BiomeDesert:
		ch = 0.025
	}

	// Дальние чанки опаснее: караваны редеют.
	if dangerDepth >= 10 {
		ch *= 0.70
	}
	if dangerDepth >= 16 {
		ch *= 0.55
	}
	// Небольшой буст, чтобы раннее исследование ощущалось живым.
	if dangerDepth <= 3 {
		ch *= 1.10
	}
	return clampF(ch, 0, 0.14)
}

// placeWaystation ставит редкую лавку-станцию странствующего каравана рядом с
// хабом, дверью к нему, и подводит A*-тропу.
func (c *Chunk) placeWaystation(k terrainKnobs, hub dungeon.Vec2i, elevField, wetField []float64) {
	d := c.Grid
	stationRng := rng.New(rng.HashCombine(c.Profile.Seed, rng.Tag32("OW_STATION")))

	chance := waystationChance(c.Profile.Biome, c.Profile.DangerDepth)
	if chance <= 0 || !stationRng.Chance(chance) {
		return
	}

	rw := stationRng.Range(7, 11)
	rh := stationRng.Range(6, 9)

	for attempt := 0; attempt < 48; attempt++ {
		// Тянемся к тропам: позиция относительно хаба.
		ctr := hub
		dist := stationRng.Range(10, 22)
		switch stationRng.Range(0, 3) {
		case 0:
			ctr.X += dist
		case 1:
			ctr.X -= dist
		case 2:
			ctr.Y += dist
		default:
			ctr.Y -= dist
		}
		ctr.X += stationRng.Range(-4, 4)
		ctr.Y += stationRng.Range(-4, 4)
		ctr.X = clampInt(ctr.X, 3+rw/2, d.Width-4-rw/2)
		ctr.Y = clampInt(ctr.Y, 3+rh/2, d.Height-4-rh/2)

		if !c.farFromGates(ctr.X, ctr.Y, 10) {
			continue
		}

		x0 := ctr.X - rw/2
		y0 := ctr.Y - rh/2
		if x0 <= 2 || y0 <= 2 || x0+rw >= d.Width-2 || y0+rh >= d.Height-2 {
			continue
		}
		if hub.X >= x0 && hub.Y >= y0 && hub.X < x0+rw && hub.Y < y0+rh {
			continue // не строим поверх поляны хаба
		}

		// Футпринт не должен класть лавку на реку, сквозь хребет или
		// поперек уже проложенной тропы.
		bad, mountain := 0, 0
		for y := y0; y < y0+rh; y++ {
			for x := x0; x < x0+rw; x++ {
				if len(c.trailMask) == d.Width*d.Height && c.trailMask[y*d.Width+x] {
					bad++
				}
				switch d.KindAt(x, y) {
				case dungeon.TileChasm:
					bad += 3
				case dungeon.TileWall:
					mountain++
				}
			}
		}
		if bad > 0 || mountain > rw*rh/4 {
			continue
		}

		c.carveHut(x0, y0, rw, rh)

		// Дверь на стороне, обращенной к хабу.
		dx := hub.X - ctr.X
		dy := hub.Y - ctr.Y
		door := ctr
		out := dungeon.Vec2i{}
		if absInt(dx) >= absInt(dy) {
			if dx < 0 {
				door = dungeon.Vec2i{X: x0, Y: y0 + rh/2}
				out = dungeon.Vec2i{X: -1}
			} else {
				door = dungeon.Vec2i{X: x0 + rw - 1, Y: y0 + rh/2}
				out = dungeon.Vec2i{X: 1}
			}
		} else {
			if dy < 0 {
				door = dungeon.Vec2i{X: x0 + rw/2, Y: y0}
				out = dungeon.Vec2i{Y: -1}
			} else {
				door = dungeon.Vec2i{X: x0 + rw/2, Y: y0 + rh - 1}
				out = dungeon.Vec2i{Y: 1}
			}
		}
		if door.X <= 1 || door.Y <= 1 || door.X >= d.Width-2 || door.Y >= d.Height-2 {
			continue
		}

		d.At(door.X, door.Y).Kind = dungeon.TileDoorOpen

		// Подъездная тропа к хабу.
		approach := dungeon.Vec2i{X: door.X + out.X, Y: door.Y + out.Y}
		if d.InBounds(approach.X, approach.Y) {
			c.carveTrailAt(approach.X, approach.Y, k.trailRadius)
			params := pathfind.TrailParams{
				TurnPenalty:  k.trailTurnPenalty,
				UTurnPenalty: clampInt(k.trailTurnPenalty*2+4, 16, 20),
				MinStepCost:  2,
				JitterSeed:   rng.HashCombine(c.Profile.Seed, rng.Tag32("OW_STATION_JIT")),
				TileCost:     c.trailCost(k, elevField, wetField),
			}
			path := pathfind.PlanTrail(d.Width, d.Height, approach, hub, params, stationRng)
			for _, pt := range path {
				c.carveTrailAt(pt.X, pt.Y, k.trailRadius)
			}
		}

		// Лавка кладется раньше общего "ковра", чтобы RoomKindAt вернул ее.
		d.Rooms = append(d.Rooms, dungeon.Room{X: x0, Y: y0, W: rw, H: rh, Kind: dungeon.RoomShop})
		c.WaystationPlaced = true
		return
	}
}
