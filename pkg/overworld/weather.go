package overworld

import (
	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/rng"
)

// Погода дикой местности: детерминированный "климатический снимок" региона
// из (runSeed, chunkX, chunkY). Это не симуляция времени; профиль дает
// связный ветер для дрейфа запаха/газа/огня, иногда режет видимость
// (туман/снег/пыль) и гасит огонь в дождь. Игровой RNG не расходуется.

type WeatherKind uint8

const (
	WeatherClear WeatherKind = iota
	WeatherBreezy
	WeatherWindy
	WeatherFog
	WeatherRain
	WeatherStorm
	WeatherSnow
	WeatherDust
)

// Name возвращает каноническое имя погоды.
func (w WeatherKind) Name() string {
	switch w {
	case WeatherClear:
		return "CLEAR"
	case WeatherBreezy:
		return "BREEZY"
	case WeatherWindy:
		return "WINDY"
	case WeatherFog:
		return "FOG"
	case WeatherRain:
		return "RAIN"
	case WeatherStorm:
		return "STORM"
	case WeatherSnow:
		return "SNOW"
	case WeatherDust:
		return "DUST"
	default:
		return "CLEAR"
	}
}

// WeatherProfile - погодный профиль чанка.
type WeatherProfile struct {
	Kind WeatherKind `json:"kind"`

	// Ветер: кардинальное направление или {0,0} при штиле.
	WindDir      dungeon.Vec2i `json:"windDir"`
	WindStrength int           `json:"windStrength"` // 0..3

	// Игровые модификаторы.
	FovPenalty int `json:"fovPenalty"` // вычитается из радиуса FOV (0..5)
	FireQuench int `json:"fireQuench"` // доп. затухание огня за ход (0..3)
	BurnQuench int `json:"burnQuench"` // доп. затухание горения (0..2)
}

// WeatherFor вычисляет погодный профиль чанка.
func WeatherFor(runSeed uint32, chunkX, chunkY int, biome Biome) WeatherProfile {
	var w WeatherProfile

	base := rng.HashCombine(runSeed, rng.Tag32("OW_WEATHER"))

	// Те же широкие климатические поля, что и у выбора биома, для связности.
	biomeBase := rng.HashCombine(runSeed, rng.Tag32("OW_BIOME"))
	sWet := rng.HashCombine(biomeBase, rng.Tag32("WET"))
	sTemp := rng.HashCombine(biomeBase, rng.Tag32("TEMP"))

	fx := float64(chunkX) * 0.23
	fy := float64(chunkY) * 0.23

	wet := Fbm01(sWet, fx+17, fy-29, 4)
	temp := Fbm01(sTemp, fx-53, fy+11, 3)

	// Широтный уклон (как у биомов).
	lat := clampF(float64(absInt(chunkY))*0.08, 0, 1)
	temp = clampF(temp-lat*0.45, 0, 1)

	// Поле ветра: конечно-разностный градиент крупномасштабного потенциала.
	sWind := rng.HashCombine(base, rng.Tag32("WIND"))
	wfx := float64(chunkX) * 0.17
	wfy := float64(chunkY) * 0.17

	const eps = 0.65
	gx := Fbm01(sWind, wfx+eps, wfy, 3) - Fbm01(sWind, wfx-eps, wfy, 3)
	gy := Fbm01(sWind, wfx, wfy+eps, 3) - Fbm01(sWind, wfx, wfy-eps, 3)
	gmag := absF(gx) + absF(gy)

	dir := dungeon.Vec2i{}
	if gmag > 0.025 {
		if absF(gx) > absF(gy) {
			if gx > 0 {
				dir = dungeon.Vec2i{X: 1}
			} else {
				dir = dungeon.Vec2i{X: -1}
			}
		} else {
			if gy > 0 {
				dir = dungeon.Vec2i{Y: 1}
			} else {
				dir = dungeon.Vec2i{Y: -1}
			}
		}
	}

	strength := 0
	if dir.X != 0 || dir.Y != 0 {
		switch {
		case gmag < 0.055:
			strength = 1
		case gmag < 0.11:
			strength = 2
		default:
			strength = 3
		}
	}

	// Биомный уклон ветра.
	switch biome {
	case BiomeHighlands, BiomeCoast, BiomeBadlands:
		strength = minInt(3, strength+1)
	case BiomeForest, BiomeSwamp:
		strength = maxInt(0, strength-1)
	}

	if strength <= 0 {
		dir = dungeon.Vec2i{}
		strength = 0
	}

	w.WindDir = dir
	w.WindStrength = strength

	// Микровариации для выбора тумана/шторма.
	cloud := Fbm01(rng.HashCombine(base, rng.Tag32("CLOUD")), fx+91, fy-37, 3)
	front := Fbm01(rng.HashCombine(base, rng.Tag32("FRONT")), fx-13, fy+77, 3)

	// База: ясно/ветрено, поверх накладываются осадки и видимость.
	w.Kind = WeatherClear
	if strength >= 2 {
		w.Kind = WeatherWindy
	} else if strength == 1 {
		w.Kind = WeatherBreezy
	}

	arid := biome == BiomeDesert || biome == BiomeBadlands

	// Пыльные бури: сушь + сильный ветер + облачность.
	if arid && strength >= 2 && wet < 0.30 && cloud > 0.55 {
		w.Kind = WeatherDust
	}

	// Снег: холод + влага.
	if temp < 0.22 && wet > 0.38 {
		w.Kind = WeatherSnow
	}

	// Туман: влажные биомы, почти штиль, пик облачности.
	humidBiome := biome == BiomeSwamp || biome == BiomeCoast || biome == BiomeForest
	if humidBiome && wet > 0.55 && strength <= 1 && cloud > 0.52 {
		w.Kind = WeatherFog
	}

	// Дождь: влажный климат (если еще не снег).
	if w.Kind != WeatherSnow && wet > 0.62 && temp > 0.18 && cloud > 0.46 {
		w.Kind = WeatherRain
	}

	// Шторм: влага + ветер + пик фронта (не в пустынях, не поверх снега).
	if w.Kind != WeatherSnow && !arid && wet > 0.60 && strength >= 2 && front > 0.62 {
		w.Kind = WeatherStorm
	}

	switch w.Kind {
	case WeatherFog:
		w.FovPenalty = 3
	case WeatherDust:
		w.FovPenalty = 2
	case WeatherSnow:
		w.FovPenalty = 2
		w.FireQuench = 1
		w.BurnQuench = 1
	case WeatherRain:
		w.FovPenalty = 1
		w.FireQuench = 2
		w.BurnQuench = 1
	case WeatherStorm:
		w.FovPenalty = 2
		w.FireQuench = 3
		w.BurnQuench = 2
	}

	return w
}

// PrevailingWind - господствующий ветер забега для орографической коррекции
// влажности: одно кардинальное направление на весь мир.
func PrevailingWind(runSeed uint32) dungeon.Vec2i {
	h := rng.Hash32(rng.HashCombine(runSeed, rng.Tag32("OW_WIND_PREVAIL")))
	switch h % 4 {
	case 0:
		return dungeon.Vec2i{X: 1}
	case 1:
		return dungeon.Vec2i{X: -1}
	case 2:
		return dungeon.Vec2i{Y: 1}
	default:
		return dungeon.Vec2i{Y: -1}
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
