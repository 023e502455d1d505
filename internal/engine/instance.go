package engine

import (
	"fmt"
	"sync"

	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/logger"
	"deepdelve-server/pkg/overworld"
	"deepdelve-server/pkg/rng"

	"github.com/sirupsen/logrus"
)

// floorState - этаж вместе с его следовым полем запаха. Запах живет столько
// же, сколько закешированный этаж: ушел с этажа - след остался и ждет.
type floorState struct {
	Level *dungeon.Dungeon
	Style dungeon.LayoutStyle
	Scent []uint8
}

// Instance представляет собой один изолированный забег: мастер-сид, кеш
// сгенерированных этажей и чанков, игровой RNG и переключатели состояния.
//
// Генерация каждого этажа работает на собственном RNG, выведенном из
// мастер-сида и глубины. Игровой поток (Rng) в генерацию не подмешивается:
// перегенерация этажа никогда не сдвигает игровые броски.
type Instance struct {
	ID  int
	Cfg Config

	mu     sync.Mutex
	floors map[int]*floorState
	chunks map[[2]int]*overworld.Chunk

	// Rng - игровой поток (бои, лут). Отделен от потоков генерации.
	Rng *rng.RNG

	CurrentDepth int
	Sneak        bool
}

// NewInstance создает забег и сразу генерирует первый этаж.
func NewInstance(id int, cfg Config) *Instance {
	if cfg.MaxDepth < 1 {
		cfg.MaxDepth = 1
	}
	if cfg.MapW < 8 || cfg.MapH < 8 {
		cfg.MapW, cfg.MapH = 80, 48
	}

	i := &Instance{
		ID:           id,
		Cfg:          cfg,
		floors:       make(map[int]*floorState),
		chunks:       make(map[[2]int]*overworld.Chunk),
		Rng:          rng.New(rng.HashCombine(cfg.Seed, rng.Tag32("DD_PLAY"))),
		CurrentDepth: 1,
	}
	i.Floor(1)
	return i
}

// floorSeed выводит сид этажа из мастер-сида и глубины.
func (i *Instance) floorSeed(depth int) uint32 {
	return rng.HashCombine(i.Cfg.Seed, rng.Tag32("DD_FLOOR"), uint32(depth))
}

// Floor возвращает этаж на нужной глубине, генерируя и кешируя при первом
// обращении. Глубина вне [1, MaxDepth] прижимается к границе.
func (i *Instance) Floor(depth int) (*dungeon.Dungeon, dungeon.LayoutStyle) {
	if depth < 1 {
		depth = 1
	}
	if depth > i.Cfg.MaxDepth {
		depth = i.Cfg.MaxDepth
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	return i.floorLocked(depth)
}

func (i *Instance) floorLocked(depth int) (*dungeon.Dungeon, dungeon.LayoutStyle) {
	if fs, ok := i.floors[depth]; ok {
		return fs.Level, fs.Style
	}

	r := rng.New(i.floorSeed(depth))
	style := dungeon.StyleForDepth(r, depth, i.Cfg.MaxDepth)

	d := dungeon.New(i.Cfg.MapW, i.Cfg.MapH)
	d.GenerateStyled(r, depth, i.Cfg.MaxDepth, style)
	d.EnsureMaterials(i.Cfg.Seed, depth, i.Cfg.MaxDepth)

	i.floors[depth] = &floorState{
		Level: d,
		Style: style,
		Scent: make([]uint8, i.Cfg.MapW*i.Cfg.MapH),
	}

	logger.Log.WithFields(logrus.Fields{
		"instance": i.ID,
		"depth":    depth,
		"style":    style.Name(),
		"rooms":    len(d.Rooms),
	}).Debug("Floor generated")

	return d, style
}

// EvictFloor выбрасывает этаж из кеша. Следующий Floor той же глубины
// сгенерирует побайтно идентичный этаж (но чистое поле запаха).
func (i *Instance) EvictFloor(depth int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.floors, depth)
}

// Chunk возвращает чанк внешнего мира, генерируя и кешируя при первом
// обращении.
func (i *Instance) Chunk(cx, cy int) *overworld.Chunk {
	i.mu.Lock()
	defer i.mu.Unlock()

	key := [2]int{cx, cy}
	if c, ok := i.chunks[key]; ok {
		return c
	}

	c := overworld.GenerateChunk(i.Cfg.Seed, cx, cy, i.Cfg.MapW, i.Cfg.MapH, i.Cfg.MaxDepth)
	i.chunks[key] = c

	logger.Log.WithFields(logrus.Fields{
		"instance": i.ID,
		"chunk":    fmt.Sprintf("(%d,%d)", cx, cy),
		"biome":    c.Profile.Biome.Name(),
		"name":     c.Name,
	}).Debug("Chunk generated")

	return c
}

// SetSneak переключает скрытное передвижение. В скрытности шаги тише и
// оставляют меньше запаха.
func (i *Instance) SetSneak(on bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Sneak = on
}

// Сила следа запаха за один ход.
const (
	scentDepositNormal = 220
	scentDepositSneak  = 110
)

// ScentStep продвигает поле запаха этажа на один ход с депозитом в позиции
// актора. Материал клетки влияет на затухание и растекание.
func (i *Instance) ScentStep(depth int, pos dungeon.Vec2i) {
	i.mu.Lock()
	defer i.mu.Unlock()

	fs, ok := i.floors[depth]
	if !ok {
		return
	}
	d := fs.Level

	deposit := uint8(scentDepositNormal)
	if i.Sneak {
		deposit = scentDepositSneak
	}

	dungeon.UpdateScentField(d.Width, d.Height, fs.Scent, pos, deposit,
		d.IsWalkable,
		func(x, y int) dungeon.ScentCellFx { return d.MaterialAt(x, y).ScentFx() },
		dungeon.DefaultScentParams())
}

// ScentAt возвращает уровень запаха в клетке этажа (0 для незагруженного).
func (i *Instance) ScentAt(depth int, pos dungeon.Vec2i) uint8 {
	i.mu.Lock()
	defer i.mu.Unlock()

	fs, ok := i.floors[depth]
	if !ok || !fs.Level.InBounds(pos.X, pos.Y) {
		return 0
	}
	return fs.Scent[pos.Y*fs.Level.Width+pos.X]
}

// Базовая громкость шага (бюджет распространения по карте стоимости).
const (
	stepNoiseNormal = 10
	stepNoiseSneak  = 5
)

// StepNoiseMap строит карту слышимости шага в позиции актора: материал пола
// добавляет хруст, скрытность срезает базу.
func (i *Instance) StepNoiseMap(depth int, pos dungeon.Vec2i) ([]int, int) {
	i.mu.Lock()
	defer i.mu.Unlock()

	fs, ok := i.floors[depth]
	if !ok {
		return nil, 0
	}
	d := fs.Level

	loudness := stepNoiseNormal
	if i.Sneak {
		loudness = stepNoiseSneak
	}
	loudness += d.MaterialAt(pos.X, pos.Y).Fx().FootstepNoiseDelta
	if loudness < 1 {
		loudness = 1
	}

	return d.ComputeSoundMap(pos, loudness), loudness
}

// DeterminismHash сворачивает все этажи забега в один 64-битный отпечаток.
// Не входящие в кеш этажи генерируются по дороге: отпечаток зависит только
// от сида и конфига, не от порядка посещения.
func (i *Instance) DeterminismHash() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()

	h := uint64(fnvOffset64)
	h = fnvInt(h, int(i.Cfg.Seed))
	h = fnvInt(h, i.Cfg.MaxDepth)
	for depth := 1; depth <= i.Cfg.MaxDepth; depth++ {
		d, _ := i.floorLocked(depth)
		h = HashFloor(h, depth, d)
	}
	return h
}
