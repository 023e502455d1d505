package dungeon

// Модель тайлов и этажа подземелья.
//
// Dungeon - это плоская POD-структура: тайлы row-major, комнаты и лестницы
// хранятся координатами/индексами, без указателей. Слой персистентности
// сериализует ее как есть.

// TileKind - закрытый enum типов тайлов.
//
// ВАЖНО: порядок append-only. Численные значения попадают в сейвы и в
// determinism-хеш, переупорядочивать нельзя, только дописывать в конец.
type TileKind uint8

const (
	TileWall TileKind = iota
	TileFloor
	TileDoorClosed
	TileDoorOpen
	TileStairsUp
	TileStairsDown
	// Append-only: скрыта, пока не найдена обыском.
	TileDoorSecret
	// Append-only: видима, но требует ключ.
	TileDoorLocked
	// Append-only: непроходимый провал, НЕ блокирующий обзор.
	TileChasm
	// Append-only: колонна, блокирует и движение, и обзор.
	TilePillar
	// Append-only: валун; блокирует движение, но НЕ обзор.
	TileBoulder
	// Append-only: проходимый декоративный фонтан.
	TileFountain
	// Append-only: проходимый алтарь (маркер комнат-святилищ).
	TileAltar
)

// Name возвращает имя типа тайла (для логов и отладочных дампов).
func (t TileKind) Name() string {
	switch t {
	case TileWall:
		return "WALL"
	case TileFloor:
		return "FLOOR"
	case TileDoorClosed:
		return "DOOR_CLOSED"
	case TileDoorOpen:
		return "DOOR_OPEN"
	case TileStairsUp:
		return "STAIRS_UP"
	case TileStairsDown:
		return "STAIRS_DOWN"
	case TileDoorSecret:
		return "DOOR_SECRET"
	case TileDoorLocked:
		return "DOOR_LOCKED"
	case TileChasm:
		return "CHASM"
	case TilePillar:
		return "PILLAR"
	case TileBoulder:
		return "BOULDER"
	case TileFountain:
		return "FOUNTAIN"
	case TileAltar:
		return "ALTAR"
	default:
		return "WALL"
	}
}

// Tile - одна клетка карты.
// Visible пересчитывается каждым проходом FOV и не сохраняется между ходами.
// Explored монотонный: однажды true - навсегда true.
type Tile struct {
	Kind     TileKind `json:"kind"`
	Visible  bool     `json:"visible"`
	Explored bool     `json:"explored"`
}

// RoomKind - семантический тип комнаты. Порядок append-only (см. TileKind).
type RoomKind uint8

const (
	RoomNormal RoomKind = iota
	RoomTreasure
	RoomLair
	RoomShrine
	// Append-only: скрытая сокровищница за секретной дверью.
	RoomSecret
	// Append-only: видимая сокровищница за запертой дверью.
	RoomVault
	// Append-only: лавка торговца.
	RoomShop
	// --- Тематические комнаты (append-only) ---
	RoomArmory     // оружие / броня
	RoomLibrary    // свитки / жезлы
	RoomLaboratory // зелья / странные опасности
)

// Name возвращает имя типа комнаты.
func (k RoomKind) Name() string {
	switch k {
	case RoomNormal:
		return "NORMAL"
	case RoomTreasure:
		return "TREASURE"
	case RoomLair:
		return "LAIR"
	case RoomShrine:
		return "SHRINE"
	case RoomSecret:
		return "SECRET"
	case RoomVault:
		return "VAULT"
	case RoomShop:
		return "SHOP"
	case RoomArmory:
		return "ARMORY"
	case RoomLibrary:
		return "LIBRARY"
	case RoomLaboratory:
		return "LABORATORY"
	default:
		return "NORMAL"
	}
}

// Vec2i - целочисленная точка/направление.
type Vec2i struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Manhattan возвращает манхэттенское расстояние до другой точки.
func (v Vec2i) Manhattan(o Vec2i) int {
	return absInt(v.X-o.X) + absInt(v.Y-o.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Room - осеориентированный прямоугольник комнаты.
// Футпринт полуоткрытый: [X, X2) x [Y, Y2).
type Room struct {
	X    int      `json:"x"`
	Y    int      `json:"y"`
	W    int      `json:"w"`
	H    int      `json:"h"`
	Kind RoomKind `json:"kind"`
}

func (r Room) X2() int { return r.X + r.W }
func (r Room) Y2() int { return r.Y + r.H }
func (r Room) CX() int { return r.X + r.W/2 }
func (r Room) CY() int { return r.Y + r.H/2 }

// Contains проверяет, попадает ли точка внутрь комнаты.
func (r Room) Contains(px, py int) bool {
	return px >= r.X && px < r.X2() && py >= r.Y && py < r.Y2()
}

// Intersects проверяет пересечение с другой комнатой.
func (r Room) Intersects(o Room) bool {
	return !(r.X2() <= o.X || o.X2() <= r.X || r.Y2() <= o.Y || o.Y2() <= r.Y)
}

// Размер карты по умолчанию.
// Крупнее, чем минимально нужно генераторам: длинные коридоры и большие
// комнаты без тесноты.
const (
	DefaultW = 105
	DefaultH = 66
)

// Dungeon - один этаж: тайлы, комнаты, лестницы и телеметрия генерации.
type Dungeon struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"` // row-major: Tiles[y*Width+x]

	Rooms []Room `json:"rooms"`

	StairsUp   Vec2i `json:"stairsUp"`
	StairsDown Vec2i `json:"stairsDown"` // {-1,-1} на финальном этаже (санктум)

	// Телеметрия генерации (не сериализуется, только для логов/тестов).
	BraidTunnelCount int `json:"-"`
	SculptEditCount  int `json:"-"`
	ChamberCount     int `json:"-"`
	MazeBreakCount   int `json:"-"`
	AnnexWfcCount    int `json:"-"`
	ChasmCount       int `json:"-"`
	PillarCount      int `json:"-"`
	BoulderCount     int `json:"-"`

	// Ленивый кеш материалов подложки (см. EnsureMaterials).
	materials    []Material
	biolum       []float64
	materialsKey uint32
}

// New создает этаж заданного размера, залитый стеной.
func New(w, h int) *Dungeon {
	d := &Dungeon{Width: w, Height: h}
	d.Tiles = make([]Tile, w*h)
	d.StairsUp = Vec2i{-1, -1}
	d.StairsDown = Vec2i{-1, -1}
	return d
}

// InBounds проверяет попадание координат в карту.
func (d *Dungeon) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < d.Width && y < d.Height
}

// At возвращает указатель на тайл. Вызывающий обязан проверить границы.
func (d *Dungeon) At(x, y int) *Tile {
	return &d.Tiles[y*d.Width+x]
}

// KindAt возвращает тип тайла, Wall за границами карты.
func (d *Dungeon) KindAt(x, y int) TileKind {
	if !d.InBounds(x, y) {
		return TileWall
	}
	return d.Tiles[y*d.Width+x].Kind
}

// IsWalkable: можно ли встать на клетку прямо сейчас (закрытые двери - нет).
func (d *Dungeon) IsWalkable(x, y int) bool {
	switch d.KindAt(x, y) {
	case TileFloor, TileDoorOpen, TileStairsUp, TileStairsDown, TileFountain, TileAltar:
		return true
	default:
		return false
	}
}

// IsPassable: проходимость для планирования пути (закрытую дверь можно открыть).
// Запертые и секретные двери непроходимы.
func (d *Dungeon) IsPassable(x, y int) bool {
	switch d.KindAt(x, y) {
	case TileFloor, TileDoorOpen, TileDoorClosed, TileStairsUp, TileStairsDown, TileFountain, TileAltar:
		return true
	default:
		return false
	}
}

// isTraversableEventually: проходимость для валидатора связности. Дверь в
// любом состоянии считается проходимой: запертую отпирают ключом, секретную
// находят, поэтому этаж за ними не считается отрезанным.
func (d *Dungeon) isTraversableEventually(x, y int) bool {
	switch d.KindAt(x, y) {
	case TileFloor, TileDoorOpen, TileDoorClosed, TileDoorLocked, TileDoorSecret,
		TileStairsUp, TileStairsDown, TileFountain, TileAltar:
		return true
	default:
		return false
	}
}

// IsOpaque: блокирует ли клетка обзор.
// Провалы и валуны обзор НЕ блокируют - это именно их отличие от стен.
func (d *Dungeon) IsOpaque(x, y int) bool {
	switch d.KindAt(x, y) {
	case TileWall, TileDoorClosed, TileDoorLocked, TileDoorSecret, TilePillar:
		return true
	default:
		return false
	}
}

func isDoorKind(t TileKind) bool {
	return t == TileDoorClosed || t == TileDoorOpen || t == TileDoorLocked || t == TileDoorSecret
}

func isStairsKind(t TileKind) bool {
	return t == TileStairsUp || t == TileStairsDown
}

// IsDoorClosed проверяет закрытую (но не запертую) дверь.
func (d *Dungeon) IsDoorClosed(x, y int) bool {
	return d.KindAt(x, y) == TileDoorClosed
}

// IsDoorLocked проверяет запертую дверь.
func (d *Dungeon) IsDoorLocked(x, y int) bool {
	return d.KindAt(x, y) == TileDoorLocked
}

// OpenDoor открывает закрытую дверь.
func (d *Dungeon) OpenDoor(x, y int) {
	if d.KindAt(x, y) == TileDoorClosed {
		d.At(x, y).Kind = TileDoorOpen
	}
}

// CloseDoor закрывает открытую дверь.
func (d *Dungeon) CloseDoor(x, y int) {
	if d.KindAt(x, y) == TileDoorOpen {
		d.At(x, y).Kind = TileDoorClosed
	}
}

// LockDoor запирает закрытую дверь.
func (d *Dungeon) LockDoor(x, y int) {
	if d.KindAt(x, y) == TileDoorClosed {
		d.At(x, y).Kind = TileDoorLocked
	}
}

// UnlockDoor снимает замок (дверь остается закрытой).
func (d *Dungeon) UnlockDoor(x, y int) {
	if d.KindAt(x, y) == TileDoorLocked {
		d.At(x, y).Kind = TileDoorClosed
	}
}

// IsDiggable: можно ли прокопать клетку (стены, колонны, двери).
// Внешний периметр не копается никогда.
func (d *Dungeon) IsDiggable(x, y int) bool {
	if !d.InBounds(x, y) {
		return false
	}
	if x == 0 || y == 0 || x == d.Width-1 || y == d.Height-1 {
		return false
	}
	switch d.KindAt(x, y) {
	case TileWall, TilePillar, TileDoorClosed, TileDoorOpen, TileDoorLocked, TileDoorSecret:
		return true
	default:
		return false
	}
}

// Dig превращает копаемую клетку в пол. Возвращает true, если клетка изменилась.
func (d *Dungeon) Dig(x, y int) bool {
	if !d.IsDiggable(x, y) {
		return false
	}
	d.At(x, y).Kind = TileFloor
	return true
}

// RoomKindAt возвращает тип комнаты, содержащей точку.
// Комнаты проверяются по порядку, поэтому специальные под-комнаты должны
// лежать в списке раньше общих.
func (d *Dungeon) RoomKindAt(x, y int) (RoomKind, bool) {
	for _, r := range d.Rooms {
		if r.Contains(x, y) {
			return r.Kind, true
		}
	}
	return RoomNormal, false
}

// RevealAll помечает всю карту исследованной (читы/отладка).
func (d *Dungeon) RevealAll() {
	for i := range d.Tiles {
		d.Tiles[i].Explored = true
	}
}
