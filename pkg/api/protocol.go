package api

import (
	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/overworld"
)

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
// Op определяет запрос, остальные поля читаются по необходимости.
type ClientCommand struct {
	// Op название операции: FLOOR, CHUNK, FOV, SNEAK, HASH.
	Op string `json:"op"`

	// FLOOR / FOV: глубина этажа (1..maxDepth).
	Depth int `json:"depth,omitempty"`

	// CHUNK: координаты чанка внешнего мира.
	Cx int `json:"cx,omitempty"`
	Cy int `json:"cy,omitempty"`

	// FOV: точка обзора и радиус.
	X      int `json:"x,omitempty"`
	Y      int `json:"y,omitempty"`
	Radius int `json:"radius,omitempty"`

	// SNEAK: включить/выключить скрытное передвижение.
	Enabled bool `json:"enabled,omitempty"`
}

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerResponse это корневой объект ответа. Type повторяет Op запроса
// (или "ERROR"); заполнено ровно одно из полей полезной нагрузки.
type ServerResponse struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`

	Floor *FloorView `json:"floor,omitempty"`
	Chunk *ChunkView `json:"chunk,omitempty"`
	Fov   *FovView   `json:"fov,omitempty"`
	Hash  string     `json:"hash,omitempty"`
	Sneak bool       `json:"sneak,omitempty"`
}

// GridView - сетка тайлов, по одному ASCII-глифу на клетку.
// Rows[y][x] соответствует Tiles[y*Width+x] исходной карты.
type GridView struct {
	Width  int      `json:"w"`
	Height int      `json:"h"`
	Rows   []string `json:"rows"`
}

// RoomView - DTO комнаты.
type RoomView struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	Kind string `json:"kind"`
}

// FloorView - полный снимок этажа подземелья.
type FloorView struct {
	Depth      int           `json:"depth"`
	Style      string        `json:"style"`
	Grid       GridView      `json:"grid"`
	Rooms      []RoomView    `json:"rooms"`
	StairsUp   dungeon.Vec2i `json:"stairsUp"`
	StairsDown dungeon.Vec2i `json:"stairsDown"`
}

// ChunkView - полный снимок чанка внешнего мира.
type ChunkView struct {
	Cx      int                      `json:"cx"`
	Cy      int                      `json:"cy"`
	Name    string                   `json:"name"`
	Biome   string                   `json:"biome"`
	Weather string                   `json:"weather"`
	Danger  int                      `json:"danger"`
	Grid    GridView                 `json:"grid"`
	Gates   []dungeon.Vec2i          `json:"gates"`
	Profile overworld.WeatherProfile `json:"weatherProfile"`
}

// FovView - маска видимости из точки.
type FovView struct {
	Depth  int           `json:"depth"`
	Origin dungeon.Vec2i `json:"origin"`
	Radius int           `json:"radius"`
	// Rows[y][x]: '*' видима, '.' нет.
	Rows []string `json:"rows"`
}

// TileGlyph возвращает ASCII-глиф тайла для сеточных DTO и дампов.
func TileGlyph(t dungeon.TileKind) byte {
	switch t {
	case dungeon.TileWall:
		return '#'
	case dungeon.TileFloor:
		return '.'
	case dungeon.TileDoorClosed:
		return '+'
	case dungeon.TileDoorOpen:
		return '\''
	case dungeon.TileStairsUp:
		return '<'
	case dungeon.TileStairsDown:
		return '>'
	case dungeon.TileDoorSecret:
		return '#' // секрет не выдаем
	case dungeon.TileDoorLocked:
		return '*'
	case dungeon.TileChasm:
		return ':'
	case dungeon.TilePillar:
		return 'O'
	case dungeon.TileBoulder:
		return '0'
	case dungeon.TileFountain:
		return '~'
	case dungeon.TileAltar:
		return '_'
	default:
		return '?'
	}
}

// GridViewOf собирает сеточное DTO из карты.
func GridViewOf(d *dungeon.Dungeon) GridView {
	rows := make([]string, d.Height)
	line := make([]byte, d.Width)
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			line[x] = TileGlyph(d.KindAt(x, y))
		}
		rows[y] = string(line)
	}
	return GridView{Width: d.Width, Height: d.Height, Rows: rows}
}

// FloorViewOf собирает DTO этажа.
func FloorViewOf(depth int, style string, d *dungeon.Dungeon) *FloorView {
	rooms := make([]RoomView, 0, len(d.Rooms))
	for _, rm := range d.Rooms {
		rooms = append(rooms, RoomView{X: rm.X, Y: rm.Y, W: rm.W, H: rm.H, Kind: rm.Kind.Name()})
	}
	return &FloorView{
		Depth:      depth,
		Style:      style,
		Grid:       GridViewOf(d),
		Rooms:      rooms,
		StairsUp:   d.StairsUp,
		StairsDown: d.StairsDown,
	}
}

// ChunkViewOf собирает DTO чанка.
func ChunkViewOf(c *overworld.Chunk) *ChunkView {
	return &ChunkView{
		Cx:      c.Profile.X,
		Cy:      c.Profile.Y,
		Name:    c.Name,
		Biome:   c.Profile.Biome.Name(),
		Weather: c.Weather.Kind.Name(),
		Danger:  c.Profile.DangerDepth,
		Grid:    GridViewOf(c.Grid),
		Gates:   c.GatePositions,
		Profile: c.Weather,
	}
}

// FovViewOf собирает DTO маски видимости.
func FovViewOf(depth int, origin dungeon.Vec2i, radius int, d *dungeon.Dungeon) *FovView {
	mask := d.ComputeFovMask(origin, radius)
	rows := make([]string, d.Height)
	line := make([]byte, d.Width)
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			if mask[y*d.Width+x] {
				line[x] = '*'
			} else {
				line[x] = '.'
			}
		}
		rows[y] = string(line)
	}
	return &FovView{Depth: depth, Origin: origin, Radius: radius, Rows: rows}
}
