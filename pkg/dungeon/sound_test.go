package dungeon

import "testing"

func TestSoundMap_DistanceAndDoors(t *testing.T) {
	d := openArena(21, 9)
	// Стена с закрытой дверью посередине.
	for y := 1; y < 8; y++ {
		d.At(10, y).Kind = TileWall
	}
	d.At(10, 4).Kind = TileDoorClosed

	src := Vec2i{X: 8, Y: 4}
	dist := d.ComputeSoundMap(src, -1)

	if dist[4*21+8] != 0 {
		t.Fatalf("source distance = %d, expected 0", dist[4*21+8])
	}
	// Шаг на пол стоит 1, через закрытую дверь - 2.
	if got := dist[4*21+9]; got != 1 {
		t.Errorf("adjacent floor: got %d, expected 1", got)
	}
	if got := dist[4*21+10]; got != 3 {
		t.Errorf("closed door: got %d, expected 1+2=3", got)
	}
	if got := dist[4*21+11]; got != 4 {
		t.Errorf("behind the door: got %d, expected 4", got)
	}
}

func TestSoundMap_WallsSilent(t *testing.T) {
	d := openArena(15, 15)
	// Полностью замурованная камера.
	for y := 2; y <= 6; y++ {
		for x := 2; x <= 6; x++ {
			d.At(x, y).Kind = TileWall
		}
	}
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			d.At(x, y).Kind = TileFloor
		}
	}

	dist := d.ComputeSoundMap(Vec2i{X: 10, Y: 10}, -1)
	if dist[4*15+4] != -1 {
		t.Errorf("sealed chamber heard the sound: %d", dist[4*15+4])
	}
	if dist[2*15+2] != -1 {
		t.Error("wall tiles must stay unreached")
	}
}

func TestSoundMap_DiagonalCornerRule(t *testing.T) {
	d := openArena(9, 9)
	// Диагональная щель между двумя стенами: звук не просачивается.
	d.At(4, 3).Kind = TileWall
	d.At(3, 4).Kind = TileWall

	dist := d.ComputeSoundMap(Vec2i{X: 3, Y: 3}, -1)
	direct := dist[4*9+4]
	if direct == -1 {
		t.Fatal("open area unexpectedly unreachable")
	}
	// Путь в (4,4) обязан обойти угол: длиннее чистой диагонали.
	if direct < 2 {
		t.Errorf("sound leaked through the blocked diagonal: %d", direct)
	}
}

func TestSoundMap_MaxCost(t *testing.T) {
	d := openArena(31, 31)
	dist := d.ComputeSoundMap(Vec2i{X: 15, Y: 15}, 3)
	if dist[15*31+19] != -1 {
		t.Error("tile beyond maxCost must be unreached")
	}
	if dist[15*31+18] != 3 {
		t.Errorf("tile at maxCost: got %d, expected 3", dist[15*31+18])
	}
}

func TestSoundLoudnessAt(t *testing.T) {
	d := openArena(15, 15)
	dist := d.ComputeSoundMap(Vec2i{X: 7, Y: 7}, 10)

	if got := SoundLoudnessAt(dist, 15, Vec2i{X: 7, Y: 7}, 10); got != 10 {
		t.Errorf("loudness at source: got %d, expected 10", got)
	}
	if got := SoundLoudnessAt(dist, 15, Vec2i{X: 12, Y: 7}, 10); got != 5 {
		t.Errorf("loudness 5 away: got %d, expected 5", got)
	}
	if got := SoundLoudnessAt(dist, 15, Vec2i{X: -1, Y: 0}, 10); got != 0 {
		t.Errorf("loudness out of bounds: got %d, expected 0", got)
	}
}
