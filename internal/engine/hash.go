package engine

import "deepdelve-server/pkg/dungeon"

// 64-битный FNV-1a. Хеш покрывает все, что обязано быть детерминированным:
// тайлы (включая состояния дверей), комнаты, лестницы. Visible/Explored не
// входят - это состояние наблюдателя, не мира.

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

func fnvByte(h uint64, b byte) uint64 {
	return (h ^ uint64(b)) * fnvPrime64
}

func fnvInt(h uint64, v int) uint64 {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		h = fnvByte(h, byte(u>>(i*8)))
	}
	return h
}

// HashFloor сворачивает один этаж в 64-битный отпечаток.
func HashFloor(h uint64, depth int, d *dungeon.Dungeon) uint64 {
	h = fnvInt(h, depth)
	h = fnvInt(h, d.Width)
	h = fnvInt(h, d.Height)
	for i := range d.Tiles {
		h = fnvByte(h, byte(d.Tiles[i].Kind))
	}
	for _, rm := range d.Rooms {
		h = fnvInt(h, rm.X)
		h = fnvInt(h, rm.Y)
		h = fnvInt(h, rm.W)
		h = fnvInt(h, rm.H)
		h = fnvByte(h, byte(rm.Kind))
	}
	h = fnvInt(h, d.StairsUp.X)
	h = fnvInt(h, d.StairsUp.Y)
	h = fnvInt(h, d.StairsDown.X)
	h = fnvInt(h, d.StairsDown.Y)
	return h
}
