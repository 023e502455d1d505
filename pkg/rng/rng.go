package rng

import "math"

// Детерминированный быстрый RNG (xorshift32) + стабильные хеш-примитивы.
//
// Все процедурные подсистемы (генерация уровней, overworld, палитры материалов,
// именование) получают независимые под-сиды через HashCombine(seed, Tag32("...")),
// поэтому потребление одного потока никогда не влияет на другой.
// Не криптографический.

// RNG - простой xorshift32 генератор с воспроизводимым поведением на всех платформах.
type RNG struct {
	state uint32
}

// New создает генератор. Нулевой сид заменяется фиксированной константой,
// иначе xorshift навсегда застрянет в нуле.
func New(seed uint32) *RNG {
	if seed == 0 {
		seed = 0x12345678
	}
	return &RNG{state: seed}
}

// State возвращает текущее внутреннее состояние (для save/restore изоляции потоков).
func (r *RNG) State() uint32 { return r.state }

// SetState восстанавливает ранее сохраненное состояние.
func (r *RNG) SetState(s uint32) {
	if s == 0 {
		s = 0x12345678
	}
	r.state = s
}

// NextU32 возвращает следующее 32-битное значение.
func (r *RNG) NextU32() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Range возвращает целое в [lo, hiInclusive].
func (r *RNG) Range(lo, hiInclusive int) int {
	if hiInclusive <= lo {
		return lo
	}
	span := uint32(hiInclusive - lo + 1)
	return lo + int(r.NextU32()%span)
}

// Next01 возвращает float в [0, 1).
func (r *RNG) Next01() float64 {
	return float64(r.NextU32()) / (float64(math.MaxUint32) + 1.0)
}

// Chance возвращает true с вероятностью p.
func (r *RNG) Chance(p float64) bool {
	return r.Next01() < p
}

// Hash32 перемешивает 32-битное значение (финализатор в стиле Murmur).
func Hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// HashCombine сводит несколько значений в один стабильный хеш.
// Первые два аргумента обязательны, остальные сворачиваются слева направо.
func HashCombine(a, b uint32, rest ...uint32) uint32 {
	h := Hash32(a ^ (b + 0x9e3779b9 + (a << 6) + (a >> 2)))
	for _, v := range rest {
		h = Hash32(h ^ (v + 0x9e3779b9 + (h << 6) + (h >> 2)))
	}
	return h
}

// Tag32 хеширует строковый тег (FNV-1a) для читаемого разделения доменов сидов.
//
// Пример: s := rng.HashCombine(levelSeed, rng.Tag32("BIOLUM"))
func Tag32(tag string) uint32 {
	h := uint32(2166136261) // FNV offset basis
	for i := 0; i < len(tag); i++ {
		h ^= uint32(tag[i])
		h *= 16777619 // FNV prime
	}
	return h
}

// Rand01 переводит 32-битный хеш в стабильный float в [0, 1).
// Удобно для дешевого детерминированного шума без аллокации RNG.
func Rand01(h uint32) float64 {
	return float64(h) / (float64(math.MaxUint32) + 1.0)
}
