package engine

import "time"

// Config хранит параметры запуска движка.
type Config struct {
	// Seed - мастер-зерно забега. От него детерминированно зависят все
	// этажи, чанки и имена.
	Seed uint32

	// MaxDepth - глубина последнего этажа (санктума).
	MaxDepth int

	// Размеры этажа подземелья (чанки внешнего мира той же величины).
	MapW int
	MapH int
}

// NewConfig создает конфиг по умолчанию (случайный сид от часов).
func NewConfig() Config {
	return Config{
		Seed:     uint32(time.Now().UnixNano()),
		MaxDepth: 12,
		MapW:     80,
		MapH:     48,
	}
}
