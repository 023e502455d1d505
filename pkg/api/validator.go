package api

import (
	"errors"
	"fmt"
)

// Границы запросов: защищают сервер от заведомо бессмысленной генерации.
const (
	maxFovRadius   = 40
	maxChunkCoord  = 1 << 20
	knownOpsString = "FLOOR, CHUNK, FOV, SNEAK, HASH"
)

// Validate проверяет команду до того, как она попадет в движок.
func (c ClientCommand) Validate(maxDepth int) error {
	switch c.Op {
	case "FLOOR":
		if c.Depth < 1 || c.Depth > maxDepth {
			return fmt.Errorf("depth %d outside [1,%d]", c.Depth, maxDepth)
		}
	case "CHUNK":
		if c.Cx < -maxChunkCoord || c.Cx > maxChunkCoord ||
			c.Cy < -maxChunkCoord || c.Cy > maxChunkCoord {
			return errors.New("chunk coordinates out of range")
		}
	case "FOV":
		if c.Depth < 1 || c.Depth > maxDepth {
			return fmt.Errorf("depth %d outside [1,%d]", c.Depth, maxDepth)
		}
		if c.Radius < 0 || c.Radius > maxFovRadius {
			return fmt.Errorf("radius %d outside [0,%d]", c.Radius, maxFovRadius)
		}
		if c.X < 0 || c.Y < 0 {
			return errors.New("fov origin must be non-negative")
		}
	case "SNEAK", "HASH":
		// Без параметров.
	default:
		return fmt.Errorf("unknown op %q (known: %s)", c.Op, knownOpsString)
	}
	return nil
}
