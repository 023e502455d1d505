package engine

import (
	"fmt"
	"sync"

	"deepdelve-server/pkg/api"
	"deepdelve-server/pkg/dungeon"
	"deepdelve-server/pkg/logger"
)

// GameService владеет забегами и переводит команды протокола в вызовы
// движка. Вебсокет-слой не знает про Instance напрямую.
type GameService struct {
	Cfg Config

	mu        sync.Mutex
	Instances map[int]*Instance
	nextID    int
}

// NewService создает сервис и первый забег на мастер-сиде конфига.
func NewService(cfg Config) *GameService {
	s := &GameService{
		Cfg:       cfg,
		Instances: make(map[int]*Instance),
		nextID:    1,
	}
	s.CreateInstance()
	return s
}

// CreateInstance запускает новый забег на том же мастер-сиде.
func (s *GameService) CreateInstance() *Instance {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	inst := NewInstance(id, s.Cfg)

	s.mu.Lock()
	s.Instances[id] = inst
	s.mu.Unlock()

	logger.Log.WithField("instance", id).Info("Instance created")
	return inst
}

// Instance возвращает забег по ID (nil, если такого нет).
func (s *GameService) Instance(id int) *Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Instances[id]
}

// Default возвращает главный забег сервиса.
func (s *GameService) Default() *Instance {
	return s.Instance(1)
}

// HandleCommand выполняет команду протокола над забегом и собирает ответ.
// Все ошибки сворачиваются в ответ типа ERROR, паник нет.
func (s *GameService) HandleCommand(inst *Instance, cmd api.ClientCommand) api.ServerResponse {
	if inst == nil {
		return errorResponse("no active instance")
	}
	if err := cmd.Validate(inst.Cfg.MaxDepth); err != nil {
		return errorResponse(err.Error())
	}

	switch cmd.Op {
	case "FLOOR":
		d, style := inst.Floor(cmd.Depth)
		return api.ServerResponse{Type: "FLOOR", Floor: api.FloorViewOf(cmd.Depth, style.Name(), d)}

	case "CHUNK":
		c := inst.Chunk(cmd.Cx, cmd.Cy)
		return api.ServerResponse{Type: "CHUNK", Chunk: api.ChunkViewOf(c)}

	case "FOV":
		d, _ := inst.Floor(cmd.Depth)
		origin := dungeon.Vec2i{X: cmd.X, Y: cmd.Y}
		if !d.InBounds(origin.X, origin.Y) {
			return errorResponse(fmt.Sprintf("origin (%d,%d) outside the %dx%d floor",
				origin.X, origin.Y, d.Width, d.Height))
		}
		return api.ServerResponse{Type: "FOV", Fov: api.FovViewOf(cmd.Depth, origin, cmd.Radius, d)}

	case "SNEAK":
		inst.SetSneak(cmd.Enabled)
		return api.ServerResponse{Type: "SNEAK", Sneak: cmd.Enabled}

	case "HASH":
		return api.ServerResponse{Type: "HASH", Hash: fmt.Sprintf("%016x", inst.DeterminismHash())}
	}

	return errorResponse("unknown op " + cmd.Op)
}

func errorResponse(msg string) api.ServerResponse {
	return api.ServerResponse{Type: "ERROR", Error: msg}
}
