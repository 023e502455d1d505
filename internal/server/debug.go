package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"deepdelve-server/internal/engine"
	"deepdelve-server/pkg/api"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка
type DebugHandler struct {
	Service *engine.GameService
}

func NewDebugHandler(s *engine.GameService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/floor", h.handleDumpFloor)
	mux.HandleFunc("/debug/chunk", h.handleDumpChunk)
	mux.HandleFunc("/debug/hash", h.handleHash)
}

// /debug/floor?depth=3 - ASCII-дамп этажа (для глаз, не для клиентов)
func (h *DebugHandler) handleDumpFloor(w http.ResponseWriter, r *http.Request) {
	inst := h.Service.Default()
	if inst == nil {
		http.Error(w, "no active instance", http.StatusNotFound)
		return
	}

	var depth int
	fmt.Sscanf(r.URL.Query().Get("depth"), "%d", &depth)
	if depth < 1 {
		depth = 1
	}

	d, style := inst.Floor(depth)
	view := api.GridViewOf(d)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "depth %d  style %s  rooms %d\n", depth, style.Name(), len(d.Rooms))
	fmt.Fprintln(w, strings.Join(view.Rows, "\n"))
}

// /debug/chunk?cx=1&cy=-2 - ASCII-дамп чанка внешнего мира
func (h *DebugHandler) handleDumpChunk(w http.ResponseWriter, r *http.Request) {
	inst := h.Service.Default()
	if inst == nil {
		http.Error(w, "no active instance", http.StatusNotFound)
		return
	}

	var cx, cy int
	fmt.Sscanf(r.URL.Query().Get("cx"), "%d", &cx)
	fmt.Sscanf(r.URL.Query().Get("cy"), "%d", &cy)

	c := inst.Chunk(cx, cy)
	view := api.GridViewOf(c.Grid)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s  biome %s  weather %s  danger %d\n",
		c.Name, c.Profile.Biome.Name(), c.Weather.Kind.Name(), c.Profile.DangerDepth)
	fmt.Fprintln(w, strings.Join(view.Rows, "\n"))
}

// /debug/hash - отпечаток детерминизма текущего забега
func (h *DebugHandler) handleHash(w http.ResponseWriter, r *http.Request) {
	inst := h.Service.Default()
	if inst == nil {
		http.Error(w, "no active instance", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{
		"hash": fmt.Sprintf("%016x", inst.DeterminismHash()),
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		w.Write([]byte("[]"))
		return
	}

	json.NewEncoder(w).Encode(data)
}
