package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"

	"deepdelve-server/internal/engine"
	"deepdelve-server/pkg/api"
	"deepdelve-server/pkg/logger"
)

// Стили глифов карты для терминального дампа.
var (
	styleWall    color.Style
	styleFloor   color.Style
	styleDoor    color.Style
	styleStairs  color.Style
	styleHazard  color.Style
	styleWater   color.Style
	styleSpecial color.Style
)

func initColors() {
	styleWall = color.Style{color.FgGray}
	styleFloor = color.Style{color.FgDefault}
	styleDoor = color.Style{color.FgYellow}
	styleStairs = color.Style{color.FgCyan, color.OpBold}
	styleHazard = color.Style{color.FgRed}
	styleWater = color.Style{color.FgBlue, color.OpBold}
	styleSpecial = color.Style{color.FgMagenta, color.OpBold}
}

func styleFor(glyph byte) color.Style {
	switch glyph {
	case '#', 'O', '0':
		return styleWall
	case '+', '\'', '*':
		return styleDoor
	case '<', '>':
		return styleStairs
	case ':':
		return styleHazard
	case '~':
		return styleWater
	case '_':
		return styleSpecial
	default:
		return styleFloor
	}
}

func printGrid(g api.GridView) {
	var sb strings.Builder
	for _, row := range g.Rows {
		sb.Reset()
		for i := 0; i < len(row); i++ {
			sb.WriteString(styleFor(row[i]).Sprint(string(row[i])))
		}
		fmt.Println(sb.String())
	}
}

func main() {
	var seed uint64
	var depth int
	var chunkAt string
	var w, h, maxDepth int
	flag.Uint64Var(&seed, "seed", 1, "master world seed")
	flag.IntVar(&depth, "depth", 1, "dungeon floor to render")
	flag.StringVar(&chunkAt, "chunk", "", "overworld chunk to render instead, as cx,cy")
	flag.IntVar(&w, "w", 80, "map width")
	flag.IntVar(&h, "h", 48, "map height")
	flag.IntVar(&maxDepth, "maxdepth", 12, "deepest floor of the run")
	flag.Parse()

	logger.Init()
	initColors()

	cfg := engine.Config{Seed: uint32(seed), MaxDepth: maxDepth, MapW: w, MapH: h}
	inst := engine.NewInstance(1, cfg)

	if chunkAt != "" {
		var cx, cy int
		if _, err := fmt.Sscanf(chunkAt, "%d,%d", &cx, &cy); err != nil {
			fmt.Fprintf(os.Stderr, "bad -chunk %q: want cx,cy\n", chunkAt)
			os.Exit(2)
		}
		c := inst.Chunk(cx, cy)
		fmt.Printf("chunk (%d,%d)  %s  [%s]  weather %s  danger %d\n\n",
			cx, cy, c.Name, c.Profile.Biome.Name(), c.Weather.Kind.Name(), c.Profile.DangerDepth)
		printGrid(api.GridViewOf(c.Grid))
		return
	}

	d, style := inst.Floor(depth)
	fmt.Printf("seed %d  depth %d  style %s  rooms %d\n\n", cfg.Seed, depth, style.Name(), len(d.Rooms))
	printGrid(api.GridViewOf(d))
}
