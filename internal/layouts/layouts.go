// internal/layouts/layouts.go
//
// Named static-obstacle layouts.
//
// Layouts are embedded from assets/layouts/*.txt, one "x,y" pair per line,
// with '#' comments. The "classic" layout can be replaced at startup by a
// file on disk (LAYOUT_FILE), in the same format.
//
// A layout is drawn for the default 20x20 grid; Within drops the cells that
// fall outside a smaller board.

package layouts

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/robalobadob/snake/assets"
	"github.com/robalobadob/snake/internal/game"
)

// Classic is the layout name overridden by a layout file.
const Classic = "classic"

// ErrUnknown is returned by Get for a name that is not registered.
var ErrUnknown = errors.New("unknown layout")

// Layout is a named set of static obstacles.
type Layout struct {
	Name      string
	Obstacles []game.Position
}

// Within returns the obstacles that lie on a width x height grid.
func (l Layout) Within(width, height int) []game.Position {
	out := make([]game.Position, 0, len(l.Obstacles))
	for _, p := range l.Obstacles {
		if p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height {
			out = append(out, p)
		}
	}
	return out
}

// Registry holds every loaded layout by name.
type Registry struct {
	byName map[string]Layout
}

// Load reads the embedded layouts. When overridePath is set its contents
// replace the classic layout.
func Load(overridePath string) (*Registry, error) {
	names, err := assets.LayoutNames()
	if err != nil {
		return nil, err
	}
	r := &Registry{byName: make(map[string]Layout, len(names))}
	for _, name := range names {
		lines, err := assets.LayoutLines(name)
		if err != nil {
			return nil, err
		}
		obs, err := parse(lines)
		if err != nil {
			return nil, fmt.Errorf("layout %s: %w", name, err)
		}
		r.byName[name] = Layout{Name: name, Obstacles: obs}
	}

	if overridePath != "" {
		f, err := os.Open(overridePath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		lines, err := assets.ReadLines(f)
		if err != nil {
			return nil, err
		}
		obs, err := parse(lines)
		if err != nil {
			return nil, fmt.Errorf("layout file %s: %w", overridePath, err)
		}
		r.byName[Classic] = Layout{Name: Classic, Obstacles: obs}
	}
	return r, nil
}

// Get returns the layout called name (case-insensitive).
func (r *Registry) Get(name string) (Layout, error) {
	l, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return l, nil
}

// Names lists the registered layouts in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// parse turns "x,y" lines into positions.
func parse(lines []string) ([]game.Position, error) {
	out := make([]game.Position, 0, len(lines))
	for _, line := range lines {
		xs, ys, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("bad line %q", line)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, fmt.Errorf("bad x in %q", line)
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, fmt.Errorf("bad y in %q", line)
		}
		if x < 0 || y < 0 {
			return nil, fmt.Errorf("negative cell in %q", line)
		}
		out = append(out, game.Position{X: x, Y: y})
	}
	return out, nil
}

var (
	initOnce   sync.Once
	defaultReg *Registry
	initErr    error
)

// Init loads the process-wide registry exactly once.
func Init(overridePath string) error {
	initOnce.Do(func() {
		defaultReg, initErr = Load(overridePath)
	})
	return initErr
}

// Default returns the registry built by Init, or nil before Init.
func Default() *Registry { return defaultReg }
