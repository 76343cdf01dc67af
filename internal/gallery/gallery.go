// Package gallery holds the state of the photo grid: which cells have come
// close enough to the viewport to load, and which photo is open full screen.
package gallery

import (
	"fmt"
	"sync"
)

// RootMargin is how far ahead of the viewport a cell starts loading.
const RootMargin = "200px"

// Watcher reports when a cell approaches the viewport. Observe must call
// onVisible at most once per registration.
type Watcher interface {
	Observe(index int, onVisible func(index int))
	Unobserve(index int)
}

// Cell is what the page renders for one grid position.
type Cell struct {
	Index  int
	URL    string
	Loaded bool
}

// Grid is the gallery's view state.
type Grid struct {
	images []string

	mu       sync.Mutex
	loaded   map[int]struct{}
	watcher  Watcher
	selected int
}

// NewGrid copies the image list; order is fixed from here on.
func NewGrid(images []string) *Grid {
	return &Grid{
		images:   append([]string(nil), images...),
		loaded:   make(map[int]struct{}),
		selected: -1,
	}
}

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.images) }

// Mount registers every cell that has not loaded yet with w.
func (g *Grid) Mount(w Watcher) {
	g.mu.Lock()
	g.watcher = w
	var pending []int
	for i := range g.images {
		if _, ok := g.loaded[i]; !ok {
			pending = append(pending, i)
		}
	}
	g.mu.Unlock()

	for _, i := range pending {
		w.Observe(i, g.visible)
	}
}

// Unmount drops every remaining registration.
func (g *Grid) Unmount() {
	g.mu.Lock()
	w := g.watcher
	g.watcher = nil
	var pending []int
	for i := range g.images {
		if _, ok := g.loaded[i]; !ok {
			pending = append(pending, i)
		}
	}
	g.mu.Unlock()

	if w == nil {
		return
	}
	for _, i := range pending {
		w.Unobserve(i)
	}
}

func (g *Grid) visible(index int) {
	g.mu.Lock()
	if index < 0 || index >= len(g.images) {
		g.mu.Unlock()
		return
	}
	if _, ok := g.loaded[index]; ok {
		g.mu.Unlock()
		return
	}
	g.loaded[index] = struct{}{}
	w := g.watcher
	g.mu.Unlock()

	if w != nil {
		w.Unobserve(index)
	}
}

// Loaded reports whether the cell renders its image.
func (g *Grid) Loaded(index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.loaded[index]
	return ok
}

// Cells returns the render list in order.
func (g *Grid) Cells() []Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	cells := make([]Cell, len(g.images))
	for i, url := range g.images {
		_, ok := g.loaded[i]
		cells[i] = Cell{Index: i, URL: url, Loaded: ok}
	}
	return cells
}

// Select opens the full-screen preview for a cell.
func (g *Grid) Select(index int) error {
	if index < 0 || index >= len(g.images) {
		return fmt.Errorf("gallery has no photo %d", index)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selected = index
	return nil
}

// Dismiss closes the preview.
func (g *Grid) Dismiss() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selected = -1
}

// Preview returns the image shown full screen, if any.
func (g *Grid) Preview() (Cell, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selected < 0 {
		return Cell{}, false
	}
	_, ok := g.loaded[g.selected]
	return Cell{Index: g.selected, URL: g.images[g.selected], Loaded: ok}, true
}

// EagerWatcher treats the first Count cells as already in view, which is
// what the server knows about a fresh page. The rest stay registered and are
// reported by the browser.
type EagerWatcher struct {
	Count int

	mu       sync.Mutex
	observed map[int]struct{}
}

// Observe fires immediately for cells above the fold.
func (w *EagerWatcher) Observe(index int, onVisible func(int)) {
	w.mu.Lock()
	if w.observed == nil {
		w.observed = make(map[int]struct{})
	}
	w.observed[index] = struct{}{}
	w.mu.Unlock()

	if index < w.Count {
		onVisible(index)
	}
}

// Unobserve forgets a cell.
func (w *EagerWatcher) Unobserve(index int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.observed, index)
}

// Observed returns the cells still waiting to be seen.
func (w *EagerWatcher) Observed() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]int, 0, len(w.observed))
	for i := range w.observed {
		out = append(out, i)
	}
	return out
}
