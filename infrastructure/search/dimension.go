package search

import (
	"fmt"
	"sync"

	"github.com/helixml/moviesearch/domain/search"
)

// dimension tracks the vector length a store accepts. Zero means unknown
// until the first write or the first lookup of stored rows fixes it.
type dimension struct {
	mu    sync.Mutex
	value int
}

func (d *dimension) get() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

func (d *dimension) learn(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.value == 0 {
		d.value = n
	}
}

// check validates v, fixing the dimension from it when still unknown.
func (d *dimension) check(v search.Vector) error {
	if v.IsZero() {
		return fmt.Errorf("%w: empty vector", search.ErrDimensionMismatch)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.value == 0 {
		d.value = v.Dimension()
		return nil
	}
	return v.CheckDimension(d.value)
}
