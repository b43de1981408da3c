package layer

import (
	"fmt"
)

// Registry holds a document's layers in bottom-to-top order plus the active
// layer. Each document owns its own registry.
type Registry struct {
	layers []*Agent
	active string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Len returns the number of layers.
func (r *Registry) Len() int { return len(r.layers) }

// Get looks a layer up by id.
func (r *Registry) Get(id string) (*Agent, error) {
	for _, a := range r.layers {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
}

// IndexOf returns the position of id, or -1.
func (r *Registry) IndexOf(id string) int {
	for i, a := range r.layers {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Layers returns the layers bottom-to-top. The slice must not be modified.
func (r *Registry) Layers() []*Agent { return r.layers }

// Order returns the layer ids bottom-to-top.
func (r *Registry) Order() []string {
	ids := make([]string, len(r.layers))
	for i, a := range r.layers {
		ids[i] = a.ID
	}
	return ids
}

// Insert places a at index (clamped). The first layer becomes active.
func (r *Registry) Insert(a *Agent, index int) {
	if index < 0 || index > len(r.layers) {
		index = len(r.layers)
	}
	r.layers = append(r.layers, nil)
	copy(r.layers[index+1:], r.layers[index:])
	r.layers[index] = a
	if r.active == "" {
		r.active = a.ID
	}
}

// Remove deletes id and returns the agent with its former index. When the
// active layer is removed the layer below it (or the new bottom) becomes
// active.
func (r *Registry) Remove(id string) (*Agent, int, error) {
	i := r.IndexOf(id)
	if i < 0 {
		return nil, -1, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	a := r.layers[i]
	r.layers = append(r.layers[:i], r.layers[i+1:]...)
	if r.active == id {
		r.active = ""
		if len(r.layers) > 0 {
			r.active = r.layers[max(i-1, 0)].ID
		}
	}
	return a, i, nil
}

// SetOrder reorders the layers to match ids, which must be a permutation
// of the current ids.
func (r *Registry) SetOrder(ids []string) error {
	if len(ids) != len(r.layers) {
		return fmt.Errorf("layer order has %d ids, registry has %d layers", len(ids), len(r.layers))
	}
	next := make([]*Agent, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("duplicate layer id %s in order", id)
		}
		seen[id] = true
		a, err := r.Get(id)
		if err != nil {
			return err
		}
		next = append(next, a)
	}
	r.layers = next
	return nil
}

// Active returns the active layer, or ErrLayerNotFound when there is none.
func (r *Registry) Active() (*Agent, error) {
	if r.active == "" {
		return nil, fmt.Errorf("%w: no active layer", ErrLayerNotFound)
	}
	return r.Get(r.active)
}

// ActiveID returns the active layer id.
func (r *Registry) ActiveID() string { return r.active }

// SetActive makes id the active layer.
func (r *Registry) SetActive(id string) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	r.active = id
	return nil
}
