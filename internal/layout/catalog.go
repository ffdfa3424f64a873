package layout

import (
	"errors"
	"fmt"
)

var ErrUnknownLayout = errors.New("unknown layout")

// SlotRole описывает назначение ячейки шаблона
type SlotRole int

const (
	// RoleContent holds a real media item (or its placeholder).
	RoleContent SlotRole = iota
	// RoleSpacer is permanently empty and never holds media.
	RoleSpacer
)

func (r SlotRole) String() string {
	if r == RoleSpacer {
		return "spacer"
	}
	return "content"
}

// Slot is one cell of a layout template together with its placement on the
// row's CSS grid.
type Slot struct {
	Role   SlotRole
	Label  string // placeholder label for freshly created items
	Column string // grid-column value
	Row    string // grid-row value
}

// Template is an immutable layout definition.
type Template struct {
	ID      string
	Name    string
	Columns string // grid-template-columns
	Rows    string // grid-template-rows
	Slots   []Slot
}

func (t Template) SlotCount() int {
	return len(t.Slots)
}

// IsSpacer reports whether the slot at index is a spacer. Out of range indices
// are not spacers.
func (t Template) IsSpacer(index int) bool {
	if index < 0 || index >= len(t.Slots) {
		return false
	}
	return t.Slots[index].Role == RoleSpacer
}

// Catalog is the single registry of layout templates. Every slot count used
// anywhere in the module is looked up here.
type Catalog struct {
	order []string
	byID  map[string]Template
}

func New(templates ...Template) (*Catalog, error) {
	const op = "layout.New"

	c := &Catalog{
		order: make([]string, 0, len(templates)),
		byID:  make(map[string]Template, len(templates)),
	}

	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("%s: template id is empty", op)
		}
		if len(t.Slots) == 0 {
			return nil, fmt.Errorf("%s: template %q has no slots", op, t.ID)
		}
		if _, exists := c.byID[t.ID]; exists {
			return nil, fmt.Errorf("%s: duplicate template %q", op, t.ID)
		}

		slots := make([]Slot, len(t.Slots))
		copy(slots, t.Slots)
		t.Slots = slots

		c.byID[t.ID] = t
		c.order = append(c.order, t.ID)
	}

	return c, nil
}

// Resolve returns the template registered under id.
func (c *Catalog) Resolve(id string) (Template, error) {
	t, ok := c.byID[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownLayout, id)
	}

	// slots are shared between callers, hand out a copy
	slots := make([]Slot, len(t.Slots))
	copy(slots, t.Slots)
	t.Slots = slots

	return t, nil
}

func (c *Catalog) SlotCount(id string) (int, error) {
	t, err := c.Resolve(id)
	if err != nil {
		return 0, err
	}
	return t.SlotCount(), nil
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns every template in picker order.
func (c *Catalog) All() []Template {
	out := make([]Template, 0, len(c.order))
	for _, id := range c.order {
		t, _ := c.Resolve(id)
		out = append(out, t)
	}
	return out
}

// IDs returns the registered ids in picker order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// Name returns the human readable name of a layout, or "Unknown Layout".
func (c *Catalog) Name(id string) string {
	t, ok := c.byID[id]
	if !ok {
		return "Unknown Layout"
	}
	return t.Name
}

// IsSpacer reports whether slot index of layout id is a spacer.
func (c *Catalog) IsSpacer(id string, index int) (bool, error) {
	t, err := c.Resolve(id)
	if err != nil {
		return false, err
	}
	return t.IsSpacer(index), nil
}
