package grid

import "masonry_grid/internal/domain/models"

// ImageCache keeps media that a layout change pushed out of a row, keyed by
// row and item index, so that a later layout change can bring it back.
// Structural row edits shift the row keys along with the rows; item keys stay
// positional, so media may come back in a slot of a different shape.
type ImageCache struct {
	items map[int]map[int]models.Item
}

func NewImageCache() *ImageCache {
	return &ImageCache{items: make(map[int]map[int]models.Item)}
}

func (c *ImageCache) Store(row, item int, it models.Item) {
	slots, ok := c.items[row]
	if !ok {
		slots = make(map[int]models.Item)
		c.items[row] = slots
	}
	slots[item] = it.Clone()
}

func (c *ImageCache) Lookup(row, item int) (models.Item, bool) {
	it, ok := c.items[row][item]
	if !ok {
		return models.Item{}, false
	}
	return it.Clone(), true
}

// Forget drops the entry of one slot.
func (c *ImageCache) Forget(row, item int) {
	slots, ok := c.items[row]
	if !ok {
		return
	}
	delete(slots, item)
	if len(slots) == 0 {
		delete(c.items, row)
	}
}

// RemoveRow drops the entries of row and shifts the rows below it up by one.
func (c *ImageCache) RemoveRow(row int) {
	shifted := make(map[int]map[int]models.Item, len(c.items))
	for r, slots := range c.items {
		switch {
		case r < row:
			shifted[r] = slots
		case r > row:
			shifted[r-1] = slots
		}
	}
	c.items = shifted
}

// InsertRow shifts the entries of row and the rows below it down by one,
// leaving row without entries.
func (c *ImageCache) InsertRow(row int) {
	shifted := make(map[int]map[int]models.Item, len(c.items))
	for r, slots := range c.items {
		if r >= row {
			shifted[r+1] = slots
			continue
		}
		shifted[r] = slots
	}
	c.items = shifted
}

// SwapRows exchanges the entries of two rows.
func (c *ImageCache) SwapRows(a, b int) {
	sa, okA := c.items[a]
	sb, okB := c.items[b]
	delete(c.items, a)
	delete(c.items, b)
	if okA {
		c.items[b] = sa
	}
	if okB {
		c.items[a] = sb
	}
}

func (c *ImageCache) Clear() {
	c.items = make(map[int]map[int]models.Item)
}

// Len returns the number of cached items across all rows.
func (c *ImageCache) Len() int {
	n := 0
	for _, slots := range c.items {
		n += len(slots)
	}
	return n
}
