package collection

import (
	"github.com/google/btree"

	"github.com/boxmap/boxmap/index/grid"
)

type itemT struct {
	ID                     string
	MinX, MinY, MaxX, MaxY float64
}

func (i *itemT) Less(item btree.Item) bool {
	return i.ID < item.(*itemT).ID
}

// Collection is a keyed set of bounding boxes backed by a grid index.
// The btree holds the stored box for each id in id order, the grid
// answers region overlap searches.
type Collection struct {
	items  *btree.BTree
	tree   *grid.Tree
	weight int
}

// New creates an empty collection covering the given area at a fixed
// subdivision depth.
func New(minX, minY, maxX, maxY float64, depth int) (*Collection, error) {
	tree, err := grid.New(minX, minY, maxX, maxY, depth)
	if err != nil {
		return nil, err
	}
	return &Collection{
		items: btree.New(16),
		tree:  tree,
	}, nil
}

// Count returns the number of objects in the collection.
func (c *Collection) Count() int {
	return c.items.Len()
}

// TotalWeight estimates the in-memory cost of the collection in bytes.
func (c *Collection) TotalWeight() int {
	// each item carries an interface head plus roughly one pointer in
	// the btree, and each grid reference is one pointer.
	w := c.weight
	w += c.items.Len() * 16
	w += c.tree.RefTotal() * 8
	w += 24
	return w
}

// ReplaceOrInsert adds an object to the collection. If an item with the
// same id already exists its grid references are kept and the new box
// adds more, matching a repeated filing of the same id. The returned
// box is the previously stored one, if any.
func (c *Collection) ReplaceOrInsert(id string, minX, minY, maxX, maxY float64) (ominX, ominY, omaxX, omaxY float64, existed bool) {
	nitem := &itemT{ID: id, MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	oi := c.items.ReplaceOrInsert(nitem)
	if oi != nil {
		oitem := oi.(*itemT)
		ominX, ominY, omaxX, omaxY = oitem.MinX, oitem.MinY, oitem.MaxX, oitem.MaxY
		existed = true
	} else {
		c.weight += len(id) + 32
	}
	c.tree.Add(id, minX, minY, maxX, maxY)
	return
}

// Remove removes an object and returns its stored box.
// If the object does not exist then the 'ok' return value will be false.
func (c *Collection) Remove(id string) (minX, minY, maxX, maxY float64, ok bool) {
	i := c.items.Delete(&itemT{ID: id})
	if i == nil {
		return 0, 0, 0, 0, false
	}
	item := i.(*itemT)
	c.tree.Delete(id)
	c.weight -= len(id) + 32
	return item.MinX, item.MinY, item.MaxX, item.MaxY, true
}

// Get returns the stored box of an object.
// If the object does not exist then the 'ok' return value will be false.
func (c *Collection) Get(id string) (minX, minY, maxX, maxY float64, ok bool) {
	i := c.items.Get(&itemT{ID: id})
	if i == nil {
		return 0, 0, 0, 0, false
	}
	item := i.(*itemT)
	return item.MinX, item.MinY, item.MaxX, item.MaxY, true
}

// RefCount returns the number of grid cells holding the id.
func (c *Collection) RefCount(id string) int {
	return c.tree.Refs(id)
}

// Scan iterates though the collection in id order.
func (c *Collection) Scan(iterator func(id string, minX, minY, maxX, maxY float64) bool) {
	c.items.Ascend(func(item btree.Item) bool {
		iitm := item.(*itemT)
		return iterator(iitm.ID, iitm.MinX, iitm.MinY, iitm.MaxX, iitm.MaxY)
	})
}

// ScanGreaterOrEqual iterates though the collection in id order
// starting at the specified id.
func (c *Collection) ScanGreaterOrEqual(id string, iterator func(id string, minX, minY, maxX, maxY float64) bool) {
	c.items.AscendGreaterOrEqual(&itemT{ID: id}, func(item btree.Item) bool {
		iitm := item.(*itemT)
		return iterator(iitm.ID, iitm.MinX, iitm.MinY, iitm.MaxX, iitm.MaxY)
	})
}

// Intersects returns the objects filed into grid cells that overlap the
// query box, along with their stored boxes.
func (c *Collection) Intersects(minX, minY, maxX, maxY float64, iterator func(id string, minX, minY, maxX, maxY float64) bool) {
	c.tree.Search(minX, minY, maxX, maxY, func(id string) bool {
		i := c.items.Get(&itemT{ID: id})
		if i == nil {
			return true // just ignore
		}
		iitm := i.(*itemT)
		return iterator(iitm.ID, iitm.MinX, iitm.MinY, iitm.MaxX, iitm.MaxY)
	})
}

// SetWindow composes a pan and zoom onto the coordinate window used for
// future insertions.
func (c *Collection) SetWindow(sx, sy, scale float64) {
	c.tree.SetWindow(sx, sy, scale)
}

// ResetWindow discards the accumulated coordinate window.
func (c *Collection) ResetWindow() {
	c.tree.ResetWindow()
}

// Window returns the accumulated coordinate window.
func (c *Collection) Window() (ox, oy, scale float64) {
	return c.tree.Window()
}

// Bounds returns the area covered by the grid.
func (c *Collection) Bounds() (minX, minY, maxX, maxY float64) {
	return c.tree.Bounds()
}

// Depth returns the fixed subdivision depth of the grid.
func (c *Collection) Depth() int {
	return c.tree.Depth()
}

// Leaves returns the number of grid cells at the deepest level.
func (c *Collection) Leaves() int {
	return c.tree.Leaves()
}
