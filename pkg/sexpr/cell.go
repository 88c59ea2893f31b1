package sexpr

import "fmt"

// Cell is a cons cell. A cell with neither Car nor Cdr is the empty list.
// A cell whose Cdr is present but not SExpr-tagged is a dotted pair; any
// other non-empty cell is a list node chaining to the cell in its Cdr.
type Cell struct {
	Car *Value
	Cdr *Value
}

// Cons constructs a cell from car and cdr.
func Cons(car, cdr *Value) *Cell {
	return &Cell{Car: car, Cdr: cdr}
}

// IsEmpty reports whether c is the empty list.
func (c *Cell) IsEmpty() bool {
	return c == nil || (c.Car == nil && c.Cdr == nil)
}

// IsPair reports whether c is a dotted pair rather than a list node.
func (c *Cell) IsPair() bool {
	return c != nil && c.Cdr != nil && c.Cdr.Tag != TagSExpr
}

// Next returns the cell chained from c's Cdr. A list node without a Cdr
// ends the list and yields the empty cell. Calling Next on a dotted pair is
// a programming error and panics; callers check IsPair first.
func (c *Cell) Next() *Cell {
	if c.Cdr == nil {
		return &Cell{}
	}
	if c.Cdr.Tag != TagSExpr {
		panic(fmt.Sprintf("sexpr: Next on a dotted pair (cdr is %s)", c.Cdr.Tag))
	}
	if c.Cdr.Cell == nil {
		return &Cell{}
	}
	return c.Cdr.Cell
}

// IsProperList reports whether the whole spine starting at c consists of
// list nodes ending in the empty list.
func (c *Cell) IsProperList() bool {
	for !c.IsEmpty() {
		if c.IsPair() || c.Car == nil {
			return false
		}
		c = c.Next()
	}
	return true
}

// Len counts the list nodes of c's spine, stopping at a dotted pair.
func (c *Cell) Len() int {
	n := 0
	for !c.IsEmpty() {
		n++
		if c.IsPair() {
			break
		}
		c = c.Next()
	}
	return n
}

// DeepCopy re-allocates every cell reachable from c. Atomic payloads are
// duplicated by value.
func (c *Cell) DeepCopy() *Cell {
	if c == nil {
		return nil
	}
	head := &Cell{}
	dst := head
	for src := c; ; {
		dst.Car = src.Car.DeepCopy()
		if src.Cdr == nil {
			return head
		}
		if src.Cdr.Tag != TagSExpr || src.Cdr.Cell == nil {
			dst.Cdr = src.Cdr.DeepCopy()
			return head
		}
		next := &Cell{}
		dst.Cdr = List(next)
		dst, src = next, src.Cdr.Cell
	}
}

// Release dismantles the chain starting at c, leaving every visited cell
// empty. Nested lists held in Car are only released when followCar is set;
// pass false when those sub-structures are still referenced elsewhere.
func (c *Cell) Release(followCar bool) {
	for c != nil {
		if followCar && c.Car != nil && c.Car.Tag == TagSExpr {
			c.Car.Cell.Release(true)
		}
		var next *Cell
		if c.Cdr != nil && c.Cdr.Tag == TagSExpr {
			next = c.Cdr.Cell
		}
		c.Car, c.Cdr = nil, nil
		c = next
	}
}

// FromSlice builds a proper list holding vals. The values are not copied.
func FromSlice(vals []*Value) *Cell {
	head := &Cell{}
	cur := head
	for _, v := range vals {
		next := &Cell{}
		cur.Car = v
		cur.Cdr = List(next)
		cur = next
	}
	return head
}

// Slice returns the elements of a proper list. ok is false if the spine
// contains a dotted pair.
func (c *Cell) Slice() (vals []*Value, ok bool) {
	for !c.IsEmpty() {
		if c.IsPair() {
			return vals, false
		}
		vals = append(vals, c.Car)
		c = c.Next()
	}
	return vals, true
}
