package carts

// Aggregate is the in-memory cart state container: a reducer-style API over
// a line collection keyed by (product, variant). It backs checkout
// computation and mirrors the persisted cart one-to-one.
//
// A zero Aggregate is "not yet hydrated", which is a distinct state from an
// empty cart: callers must not render empty-cart messaging until Hydrate
// (or the first mutation) has run.
type Aggregate struct {
	lines    []Line
	hydrated bool
}

// Hydrate loads persisted lines and marks the aggregate ready.
func (a *Aggregate) Hydrate(lines []Line) {
	a.lines = append(a.lines[:0], lines...)
	a.hydrated = true
}

func (a *Aggregate) Hydrated() bool { return a.hydrated }

func sameKey(l Line, productID int64, variantID *int64) bool {
	if l.ProductID != productID {
		return false
	}
	if l.VariantID == nil || variantID == nil {
		return l.VariantID == nil && variantID == nil
	}
	return *l.VariantID == *variantID
}

// AddItem merges into an existing line for the same (product, variant) key,
// incrementing quantity and keeping the line's original locked-in unit
// price. A new key inserts the line as given; a non-positive quantity on
// the incoming line counts as one unit.
func (a *Aggregate) AddItem(line Line) {
	a.hydrated = true
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	for i := range a.lines {
		if sameKey(a.lines[i], line.ProductID, line.VariantID) {
			a.lines[i].Quantity += line.Quantity
			return
		}
	}
	a.lines = append(a.lines, line)
}

// UpdateQuantity clamps qty at zero; zero removes the line entirely, so a
// zero-quantity row can never be observed.
func (a *Aggregate) UpdateQuantity(productID int64, variantID *int64, qty int) {
	a.hydrated = true
	if qty < 0 {
		qty = 0
	}
	for i := range a.lines {
		if !sameKey(a.lines[i], productID, variantID) {
			continue
		}
		if qty == 0 {
			a.lines = append(a.lines[:i], a.lines[i+1:]...)
		} else {
			a.lines[i].Quantity = qty
		}
		return
	}
}

func (a *Aggregate) RemoveItem(productID int64, variantID *int64) {
	a.UpdateQuantity(productID, variantID, 0)
}

func (a *Aggregate) Clear() {
	a.hydrated = true
	a.lines = a.lines[:0]
}

// Lines returns a copy of the current line collection.
func (a *Aggregate) Lines() []Line {
	out := make([]Line, len(a.lines))
	copy(out, a.lines)
	return out
}

func (a *Aggregate) LineCount() int { return len(a.lines) }

// TotalPriceCents is derived on every call; no cached subtotal can go
// stale against the line contents.
func (a *Aggregate) TotalPriceCents() int64 {
	var total int64
	for _, l := range a.lines {
		total += l.LineTotalCents()
	}
	return total
}

// ItemCount is the summed quantity over all lines.
func (a *Aggregate) ItemCount() int {
	var n int
	for _, l := range a.lines {
		n += l.Quantity
	}
	return n
}
