package items

// Inventory is an ordered list of carried things. Order is iteration order for lookups.
type Inventory []*Thing

// Add appends t.
func (inv *Inventory) Add(t *Thing) {
	*inv = append(*inv, t)
}

// Remove deletes t (by identity) and reports whether it was present.
func (inv *Inventory) Remove(t *Thing) bool {
	for i, held := range *inv {
		if held == t {
			*inv = append((*inv)[:i], (*inv)[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether t is held.
func (inv Inventory) Contains(t *Thing) bool {
	for _, held := range inv {
		if held == t {
			return true
		}
	}
	return false
}

// CountKind returns how many things of kind are held.
func (inv Inventory) CountKind(kind string) int {
	n := 0
	for _, held := range inv {
		if held.Kind == kind {
			n++
		}
	}
	return n
}
