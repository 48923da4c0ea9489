package fuzzy

// Pool is an ordered multiset of candidate strings. Lookups that consume a
// candidate remove one occurrence of it.
type Pool struct {
	values []string
}

// NewPool copies values into a new pool.
func NewPool(values []string) *Pool {
	cp := make([]string, len(values))
	copy(cp, values)
	return &Pool{values: cp}
}

// Len reports the number of candidates left.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

// Values returns a copy of the remaining candidates in order.
func (p *Pool) Values() []string {
	if p == nil {
		return nil
	}
	cp := make([]string, len(p.values))
	copy(cp, p.values)
	return cp
}

// Remove deletes the first occurrence of value and reports whether one existed.
func (p *Pool) Remove(value string) bool {
	if p == nil {
		return false
	}
	for i, v := range p.values {
		if v == value {
			p.removeAt(i)
			return true
		}
	}
	return false
}

func (p *Pool) removeAt(i int) {
	p.values = append(p.values[:i], p.values[i+1:]...)
}
