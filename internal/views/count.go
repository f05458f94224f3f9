package views

// Count is the event counter badge.
type Count struct {
	n int
}

// SetCount records the number of published events.
func (c *Count) SetCount(n int) { c.n = n }

// Value returns the last published count.
func (c *Count) Value() int { return c.n }
