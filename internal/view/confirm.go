package view

// Confirm holds a destructive action waiting for the user's answer.
type Confirm[T any] struct {
	target  T
	pending bool
}

// Request asks for confirmation of t, replacing any earlier request.
func (c *Confirm[T]) Request(t T) {
	c.target = t
	c.pending = true
}

// Pending returns the target awaiting an answer.
func (c *Confirm[T]) Pending() (T, bool) {
	return c.target, c.pending
}

// Cancel discards the request.
func (c *Confirm[T]) Cancel() {
	var zero T
	c.target = zero
	c.pending = false
}

// Take returns the confirmed target and clears the request.
func (c *Confirm[T]) Take() (T, bool) {
	t, ok := c.target, c.pending
	c.Cancel()
	return t, ok
}
