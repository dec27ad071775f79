package tweet

import "sync"

// Composers hands out one Form per actor, so the busy flag holds across
// requests from the same account.
type Composers struct {
	mu      sync.Mutex
	forms   map[string]*Form
	newForm func() *Form
}

func NewComposers(newForm func() *Form) *Composers {
	return &Composers{
		forms:   make(map[string]*Form),
		newForm: newForm,
	}
}

func (c *Composers) For(actorID string) *Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.forms[actorID]
	if !ok {
		f = c.newForm()
		c.forms[actorID] = f
	}
	return f
}
