package dashboard

// Controller fans state snapshots out to the renderer.
type Controller struct {
	updates chan State
}

func NewController() *Controller {
	return &Controller{updates: make(chan State, 10)}
}

// Publish never blocks the event loop. When the subscriber falls behind, the
// oldest pending snapshot is dropped since only the latest one is rendered.
func (c *Controller) Publish(s State) {
	for {
		select {
		case c.updates <- s:
			return
		default:
		}

		select {
		case <-c.updates:
		default:
		}
	}
}

func (c *Controller) Subscribe() <-chan State {
	return c.updates
}
