package events

// Event is the union delivered by a ChannelPublisher: exactly one of Set or
// Unit is non-nil.
type Event struct {
	Set  *SetEvent
	Unit *UnitEvent
}

// ChannelPublisher forwards events over a buffered channel, typically feeding
// a TUI. Sends never block: when the consumer falls behind, events are
// dropped rather than stalling the engine.
type ChannelPublisher struct {
	ch chan Event
}

// NewChannelPublisher creates a publisher with the given buffer size.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelPublisher{ch: make(chan Event, buffer)}
}

// Events exposes the consumer side of the channel.
func (p *ChannelPublisher) Events() <-chan Event {
	return p.ch
}

// Close releases the channel once the engine finished publishing.
func (p *ChannelPublisher) Close() {
	close(p.ch)
}

func (p *ChannelPublisher) PublishSet(event SetEvent) error {
	select {
	case p.ch <- Event{Set: &event}:
	default:
	}
	return nil
}

func (p *ChannelPublisher) PublishUnit(event UnitEvent) error {
	select {
	case p.ch <- Event{Unit: &event}:
	default:
	}
	return nil
}
