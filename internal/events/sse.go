package events

import "github.com/kelindar/event"

// SubscribeToChannel forwards events of type T into ch. Events are dropped
// when ch is full so a slow stream reader never stalls the dispatcher.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
