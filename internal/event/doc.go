// Package event provides the synchronous notification bus the selection
// coordinator uses to tell host UI about caret and object selection
// changes.
//
// Handlers subscribe to topic patterns (see package topic) and run in
// priority order on the publisher's goroutine, so a handler can cancel a
// cancelable payload before the coordinator acts on it:
//
//	bus := event.NewBus()
//	bus.SubscribeFunc(events.TopicBeforeObjectSelected, func(ctx context.Context, ev any) error {
//	    if e, ok := ev.(event.Event[*events.BeforeObjectSelected]); ok {
//	        e.Payload.PreventDefault()
//	    }
//	    return nil
//	})
//
// A handler that returns an error or panics never stops delivery to the
// remaining handlers; failures are counted in Stats and reported to the
// configured ErrorHandler.
package event
