// Package events carries task change notifications from the service layer to
// the components that react to them.
//
// The service layer emits a TaskEvent after every successful write. Handlers
// registered on the emitter run synchronously, in registration order, before
// the write returns to the HTTP layer. The primary components are:
// - TaskEvent: describes one committed task change
// - EventHandler: interface for components that react to events
// - EventEmitter: interface for components that publish events
package events
