package interfaces

import "econ-dashboard/src/models"

// -----------------------------------------------------------------------------
// IEventBroadcaster pushes state changes to connected dashboard clients.
// -----------------------------------------------------------------------------

type IEventBroadcaster interface {
	// Broadcast queues an event for every connected client.
	Broadcast(event models.MEvent)
}

// -----------------------------------------------------------------------------

// NopBroadcaster drops every event.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(models.MEvent) {}
