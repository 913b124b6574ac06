// Package events publishes a human-readable transcript of each room to an
// external feed. Publishing is best effort and never blocks the caller.
package events

// Publisher receives room transcript lines.
type Publisher interface {
	// Publish appends message to the room's transcript.
	Publish(room, message string)
	// Close ends the room's transcript.
	Close(room string)
	// Shutdown flushes pending work and releases resources.
	Shutdown()
}

// Nop discards everything. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(string, string) {}
func (Nop) Close(string)           {}
func (Nop) Shutdown()              {}
