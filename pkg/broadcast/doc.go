// Package broadcast implements the channel-scoped subscriber registry: an
// in-memory table mapping a channel name to the set of currently open push
// connections, with best-effort fan-out of named events.
//
// The registry owns no connections. A connection handler registers its sink
// on open, keeps the returned handle, and deregisters with it on disconnect.
// Delivery is best effort to whoever is connected at broadcast time; there
// is no queuing, acknowledgement, or replay.
//
//	reg := broadcast.NewRegistry(log)
//	handle := reg.Register("ClinicA", sessionID, sink)
//	defer reg.Deregister("ClinicA", handle)
//
//	reg.Broadcast(ctx, "ClinicA", "play-announcement", event)
package broadcast
