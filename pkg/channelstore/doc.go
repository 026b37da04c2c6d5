// Package channelstore owns the persisted list of announcement channels:
// name, plaintext password, per-language voice configuration, and room
// layout. Storage is a single JSON file read wholesale at startup and
// rewritten wholesale on every administrative mutation. Durability is best
// effort and concurrent writers are last-writer-wins; the store's job is to
// answer authorization lookups for the fan-out core, not to be a database.
package channelstore
