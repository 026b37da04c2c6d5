// Package session provides cookie-backed per-client sessions holding the
// single-channel subscription binding.
//
// A session is bound to at most one announcement channel. Subscribing
// overwrites any previous binding; unsubscribing clears it. Open push
// connections are deliberately unaffected by binding changes — they keep
// the channel they were opened with until the client disconnects.
package session
