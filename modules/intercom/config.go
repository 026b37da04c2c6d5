package intercom

import "time"

// Config holds the intercom module configuration.
type Config struct {
	// HeartbeatInterval is the cadence of SSE keep-alive comment frames.
	// Reverse proxies tend to cut idle streams around 30-60s, so the
	// default stays well under that.
	HeartbeatInterval time.Duration `env:"SSE_HEARTBEAT_INTERVAL" envDefault:"15s"`
}
