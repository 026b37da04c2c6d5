package channelstore

// Config holds channel store configuration.
type Config struct {
	// Path is the location of the JSON channel list file.
	Path string `env:"CHANNELS_FILE" envDefault:"channels.json"`

	// WatchFile enables reloading the store when the file changes on disk.
	WatchFile bool `env:"CHANNELS_WATCH" envDefault:"true"`
}
