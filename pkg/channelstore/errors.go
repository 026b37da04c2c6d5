package channelstore

import "errors"

var (
	// ErrChannelNotFound indicates no channel with the requested name or index.
	ErrChannelNotFound = errors.New("channelstore.channel_not_found")

	// ErrChannelExists indicates the channel name is already taken.
	ErrChannelExists = errors.New("channelstore.channel_exists")

	// ErrInvalidChannel indicates a record without a name or password.
	ErrInvalidChannel = errors.New("channelstore.invalid_channel")

	// ErrPersistence wraps file read/write failures.
	ErrPersistence = errors.New("channelstore.persistence_failed")
)
