package channelstore

import "encoding/json"

// VoiceProfile selects a synthesis voice for one language. The fan-out core
// treats it as opaque configuration resolved at dispatch time.
type VoiceProfile struct {
	SpeakerID  int     `json:"speakerId"`
	Pitch      float64 `json:"pitch"`
	SpeedScale float64 `json:"speedScale"`
}

// Channel is a named, password-gated broadcast group. Name is the immutable
// identity, unique across the store and case-sensitive. Password is stored
// and compared as plaintext for compatibility with existing channel files.
type Channel struct {
	Name         string                  `json:"name"`
	Password     string                  `json:"password"`
	VoiceConfig  map[string]VoiceProfile `json:"voiceConfig,omitempty"` // keyed by language tag
	RoomCount    int                     `json:"roomCount"`
	UseReception bool                    `json:"useReception"`
}

const (
	// DefaultRoomCount is applied when a channel record does not specify
	// how many rooms the clinic has.
	DefaultRoomCount = 7

	// DefaultLanguage is assumed when an announce request carries no
	// language tag.
	DefaultLanguage = "japanese"
)

// DefaultVoice is the fallback profile used when a channel has no voice
// configured for the requested language.
var DefaultVoice = VoiceProfile{SpeakerID: 3, Pitch: 0, SpeedScale: 1.0}

// UnmarshalJSON applies defaults for fields older channel files omit:
// roomCount 7 and useReception true. A plain bool cannot distinguish
// "absent" from "false", hence the pointer in the shadow type.
func (c *Channel) UnmarshalJSON(data []byte) error {
	type alias Channel
	aux := struct {
		*alias
		UseReception *bool `json:"useReception"`
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.UseReception = aux.UseReception == nil || *aux.UseReception
	if c.RoomCount < 1 {
		c.RoomCount = DefaultRoomCount
	}
	return nil
}

// Voice resolves the synthesis profile for a language, falling back to
// DefaultVoice when the channel has no per-language configuration.
func (c *Channel) Voice(language string) VoiceProfile {
	if language == "" {
		language = DefaultLanguage
	}
	if p, ok := c.VoiceConfig[language]; ok {
		return p
	}
	return DefaultVoice
}
