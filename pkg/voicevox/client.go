package voicevox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrymomot/callbell/pkg/logger"
)

// Speaker describes one voice the engine offers, with its selectable styles.
type Speaker struct {
	Name        string  `json:"name"`
	SpeakerUUID string  `json:"speaker_uuid"`
	Styles      []Style `json:"styles"`
}

// Style is a single selectable voice style; its ID is what synthesis takes.
type Style struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
	Type string `json:"type,omitempty"`
}

// Client talks to a VOICEVOX engine over HTTP. Synthesis is the engine's
// two-step protocol: audio_query produces synthesis parameters for the
// text, which are adjusted and posted to synthesis for the WAV result.
//
// With Disabled set, Synthesize returns a placeholder payload and Speakers
// returns a single stub voice, so the rest of the system can run without
// the engine container.
type Client struct {
	baseURL  string
	disabled bool
	http     *http.Client
	log      *slog.Logger
}

// NewClient creates a VOICEVOX client from config. The logger may be nil.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		disabled: cfg.Disabled,
		http:     &http.Client{Timeout: cfg.RequestTimeout},
		log:      log,
	}
}

var stubSpeaker = Speaker{
	Name:        "デフォルト話者",
	SpeakerUUID: "default",
	Styles:      []Style{{Name: "ノーマル", ID: 6, Type: "talk"}},
}

// Speakers fetches the engine's voice list.
func (c *Client) Speakers(ctx context.Context) ([]Speaker, error) {
	if c.disabled {
		return []Speaker{stubSpeaker}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/speakers", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: speakers returned %d", ErrEngineUnavailable, resp.StatusCode)
	}

	var speakers []Speaker
	if err := json.NewDecoder(resp.Body).Decode(&speakers); err != nil {
		return nil, errors.Join(ErrEngineUnavailable, err)
	}
	return speakers, nil
}

// Synthesize produces WAV audio for the text using the given voice
// parameters.
func (c *Client) Synthesize(ctx context.Context, text string, speakerID int, pitch, speedScale float64) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	if c.disabled {
		c.log.DebugContext(ctx, "synthesis skipped, engine disabled", slog.String("text", text))
		return []byte("dummy audio data"), nil
	}

	started := time.Now()

	query, err := c.audioQuery(ctx, text, speakerID)
	if err != nil {
		return nil, err
	}

	// The query result is adjusted rather than rebuilt: only pitch and
	// speed change, everything else the engine computed stays as is.
	query["pitch"] = pitch
	query["speedScale"] = speedScale

	audio, err := c.synthesis(ctx, query, speakerID)
	if err != nil {
		return nil, err
	}

	c.log.InfoContext(ctx, "speech synthesized",
		slog.String("text", text),
		slog.Int("speaker_id", speakerID),
		logger.Duration(time.Since(started)),
	)
	return audio, nil
}

func (c *Client) audioQuery(ctx context.Context, text string, speakerID int) (map[string]any, error) {
	u := fmt.Sprintf("%s/audio_query?text=%s&speaker=%d",
		c.baseURL, url.QueryEscape(text), speakerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: audio_query returned %d", ErrSynthesisFailed, resp.StatusCode)
	}

	var query map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return nil, errors.Join(ErrSynthesisFailed, err)
	}
	return query, nil
}

func (c *Client) synthesis(ctx context.Context, query map[string]any, speakerID int) ([]byte, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.Join(ErrSynthesisFailed, err)
	}

	u := c.baseURL + "/synthesis?speaker=" + strconv.Itoa(speakerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: synthesis returned %d", ErrSynthesisFailed, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
