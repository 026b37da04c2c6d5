package voicevox_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/callbell/pkg/voicevox"
)

// fakeEngine mimics the VOICEVOX audio_query + synthesis protocol.
func fakeEngine(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /speakers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]voicevox.Speaker{
			{Name: "ずんだもん", SpeakerUUID: "uuid-1", Styles: []voicevox.Style{{Name: "ノーマル", ID: 3, Type: "talk"}}},
		})
	})

	mux.HandleFunc("POST /audio_query", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("text") == "" {
			http.Error(w, "missing text", http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"accent_phrases": []any{},
			"speedScale":     1.0,
			"pitch":          0.0,
		})
	})

	mux.HandleFunc("POST /synthesis", func(w http.ResponseWriter, r *http.Request) {
		var query map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))

		// The client must forward its pitch/speed adjustments.
		assert.Equal(t, 0.5, query["pitch"])
		assert.Equal(t, 1.5, query["speedScale"])
		assert.Equal(t, "7", r.URL.Query().Get("speaker"))

		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("RIFFfakewav"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) voicevox.Config {
	return voicevox.Config{
		BaseURL:           baseURL,
		RequestTimeout:    5 * time.Second,
		DefaultSpeakerID:  3,
		DefaultSpeedScale: 1.0,
	}
}

func TestClientSpeakers(t *testing.T) {
	t.Parallel()

	srv := fakeEngine(t)
	client := voicevox.NewClient(testConfig(srv.URL), nil)

	speakers, err := client.Speakers(context.Background())
	require.NoError(t, err)
	require.Len(t, speakers, 1)
	assert.Equal(t, "ずんだもん", speakers[0].Name)
	assert.Equal(t, 3, speakers[0].Styles[0].ID)
}

func TestClientSynthesize(t *testing.T) {
	t.Parallel()

	t.Run("two-step synthesis", func(t *testing.T) {
		t.Parallel()

		srv := fakeEngine(t)
		client := voicevox.NewClient(testConfig(srv.URL), nil)

		audio, err := client.Synthesize(context.Background(), "呼び出し番号 42番のかた", 7, 0.5, 1.5)
		require.NoError(t, err)
		assert.Equal(t, []byte("RIFFfakewav"), audio)
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()

		srv := fakeEngine(t)
		client := voicevox.NewClient(testConfig(srv.URL), nil)

		_, err := client.Synthesize(context.Background(), "", 3, 0, 1.0)
		assert.ErrorIs(t, err, voicevox.ErrEmptyText)
	})

	t.Run("engine down", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig("http://127.0.0.1:1")
		client := voicevox.NewClient(cfg, nil)

		_, err := client.Synthesize(context.Background(), "test", 3, 0, 1.0)
		assert.ErrorIs(t, err, voicevox.ErrSynthesisFailed)
	})
}

func TestClientDisabled(t *testing.T) {
	t.Parallel()

	client := voicevox.NewClient(voicevox.Config{Disabled: true}, nil)

	speakers, err := client.Speakers(context.Background())
	require.NoError(t, err)
	require.Len(t, speakers, 1)
	assert.Equal(t, "default", speakers[0].SpeakerUUID)

	audio, err := client.Synthesize(context.Background(), "test", 3, 0, 1.0)
	require.NoError(t, err)
	assert.NotEmpty(t, audio)
}
