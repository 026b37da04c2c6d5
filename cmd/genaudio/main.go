// Command genaudio pre-generates announcement audio so receiver clients can
// play common phrases without a round trip to the speech engine. It writes
// ticket_N.wav for the requested ticket range, room_N.wav for each room,
// and room_reception.wav.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrymomot/callbell/pkg/config"
	"github.com/dmitrymomot/callbell/pkg/logger"
	"github.com/dmitrymomot/callbell/pkg/phrase"
	"github.com/dmitrymomot/callbell/pkg/voicevox"
)

func main() {
	var (
		outDir   = flag.String("out", "public/audio/pregenerated", "output directory")
		from     = flag.Int("from", 1, "first ticket number")
		to       = flag.Int("to", 100, "last ticket number")
		rooms    = flag.Int("rooms", 7, "number of examination rooms")
		language = flag.String("lang", "japanese", "phrase language")
		messages = flag.String("messages", "", "optional YAML phrase catalog override")
	)
	flag.Parse()

	log := logger.New(logger.WithFormat(logger.FormatText))

	var cfg voicevox.Config
	config.MustLoad(&cfg)

	catalog := phrase.Default()
	if *messages != "" {
		var err error
		catalog, err = phrase.LoadFile(*messages)
		if err != nil {
			log.Error("failed to load phrase catalog", logger.Error(err))
			os.Exit(1)
		}
	}

	client := voicevox.NewClient(cfg, log)
	settings := voicevox.NewSettingsManager(cfg, log).Current()

	dir := filepath.Join(*outDir, *language)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("failed to create output directory", logger.Error(err))
		os.Exit(1)
	}

	ctx := context.Background()
	generate := func(kind phrase.Kind, number, filename string) error {
		text, err := catalog.Render(*language, kind, number)
		if err != nil {
			return err
		}

		audio, err := client.Synthesize(ctx, text, settings.SpeakerID, settings.Pitch, settings.SpeedScale)
		if err != nil {
			return fmt.Errorf("synthesize %s: %w", filename, err)
		}

		path := filepath.Join(dir, filename)
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		log.Info("generated", logger.Language(*language), slog.String("file", filename))
		return nil
	}

	failed := 0
	for i := *from; i <= *to; i++ {
		n := strconv.Itoa(i)
		if err := generate(phrase.KindTicket, n, "ticket_"+n+".wav"); err != nil {
			log.Error("generation failed", logger.Error(err))
			failed++
		}
	}
	for i := 1; i <= *rooms; i++ {
		n := strconv.Itoa(i)
		if err := generate(phrase.KindRoom, n, "room_"+n+".wav"); err != nil {
			log.Error("generation failed", logger.Error(err))
			failed++
		}
	}
	if err := generate(phrase.KindReception, "", "room_reception.wav"); err != nil {
		log.Error("generation failed", logger.Error(err))
		failed++
	}

	if failed > 0 {
		log.Error("finished with failures", slog.Int("failed", failed))
		os.Exit(1)
	}
}
