// vaultvoice is a headless demo client for the voice engine: it connects to
// a voice agent (the dev peer by default), runs a few turns with a synthetic
// microphone and prints the transcript it accumulated.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/audio/playback"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/config"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/logging"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/transcript"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/transcript/archive"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/voice"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/voice/protocol"
)

func main() {
	cfgPath := flag.String("config", "", "path to yaml config (defaults apply when empty)")
	mode := flag.String("mode", "vad", "capture mode: vad or manual")
	duration := flag.Duration("duration", 30*time.Second, "how long to run the demo session")
	history := flag.Bool("history", false, "print the archived transcript and exit")
	flag.Parse()

	result, err := config.NewLoader(*cfgPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := result.Config

	logger, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if *history {
		printHistory(cfg, logger)
		return
	}

	var store *archive.Store
	var archiver voice.Archiver
	if cfg.Archive.Enabled {
		store, err = archive.Open(cfg.Archive.DSN)
		if err != nil {
			logger.Error("[Archive] %v", err)
			os.Exit(1)
		}
		defer store.Close()
		archiver = store
	}

	tracker := transcript.NewTracker()
	sess, err := voice.NewSession(voice.Options{
		Config:  cfg,
		Logger:  logger,
		Source:  newDemoSource(cfg.Audio),
		Speaker: playback.NullWriter{},
		Tracker: tracker,
		Archive: archiver,
	})
	if err != nil {
		logger.Error("[Session] %v", err)
		os.Exit(1)
	}

	_ = sess.Bus().SubscribeState(func(state string) {
		logger.Info("[Session] -> %s", state)
	})
	_ = sess.Bus().SubscribeActions(func(a protocol.UIAction) {
		logger.Info("[Session] ui action: %s %v", a.Type, a.Payload)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer sess.Disconnect()
		if err := sess.Connect(ctx); err != nil {
			return err
		}
		switch *mode {
		case "manual":
			return runManualTurns(ctx, sess)
		default:
			if err := sess.EnableVAD(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		}
	})

	err = g.Wait()
	printTranscript(tracker, logger)
	if err != nil && ctx.Err() == nil {
		logger.Error("[Session] %v", err)
		os.Exit(1)
	}
}

// runManualTurns drives push-to-talk: two seconds of capture, three seconds
// listening to the reply, until the context ends.
func runManualTurns(ctx context.Context, sess *voice.Session) error {
	for {
		if err := sess.StartListening(ctx); err != nil {
			return err
		}
		if !sleepCtx(ctx, 2*time.Second) {
			sess.StopListening()
			return nil
		}
		sess.StopListening()
		if !sleepCtx(ctx, 3*time.Second) {
			return nil
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func printTranscript(tracker *transcript.Tracker, logger *logging.Logger) {
	entries := tracker.Entries()
	if len(entries) == 0 {
		logger.Info("[Session] no transcript recorded")
		return
	}
	logger.Info("[Session] transcript (%d entries):", len(entries))
	for _, e := range entries {
		if e.ToolCall != nil {
			logger.Info("[Session]   %s: %s (%s)", e.Speaker, e.ToolCall.Name, e.ToolCall.Status)
			continue
		}
		logger.Info("[Session]   %s: %s", e.Speaker, e.Text)
	}
}

func printHistory(cfg *config.Config, logger *logging.Logger) {
	store, err := archive.Open(cfg.Archive.DSN)
	if err != nil {
		logger.Error("[Archive] %v", err)
		os.Exit(1)
	}
	defer store.Close()

	records, err := store.Recent(50)
	if err != nil {
		logger.Error("[Archive] %v", err)
		os.Exit(1)
	}
	counts, err := store.CountBySpeaker()
	if err != nil {
		logger.Error("[Archive] %v", err)
		os.Exit(1)
	}
	logger.Info("[Archive] %d archived entries (user=%d agent=%d system=%d)",
		len(records), counts["user"], counts["agent"], counts["system"])
	for _, r := range records {
		logger.Info("[Archive]   %s %s: %s", r.SpokenAt.Format(time.RFC3339), r.Speaker, r.Text)
	}
}

// demoSource synthesizes the microphone: 1.5s tone bursts every four
// seconds, paced at real time, so the detector sees speech-like energy.
type demoSource struct {
	size  int
	rate  int
	frame int
}

func newDemoSource(cfg config.AudioConfig) *demoSource {
	return &demoSource{size: cfg.FrameSize, rate: cfg.CaptureSampleRate}
}

func (s *demoSource) Acquire(ctx context.Context) error { return nil }

func (s *demoSource) Release() error { return nil }

func (s *demoSource) Read(ctx context.Context) ([]float32, error) {
	frameDur := time.Duration(float64(s.size) / float64(s.rate) * float64(time.Second))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(frameDur):
	}

	samples := make([]float32, s.size)
	elapsed := time.Duration(s.frame) * frameDur
	if elapsed%(4*time.Second) < 1500*time.Millisecond {
		base := s.frame * s.size
		for i := range samples {
			samples[i] = 0.05 * float32(math.Sin(2*math.Pi*220*float64(base+i)/float64(s.rate)))
		}
	}
	s.frame++
	return samples, nil
}
