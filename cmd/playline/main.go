// Package main provides the playline player entry point.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playline/internal/app/chain"
	"github.com/osa030/playline/internal/app/engine"
	"github.com/osa030/playline/internal/domain/catalog"
	"github.com/osa030/playline/internal/domain/item"
	"github.com/osa030/playline/internal/infra/config"
	"github.com/osa030/playline/internal/infra/logger"
	"github.com/osa030/playline/internal/infra/report"
	"github.com/osa030/playline/internal/resolver"
	"github.com/osa030/playline/internal/resume"
	"github.com/osa030/playline/internal/sink"
)

var (
	app        = kingpin.New("playline", "playline sequencing player")
	configPath = app.Flag("config", "Path to config file").Default("config/playline.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-policies command
	listPoliciesCmd = app.Command("list-policies", "List available chain policies and exit")
)

func init() {
	// play command (default) - no need to store the command
	app.Command("play", "Play through the configured manifest (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-policies command
	if command == listPoliciesCmd.FullCommand() {
		printPolicies()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Run player (defer ensures cleanup is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// run executes the main player logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	if len(cfg.Manifest) == 0 {
		return fmt.Errorf("manifest is empty, nothing to play")
	}

	items, res, lib := buildManifest(cfg.Manifest)

	pol, err := chain.FromConfig(cfg.Policy, lib)
	if err != nil {
		return fmt.Errorf("failed to build chain policy: %w", err)
	}
	zlog.Info().Msgf("Chain policy: %s", pol.Name())

	var opts []engine.Option
	if cfg.Resume.Enabled {
		store, err := resume.OpenBolt(cfg.Resume.Path)
		if err != nil {
			return fmt.Errorf("failed to open resume store: %w", err)
		}
		defer store.Close()
		opts = append(opts, engine.WithResume(store))
		zlog.Info().Msgf("Session resume enabled: path=%s", cfg.Resume.Path)
	}
	if cfg.Report.Enabled {
		reporter, err := report.New(report.Config{
			Endpoint: cfg.Report.Endpoint,
			Timeout:  cfg.ReportTimeout(),
		})
		if err != nil {
			return fmt.Errorf("failed to create play reporter: %w", err)
		}
		opts = append(opts, engine.WithReporter(reporter))
		zlog.Info().Msgf("Play reporting enabled: endpoint=%s", cfg.Report.Endpoint)
	}

	eng := engine.New(engine.Config{
		EventBuffer:    cfg.Engine.EventBuffer,
		ResolveTimeout: cfg.ResolveTimeout(),
	}, sink.NewTimer(cfg.Tick()), resolver.NewCached(res), pol, opts...)
	defer eng.Close()

	// Appending onto the idle engine starts playback.
	added := eng.AddAll(items)
	zlog.Info().Msgf("Queued %d items", added)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			zlog.Info().Msg("Received shutdown signal...")
			eng.Stop()
			return nil
		case ev, open := <-eng.Events():
			if !open {
				return nil
			}
			logEvent(ev)
			if ev.Type == engine.EventQueueDrained {
				zlog.Info().Msg("Queue drained, exiting")
				return nil
			}
		}
	}
}

// buildManifest turns the config manifest into queue items, a static
// resolver over their URLs, and an album library for the catalog policy.
func buildManifest(manifest []config.ManifestItem) ([]item.Item, resolver.Resolver, *catalog.Library) {
	items := make([]item.Item, 0, len(manifest))
	entries := make(map[string]resolver.Resolution, len(manifest))
	byAlbum := make(map[string]*catalog.Album)

	for _, m := range manifest {
		it := item.Item{
			ID:           m.ID,
			Title:        m.Title,
			DurationHint: m.Duration(),
		}
		items = append(items, it)
		entries[m.ID] = resolver.Resolution{URL: m.URL, DurationHint: m.Duration()}

		name := m.Album
		if name == "" {
			name = "Singles"
		}
		a, ok := byAlbum[name]
		if !ok {
			a = &catalog.Album{Name: name, Released: m.ReleasedTime()}
			byAlbum[name] = a
		}
		a.Tracks = append(a.Tracks, it)
	}

	albums := make([]catalog.Album, 0, len(byAlbum))
	for _, a := range byAlbum {
		albums = append(albums, *a)
	}
	return items, resolver.NewStatic(entries), catalog.NewLibrary(albums)
}

// logEvent reports an engine event at the appropriate level.
func logEvent(ev engine.Event) {
	s := ev.Snapshot
	log := zlog.Info()
	switch ev.Type {
	case engine.EventPositionChanged:
		// Tick-rate noise, keep it out of the default output.
		log = zlog.Debug()
	case engine.EventResolveFailed, engine.EventPlaybackFailed:
		log = zlog.Warn().Err(ev.Err)
	}
	if ev.Item != nil {
		log = log.Str("item", ev.Item.ID)
	}
	log.
		Str("phase", s.Phase.String()).
		Int("index", s.Index).
		Dur("elapsed", s.Elapsed).
		Msgf("Event: %s", ev.Type)
}

// printPolicies prints available chain policies.
func printPolicies() {
	policies := map[string]string{
		"linear":  "Play the queue in order, stop at the end",
		"loop":    "Play the queue in order, wrap to the top forever",
		"shuffle": "Play a full random permutation per cycle, no repeats within a cycle",
		"catalog": "Continue into the album library once the queue runs out",
	}
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Available Policies:")
	for _, name := range names {
		fmt.Printf("  %-10s - %s\n", name, policies[name])
	}
}
