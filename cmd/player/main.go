// Package main provides the player entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/okizeme/bytemusic/internal/app/importer"
	"github.com/okizeme/bytemusic/internal/app/playback"
	"github.com/okizeme/bytemusic/internal/app/session"
	"github.com/okizeme/bytemusic/internal/app/session/state"
	"github.com/okizeme/bytemusic/internal/infra/config"
	"github.com/okizeme/bytemusic/internal/infra/logger"
	"github.com/okizeme/bytemusic/internal/infra/store"
)

var (
	app        = kingpin.New("bytemusic", "bytemusic player daemon")
	configPath = app.Flag("config", "Path to config file").Default("config/player.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()
	reset      = app.Flag("reset", "Discard saved playback state on startup").Bool()
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the player (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger. Logs go to stderr so the prompt stays usable.
	loggerConfig := logger.Config{
		Output: "stderr",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}
	if *reset {
		cfg.Playback.ResetOnStart = true
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// run executes the main player logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	statePath, err := resolveStatePath(cfg.Storage.Path)
	if err != nil {
		return err
	}

	st, err := store.Open(statePath)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { _ = st.Close() }()

	mgr, err := session.NewManager(cfg, st)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	defer mgr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Import directory watcher.
	if cfg.Library.ImportDir != "" {
		watcher, err := importer.New(cfg.Library.ImportDir, mgr.Library())
		if err != nil {
			return fmt.Errorf("failed to start importer: %w", err)
		}
		go watcher.Run(ctx)
		zlog.Info().Msgf("Watching import directory: %s", cfg.Library.ImportDir)
	}

	go printEvents(mgr)

	// Command loop, terminated by "quit" or EOF.
	replDone := make(chan struct{})
	go func() {
		defer close(replDone)
		repl(mgr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case <-replDone:
	}

	zlog.Info().Msg("Player stopped")
	return nil
}

// resolveStatePath returns the configured state file path, defaulting
// to a per-user data file when none is configured.
func resolveStatePath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine state path: %w", err)
	}
	dir := filepath.Join(base, "bytemusic")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create state directory: %w", err)
	}
	return filepath.Join(dir, "state.db"), nil
}

// printEvents mirrors playback events to the terminal.
func printEvents(mgr *session.Manager) {
	for ev := range mgr.Events() {
		switch ev.Type {
		case playback.EventSongStarted:
			np := mgr.NowPlaying()
			if np.Song != nil {
				fmt.Printf("\n♪ %s - %s\n", np.Song.Title, np.Song.Artist)
			}
		case playback.EventQueueExhausted:
			fmt.Println("\n(end of queue)")
		}
	}
}

func repl(mgr *session.Manager) {
	fmt.Println("bytemusic - type 'help' for commands")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			printHelp()
		case "quit", "exit":
			return

		case "songs":
			for i, s := range mgr.Songs() {
				fmt.Printf("%3d. [%s] %s - %s\n", i+1, s.ID, s.Title, s.Artist)
			}
		case "search":
			for _, s := range mgr.Search(strings.Join(args, " ")) {
				fmt.Printf("  [%s] %s - %s\n", s.ID, s.Title, s.Artist)
			}
		case "playlists":
			for _, pl := range mgr.Playlists() {
				fmt.Printf("  [%s] %s (%d songs)\n", pl.ID, pl.Name, len(pl.SongIDs))
			}
		case "favs":
			for _, s := range mgr.Favorites() {
				fmt.Printf("  [%s] %s - %s\n", s.ID, s.Title, s.Artist)
			}
		case "queue":
			snap := mgr.NowPlaying().Snapshot
			for i, id := range snap.Queue {
				marker := "  "
				if id == snap.CurrentID {
					marker = "▶ "
				}
				fmt.Printf("%s%d. %s\n", marker, i+1, id)
			}
		case "now":
			printNowPlaying(mgr)

		case "play":
			if len(args) == 0 {
				fmt.Println("usage: play <song-id>")
				continue
			}
			mgr.Play(args[0])
		case "playlist":
			if len(args) == 0 {
				fmt.Println("usage: playlist <playlist-id>")
				continue
			}
			mgr.PlayPlaylist(args[0])
		case "pause", "toggle":
			mgr.TogglePlayPause()
		case "next":
			mgr.Next()
		case "prev":
			mgr.Prev()
		case "seek":
			if len(args) == 0 {
				fmt.Println("usage: seek <seconds>")
				continue
			}
			secs, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				fmt.Println("usage: seek <seconds>")
				continue
			}
			mgr.Seek(time.Duration(secs * float64(time.Second)))

		case "fav":
			if len(args) == 0 {
				fmt.Println("usage: fav <song-id>")
				continue
			}
			if mgr.ToggleFavorite(args[0]) {
				fmt.Println("favorited")
			} else {
				fmt.Println("unfavorited")
			}
		case "rm":
			if len(args) == 0 {
				fmt.Println("usage: rm <song-id>")
				continue
			}
			mgr.RemoveSong(args[0])

		case "new":
			if len(args) == 0 {
				fmt.Println("usage: new <playlist name>")
				continue
			}
			id, err := mgr.CreatePlaylist(strings.Join(args, " "))
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("created playlist %s\n", id)
		case "add":
			if len(args) != 2 {
				fmt.Println("usage: add <song-id> <playlist-id>")
				continue
			}
			mgr.AddSongToPlaylist(args[0], args[1])
		case "drop":
			if len(args) != 2 {
				fmt.Println("usage: drop <song-id> <playlist-id>")
				continue
			}
			mgr.RemoveSongFromPlaylist(args[0], args[1])
		case "reorder":
			if len(args) < 2 {
				fmt.Println("usage: reorder <playlist-id> <song-id>...")
				continue
			}
			if err := mgr.ReorderPlaylistSongs(args[0], args[1:]); err != nil {
				fmt.Printf("Error: %v\n", err)
			}

		case "tab":
			if len(args) == 0 {
				fmt.Printf("current tab: %s\n", mgr.ActiveTab())
				continue
			}
			if !mgr.SetActiveTab(state.Tab(args[0])) {
				fmt.Println("tabs: home, search, playlists, fav")
			}

		default:
			fmt.Printf("unknown command %q, type 'help'\n", cmd)
		}
	}
}

func printNowPlaying(mgr *session.Manager) {
	np := mgr.NowPlaying()
	if np.Song == nil {
		fmt.Println("nothing playing")
		return
	}
	fmt.Printf("%s - %s [%s] %.0fs/%.0fs\n",
		np.Song.Title, np.Song.Artist, np.Snapshot.State,
		np.Snapshot.Position.Seconds(), np.Snapshot.Duration.Seconds())
}

func printHelp() {
	fmt.Print(`Commands:
  songs                       List library songs
  search <query>              Search songs by title, artist or playlist
  playlists                   List playlists
  favs                        List favorite songs
  queue                       Show the play queue
  now                         Show the current song
  play <song-id>              Play a song (rebuilds the queue)
  playlist <playlist-id>      Play a playlist from the top
  pause                       Toggle play/pause
  next / prev                 Skip forward / back in the queue
  seek <seconds>              Seek within the current song
  fav <song-id>               Toggle favorite
  rm <song-id>                Remove a song everywhere
  new <name>                  Create a playlist
  add <song-id> <playlist-id> Add a song to a playlist
  drop <song-id> <playlist-id> Remove a song from a playlist
  reorder <playlist-id> <song-id>... Reorder a playlist
  tab [name]                  Show or switch the active tab
  quit                        Exit
`)
}
