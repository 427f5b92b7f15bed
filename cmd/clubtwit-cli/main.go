package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/mainmeister/clubtwit-cli/feed"
	"github.com/mainmeister/clubtwit-cli/manager"
	"github.com/mainmeister/clubtwit-cli/model"
	"github.com/mainmeister/clubtwit-cli/store"
	"github.com/urfave/cli/v2"
)

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitDataError    = 3
)

// cancelGrace is how long a canceled download may take to stop before
// the process gives up waiting.
const cancelGrace = 5 * time.Second

func main() {
	app := &cli.App{
		Name:    "clubtwit-cli",
		Usage:   "A scriptable Club TWiT podcast downloader",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Value:   getDefaultDBPath(),
				Usage:   "Database file path",
				EnvVars: []string{"CLUBTWIT_DB"},
			},
			&cli.StringFlag{
				Name:    "config",
				Value:   getDefaultConfigPath(),
				Usage:   "Config file path",
				EnvVars: []string{"CLUBTWIT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "feed-url",
				Aliases: []string{"u"},
				Usage:   "Feed URL (overrides the config file)",
				EnvVars: []string{"CLUBTWIT_URL", "twitcluburl"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug details to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "refresh",
				Usage:  "Fetch the feed and cache its shows",
				Action: refreshShows,
			},
			{
				Name:  "shows",
				Usage: "List cached shows",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   50,
						Usage:   "Maximum number of shows to return",
					},
					&cli.StringFlag{
						Name:    "since",
						Aliases: []string{"s"},
						Usage:   "Show entries since duration (e.g., 7d, 2w, 3m, 1y)",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort by column (date, size, title)",
					},
					&cli.BoolFlag{
						Name:  "desc",
						Usage: "Sort in descending order",
					},
				},
				Action: listShows,
			},
			{
				Name:      "show",
				Usage:     "Show details for one cached show",
				ArgsUsage: "<index>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "full",
						Aliases: []string{"f"},
						Usage:   "Include the full description text",
					},
				},
				Action: showDetails,
			},
			{
				Name:      "download",
				Usage:     "Download a show's media file",
				ArgsUsage: "<index>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Destination directory (default: config download_dir or .)",
					},
					&cli.IntFlag{
						Name:    "limit-rate",
						Aliases: []string{"r"},
						Usage:   "Throttle the download to this many KiB/s",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Suppress the progress line",
					},
				},
				Action: downloadShow,
			},
			{
				Name:  "config",
				Usage: "Manage persistent configuration",
				Subcommands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "Set a configuration value",
						ArgsUsage: "<url|dir|rate> <value>",
						Action:    configSet,
					},
					{
						Name:   "show",
						Usage:  "Show the current configuration",
						Action: configShow,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneralError)
	}
}

func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "clubtwit-cli.db"
	}
	return filepath.Join(home, ".config", "clubtwit-cli", "shows.db")
}

func getDefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "clubtwit-cli", "config.yaml")
}

func getStore(c *cli.Context) (*store.Store, error) {
	dbPath := c.String("db")

	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return s, nil
}

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func buildLogger(c *cli.Context) *slog.Logger {
	if c.Bool("verbose") {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// resolveFeedURL prefers the --feed-url flag (and its environment
// variables) over the config file.
func resolveFeedURL(c *cli.Context) (string, error) {
	if url := c.String("feed-url"); url != "" {
		return url, nil
	}

	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return "", err
	}
	if cfg.FeedURL != "" {
		return cfg.FeedURL, nil
	}

	return "", fmt.Errorf("no feed URL configured (set --feed-url, CLUBTWIT_URL, or run: clubtwit-cli config set url <url>)")
}

func refreshShows(c *cli.Context) error {
	feedURL, err := resolveFeedURL(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	s, err := getStore(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	// The refresh worker emits exactly one event: loaded or failed
	sink := model.NewChannelSink(1)
	mgr := manager.New(manager.Config{FeedURL: feedURL}, sink, &manager.Options{
		Logger: buildLogger(c),
	})

	if err := mgr.Refresh(c.Context); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to refresh: %v", err), ExitDataError)
	}

	ev := <-sink.Events()
	if ev.Kind == model.EventShowsFailed {
		return cli.Exit(fmt.Sprintf("Failed to refresh: %v", ev.Err), ExitDataError)
	}

	if err := s.ReplaceShows(feedURL, ev.Shows); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to cache shows: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success":  true,
		"feed_url": feedURL,
		"shows":    len(ev.Shows),
	})
}

func listShows(c *cli.Context) error {
	s, err := getStore(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	if _, err := s.Meta(); err != nil {
		return cli.Exit("No cached shows (run: clubtwit-cli refresh)", ExitDataError)
	}

	opts, err := store.BuildQueryOptions(c.Int("limit"), c.String("since"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Invalid query options: %v", err), ExitUsageError)
	}

	shows, err := s.Shows(opts)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to list shows: %v", err), ExitDataError)
	}

	// Sorting reorders the output but each entry keeps its index, so
	// the result stays valid input for "download <index>"
	if sortName := c.String("sort"); sortName != "" {
		column, err := model.ParseSortColumn(sortName)
		if err != nil {
			return cli.Exit(err.Error(), ExitUsageError)
		}
		desc := c.Bool("desc")
		slices.SortStableFunc(shows, func(a, b store.CachedShow) int {
			r := model.CompareShows(a.Show, b.Show, column)
			if desc {
				return -r
			}
			return r
		})
	}

	return outputJSON(map[string]interface{}{
		"count": len(shows),
		"shows": shows,
	})
}

func showDetails(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: clubtwit-cli show <index>", ExitUsageError)
	}

	var index int
	if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &index); err != nil {
		return cli.Exit("Invalid show index", ExitUsageError)
	}

	s, err := getStore(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer s.Close()

	cached, err := s.Show(index)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get show: %v", err), ExitDataError)
	}

	// Swap the first-paragraph summary for the whole description text
	if c.Bool("full") && cached.DescriptionHTML != "" {
		cached.Description = feed.PlainText(cached.DescriptionHTML)
	}

	return outputJSON(cached)
}

func downloadShow(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: clubtwit-cli download <index>", ExitUsageError)
	}

	var index int
	if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &index); err != nil {
		return cli.Exit("Invalid show index", ExitUsageError)
	}

	fileCfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to read config: %v", err), ExitGeneralError)
	}

	s, err := getStore(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	cached, err := s.Show(index)
	s.Close()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get show: %v", err), ExitDataError)
	}

	if !cached.Downloadable() {
		return cli.Exit(fmt.Sprintf("Show %d has no downloadable media: %s", index, cached.Title), ExitDataError)
	}

	destDir := c.String("dir")
	if destDir == "" {
		destDir = fileCfg.DownloadDir
	}
	if destDir == "" {
		destDir = "."
	}

	rateKiB := c.Int("limit-rate")
	if rateKiB == 0 {
		rateKiB = fileCfg.RateLimitKiB
	}

	sink := model.NewChannelSink(16)
	mgr := manager.New(manager.Config{
		DownloadDir: destDir,
		RateLimit:   int64(rateKiB) * 1024,
	}, sink, &manager.Options{
		Logger: buildLogger(c),
	})

	mgr.RestoreShows([]model.Show{cached.Show})
	if _, err := mgr.SelectShow(0); err != nil {
		return cli.Exit(err.Error(), ExitGeneralError)
	}

	id, err := mgr.StartDownload(c.Context, "")
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to start download: %v", err), ExitGeneralError)
	}

	quiet := c.Bool("quiet")
	if !quiet {
		fmt.Fprintf(os.Stderr, "Downloading %s\n", cached.Title)
	}

	// Forward interrupts to the manager so the partial file is removed
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var killTimer <-chan time.Time
	for {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nCanceling download...")
			mgr.CancelDownload()
			killTimer = time.After(cancelGrace)

		case <-killTimer:
			return cli.Exit("Download did not stop in time", ExitGeneralError)

		case ev := <-sink.Events():
			switch ev.Kind {
			case model.EventProgress:
				if !quiet {
					renderProgress(os.Stderr, ev.Progress)
				}
			case model.EventDone:
				if !quiet {
					fmt.Fprintln(os.Stderr)
				}
				switch ev.State {
				case model.StateCompleted:
					return outputJSON(map[string]interface{}{
						"success": true,
						"session": id,
						"title":   cached.Title,
						"file":    filepath.Join(destDir, manager.Filename(cached.Show)),
					})
				case model.StateCanceled:
					return cli.Exit("Download canceled", ExitGeneralError)
				default:
					return cli.Exit(fmt.Sprintf("Download failed: %v", ev.Err), ExitGeneralError)
				}
			}
		}
	}
}

func configSet(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("Usage: clubtwit-cli config set <url|dir|rate> <value>", ExitUsageError)
	}

	path := c.String("config")
	cfg, err := loadFileConfig(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to read config: %v", err), ExitGeneralError)
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	switch key {
	case "url":
		cfg.FeedURL = value
	case "dir":
		cfg.DownloadDir = value
	case "rate":
		rate, err := strconv.Atoi(value)
		if err != nil || rate < 0 {
			return cli.Exit("Rate must be a non-negative integer (KiB/s)", ExitUsageError)
		}
		cfg.RateLimitKiB = rate
	default:
		return cli.Exit(fmt.Sprintf("Unknown config key: %s", key), ExitUsageError)
	}

	if err := saveFileConfig(path, cfg); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to write config: %v", err), ExitGeneralError)
	}

	return outputJSON(map[string]interface{}{
		"success": true,
		"config":  cfg,
	})
}

func configShow(c *cli.Context) error {
	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to read config: %v", err), ExitGeneralError)
	}
	return outputJSON(cfg)
}
