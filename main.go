package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/clipflow/app"
	"github.com/CrestNiraj12/clipflow/domain"
	"github.com/CrestNiraj12/clipflow/engine/playback"
	"github.com/CrestNiraj12/clipflow/infra/auth"
	"github.com/CrestNiraj12/clipflow/infra/config"
	"github.com/CrestNiraj12/clipflow/infra/editor"
	"github.com/CrestNiraj12/clipflow/infra/logging"
	"github.com/CrestNiraj12/clipflow/infra/postgres"
	"github.com/CrestNiraj12/clipflow/infra/realtime"
	"github.com/CrestNiraj12/clipflow/infra/surface"
	"github.com/CrestNiraj12/clipflow/tui"
	"github.com/CrestNiraj12/clipflow/tui/feed"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type runOptions struct {
	configPath string
	mode       string
	tag        string
	postID     string
}

func newRootCmd() *cobra.Command {
	var opts runOptions
	v, c, d := resolvedRuntimeVersionInfo(version, commit, date)

	cmd := &cobra.Command{
		Use:           "clipflow",
		Short:         "Scroll a vertical feed of short clips from the terminal",
		Version:       formatVersion(v, c, d),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(*cobra.Command, []string) error {
			return validateRunOptions(opts)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.SetVersionTemplate("clipflow {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/clipflow/config.toml)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "feed to open: newest, following or tag")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "hashtag for the tag feed")
	cmd.Flags().StringVar(&opts.postID, "post", "", "open a single post by id")

	cmd.AddCommand(newMigrateCmd(&opts.configPath))
	return cmd
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			pool, err := postgres.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.ApplyMigrations(cmd.Context(), pool)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(out, "applied %s\n", v)
			}
			return nil
		},
	}
}

func validateRunOptions(opts runOptions) error {
	switch domain.FeedMode(opts.mode) {
	case "", domain.ModeNewest, domain.ModeFollowing:
	case domain.ModeTag:
		if domain.NormalizeTag(opts.tag) == "" {
			return errors.New("--mode tag needs --tag")
		}
	default:
		return fmt.Errorf("unknown --mode %q: want newest, following or tag", opts.mode)
	}
	if opts.postID != "" && (opts.mode != "" || opts.tag != "") {
		return errors.New("--post cannot be combined with --mode or --tag")
	}
	return nil
}

func formatVersion(v, c, d string) string {
	return fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", v, c, d)
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

// applyRunOptions lets flags override the remembered feed for this session only.
func applyRunOptions(st config.UIState, opts runOptions) config.UIState {
	if opts.mode != "" {
		st.Mode = opts.mode
	}
	if opts.tag != "" {
		st.Tag = domain.NormalizeTag(opts.tag)
		if opts.mode == "" {
			st.Mode = string(domain.ModeTag)
		}
	}
	return st
}

func run(ctx context.Context, opts runOptions) error {
	// 1. Load config from file and environment.
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer logCloser.Close()
	helper := log.NewHelper(log.With(logger, "module", "main"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 2. Build infrastructure.
	pool, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	store := postgres.NewStore(pool, logger)

	var (
		commentSvc app.CommentService = store
		inserts    app.InsertSubscriber
	)
	rdb, err := realtime.Connect(ctx, cfg.RedisURL)
	if err != nil {
		// Comments still load; they just stop updating live.
		helper.Warnw("msg", "realtime disabled", "err", err)
	} else {
		defer rdb.Close()
		broker := realtime.NewBroker(rdb, logger)
		commentSvc = realtime.NewCommentService(store, broker)
		inserts = broker
	}

	var opener playback.Opener
	switch cfg.Surface {
	case config.SurfaceChrome:
		chrome, err := surface.NewChromeOpener(ctx, cfg.Headless, logger)
		if err != nil {
			return err
		}
		defer chrome.Close()
		opener = chrome
	case config.SurfaceRelay:
		if rdb == nil {
			return errors.New("relay surface needs redis")
		}
		opener = surface.NewRelayOpener(rdb, "", logger)
	default:
		opener = surface.NoneOpener{}
	}

	viewerID, err := auth.NewFileViewerProvider(cfg.ViewerPath).ViewerID()
	if err != nil {
		return err
	}
	uiState, err := config.LoadUIState(cfg.UIStatePath)
	if err != nil {
		helper.Warnw("msg", "ignoring ui state", "err", err)
	}
	uiState = applyRunOptions(uiState, opts)

	channel := playback.NewChannel(logger, cfg.Playback.QueueSize)
	defer channel.Close()

	// 3. Wire root TUI model.
	root := tui.NewApp(tui.Deps{
		Feed: feed.Deps{
			Feed:        store,
			Interaction: store,
			Moderation:  store,
			Comments:    commentSvc,
			Inserts:     inserts,
			Opener:      opener,
			Channel:     channel,
			Bursts:      playback.BurstFromMillis(cfg.Playback.ActivateBurstMS, cfg.Playback.LoadedBurstMS),
			Logger:      logger,
			ViewerID:    viewerID,
			StatePath:   cfg.UIStatePath,
			State:       uiState,
			Limit:       cfg.FeedLimit,
			PostID:      opts.postID,
		},
		Editor: editor.NewEnvEditor(),
	})

	// 4. Run.
	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if a, ok := final.(tui.App); ok {
		a.Close()
	} else {
		root.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "clipflow: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
