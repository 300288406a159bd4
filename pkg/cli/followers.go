package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/withgalaxy/quasar/pkg/config"
	"github.com/withgalaxy/quasar/pkg/followers"
	"github.com/withgalaxy/quasar/pkg/render"
)

var (
	followersFixture string
	followersWatch   bool
	followersHTML    bool
)

var followersCmd = &cobra.Command{
	Use:   "followers",
	Short: "Load and print the followers list",
	Long: `Mount a followers view backed by a JSON or YAML fixture in the people API
shape and print it once loaded. With --watch the view is remounted every
time the fixture changes.`,
	Args: cobra.NoArgs,
	RunE: runFollowers,
}

func init() {
	rootCmd.AddCommand(followersCmd)
	followersCmd.Flags().StringVar(&followersFixture, "fixture", "", "response fixture (defaults to followers.fixture from config)")
	followersCmd.Flags().BoolVarP(&followersWatch, "watch", "w", false, "remount when the fixture changes")
	followersCmd.Flags().BoolVar(&followersHTML, "html", false, "print the list as HTML")
}

func runFollowers(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	fixture := followersFixture
	if fixture == "" {
		fixture = config.ResolvePath(a.root, a.cfg.Followers.Fixture)
	}
	if fixture == "" {
		return fmt.Errorf("no followers fixture configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	timeout := time.Duration(a.cfg.Followers.Timeout) * time.Second
	fetch := followers.WithTimeout(followers.FixtureFetcher(fixture), timeout)
	view := followers.NewView(fetch, followers.WithLogger(a.log))
	defer view.Destroy()

	out := cmd.OutOrStdout()

	if !followersWatch {
		select {
		case <-view.Mount(ctx):
		case <-ctx.Done():
			return ctx.Err()
		}
		state := view.State()
		if err := writeView(out, render.Followers(state), followersHTML); err != nil {
			return err
		}
		if state.Status == followers.StatusFailed {
			return fmt.Errorf("load followers: %w", state.Err)
		}
		return nil
	}

	unsub := view.Subscribe(func(state followers.State) {
		if err := writeView(out, render.Followers(state), followersHTML); err != nil {
			a.log.Warn("render followers", zap.Error(err))
		}
	})
	defer unsub()

	view.Mount(ctx)
	a.log.Info("watching fixture", zap.String("path", fixture))

	return watchFile(ctx, fixture, a.log, func() {
		view.Unmount()
		view.Mount(ctx)
	})
}

// watchFile calls onChange whenever path is written or recreated, until ctx
// is done. The parent directory is watched so editors that replace the file
// are still seen.
func watchFile(ctx context.Context, path string, log *zap.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				log.Debug("fixture changed", zap.String("op", ev.Op.String()))
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}
