package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/withgalaxy/quasar/pkg/config"
	"github.com/withgalaxy/quasar/pkg/counter"
	"github.com/withgalaxy/quasar/pkg/devtools"
	"github.com/withgalaxy/quasar/pkg/followers"
	"github.com/withgalaxy/quasar/pkg/store"
	"github.com/withgalaxy/quasar/pkg/todo"
)

var (
	inspectPort int
	inspectHost string
	inspectTick time.Duration
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Serve store snapshots to websocket inspectors",
	Long: `Create the demo stores, attach them to a devtools server and stream every
change to connected websocket inspectors until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectPort, "port", 0, "port to listen on (defaults to devtools.port)")
	inspectCmd.Flags().StringVar(&inspectHost, "host", "", "host to bind to (defaults to devtools.host)")
	inspectCmd.Flags().DurationVar(&inspectTick, "tick", 0, "increment the counter at this interval")
}

func runInspect(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if inspectPort != 0 {
		a.cfg.Devtools.Port = inspectPort
	}
	if inspectHost != "" {
		a.cfg.Devtools.Host = inspectHost
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	srv := devtools.NewServer(
		devtools.WithLogger(a.log.Named("devtools")),
		devtools.WithCheckOrigin(devtools.OriginChecker(a.cfg.Devtools.AllowOrigins)),
	)
	srv.Start()
	defer srv.Close()

	c := counter.New()
	defer c.Destroy()

	todos := todo.New(todo.WithLogger(a.log.Named("todo")))
	defer todos.Destroy()
	if seed := config.ResolvePath(a.root, a.cfg.Todo.SeedFile); seed != "" && fileExists(seed) {
		if _, err := importChecklist(todos, seed); err != nil {
			return err
		}
	}
	remaining := todos.Remaining()
	defer remaining.Destroy()

	fixture := config.ResolvePath(a.root, a.cfg.Followers.Fixture)
	timeout := time.Duration(a.cfg.Followers.Timeout) * time.Second
	view := followers.NewView(
		followers.WithTimeout(followers.FixtureFetcher(fixture), timeout),
		followers.WithLogger(a.log.Named("followers")),
	)
	defer view.Destroy()

	detach := []store.Unsubscriber{
		devtools.Attach(srv, "counter", c.Store()),
		devtools.Attach(srv, "todos", todos.Store()),
		devtools.Attach[int](srv, "todos/remaining", remaining),
		devtools.Attach(srv, "followers", view.Store()),
	}
	defer func() {
		for _, d := range detach {
			d()
		}
	}()

	view.Mount(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc(a.cfg.Devtools.Path, srv.HandleWebSocket)
	httpSrv := &http.Server{
		Addr:              a.cfg.DevtoolsAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve devtools: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if inspectTick > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(inspectTick)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					c.Increment()
				}
			}
		})
	}

	a.log.Info("devtools listening",
		zap.String("url", fmt.Sprintf("ws://%s%s", a.cfg.DevtoolsAddr(), a.cfg.Devtools.Path)),
		zap.Strings("stores", srv.Stores()),
	)

	return g.Wait()
}
