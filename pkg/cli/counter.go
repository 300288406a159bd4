package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/withgalaxy/quasar/pkg/counter"
	"github.com/withgalaxy/quasar/pkg/render"
	"github.com/withgalaxy/quasar/pkg/store"
)

var (
	counterTimes int
	counterStyle string
	counterHTML  bool
)

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Increment a counter store",
	Long: `Create a fresh counter, increment it the requested number of times and
print every value the store notifies.`,
	Args: cobra.NoArgs,
	RunE: runCounter,
}

func init() {
	rootCmd.AddCommand(counterCmd)
	counterCmd.Flags().IntVarP(&counterTimes, "times", "n", 1, "number of increments")
	counterCmd.Flags().StringVar(&counterStyle, "style", "hook", "store style: hook or slice")
	counterCmd.Flags().BoolVar(&counterHTML, "html", false, "print the final view as HTML")
}

func runCounter(cmd *cobra.Command, args []string) error {
	if counterTimes < 0 {
		return fmt.Errorf("--times must not be negative")
	}

	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()

	var (
		count     store.ReadableStore[int]
		increment func()
	)

	switch counterStyle {
	case "hook":
		c := counter.New()
		defer c.Destroy()
		count, increment = c.Store(), c.Increment
	case "slice":
		s := counter.NewSlice()
		defer s.Destroy()
		value := store.NewComputed[counter.State, int](s, func(st counter.State) int { return st.Value })
		defer value.Destroy()
		count = value
		increment = func() { s.Dispatch(counter.Increment) }
	default:
		return fmt.Errorf("unknown counter style: %s (must be hook or slice)", counterStyle)
	}

	unsub := count.Subscribe(func(n int) {
		a.log.Debug("count changed", zap.Int("count", n))
		fmt.Fprintf(out, "count: %d\n", n)
	})
	defer unsub()

	for i := 0; i < counterTimes; i++ {
		increment()
	}

	fmt.Fprintln(out)
	return writeView(out, render.Header(a.cfg.Title)+"\n"+render.Counter(count.Get()), counterHTML)
}
