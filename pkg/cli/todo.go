package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/withgalaxy/quasar/pkg/config"
	"github.com/withgalaxy/quasar/pkg/render"
	"github.com/withgalaxy/quasar/pkg/todo"
)

var (
	todoAdd         []string
	todoToggle      []int
	todoRemove      []int
	todoImport      string
	todoHTML        bool
	todoInteractive bool
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Drive a todo list store",
	Long: `Create a todo list, optionally seed it from a markdown checklist, apply
--add, --toggle and --remove in that order and print the resulting list.
Positions are 1-based and refer to the list after the adds.`,
	Args: cobra.NoArgs,
	RunE: runTodo,
}

func init() {
	rootCmd.AddCommand(todoCmd)
	todoCmd.Flags().StringArrayVar(&todoAdd, "add", nil, "task text to add (repeatable)")
	todoCmd.Flags().IntSliceVar(&todoToggle, "toggle", nil, "position of a task to toggle (repeatable)")
	todoCmd.Flags().IntSliceVar(&todoRemove, "remove", nil, "position of a task to remove (repeatable)")
	todoCmd.Flags().StringVar(&todoImport, "import", "", "markdown checklist to import first")
	todoCmd.Flags().BoolVar(&todoHTML, "html", false, "print the list as HTML")
	todoCmd.Flags().BoolVarP(&todoInteractive, "interactive", "i", false, "edit the list with prompts")
}

func runTodo(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	s := todo.New(todo.WithLogger(a.log))
	defer s.Destroy()

	title := a.cfg.Title
	seed := todoImport
	if seed == "" {
		if path := config.ResolvePath(a.root, a.cfg.Todo.SeedFile); path != "" && fileExists(path) {
			seed = path
		}
	}
	if seed != "" {
		list, err := importChecklist(s, seed)
		if err != nil {
			return err
		}
		if list.Title != "" {
			title = list.Title
		}
		a.log.Debug("imported checklist", zap.String("path", seed), zap.Int("tasks", len(list.Items)))
	}

	if err := applyTodoFlags(s, todoAdd, todoToggle, todoRemove); err != nil {
		return err
	}

	if todoInteractive {
		unsub := s.Subscribe(func(tasks []todo.Task) {
			fmt.Fprintln(out)
			fmt.Fprint(out, render.TodoList(tasks))
			fmt.Fprintln(out)
		})
		defer unsub()

		if err := runTodoPrompts(s, out); err != nil {
			return err
		}
	}

	return writeView(out, render.Header(title)+"\n"+render.TodoList(s.Tasks()), todoHTML)
}

// applyTodoFlags adds, then toggles, then removes. Toggle and remove
// positions are resolved against the list as it stands after the adds, so
// removing several positions at once does not shift the later ones.
func applyTodoFlags(s *todo.Store, adds []string, toggles, removes []int) error {
	for _, text := range adds {
		s.AddTask(text)
	}

	tasks := s.Tasks()
	at := func(pos int) (todo.Task, error) {
		if pos < 1 || pos > len(tasks) {
			return todo.Task{}, fmt.Errorf("no task at position %d (have %d)", pos, len(tasks))
		}
		return tasks[pos-1], nil
	}

	for _, pos := range toggles {
		t, err := at(pos)
		if err != nil {
			return fmt.Errorf("toggle: %w", err)
		}
		s.ToggleTask(t.ID)
	}

	for _, pos := range removes {
		t, err := at(pos)
		if err != nil {
			return fmt.Errorf("remove: %w", err)
		}
		s.RemoveTask(t.ID)
	}

	return nil
}

const (
	actionAdd    = "Add task"
	actionToggle = "Toggle task"
	actionRemove = "Remove task"
	actionQuit   = "Quit"
)

// quitOnInterrupt treats Ctrl+C at a prompt as a normal exit.
func quitOnInterrupt(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}

func runTodoPrompts(s *todo.Store, out io.Writer) error {
	for {
		var action string
		prompt := &survey.Select{
			Message: "What next?",
			Options: []string{actionAdd, actionToggle, actionRemove, actionQuit},
		}
		if err := survey.AskOne(prompt, &action); err != nil {
			return quitOnInterrupt(err)
		}

		switch action {
		case actionAdd:
			var text string
			if err := survey.AskOne(&survey.Input{Message: "Add a new task here..."}, &text); err != nil {
				return err
			}
			s.AddTask(text)

		case actionToggle, actionRemove:
			tasks := s.Tasks()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks yet.")
				continue
			}
			var idx int
			pick := &survey.Select{Message: "Which task?", Options: taskLabels(tasks)}
			if err := survey.AskOne(pick, &idx); err != nil {
				return err
			}
			if action == actionToggle {
				s.ToggleTask(tasks[idx].ID)
			} else {
				s.RemoveTask(tasks[idx].ID)
			}

		case actionQuit:
			return nil
		}
	}
}

func taskLabels(tasks []todo.Task) []string {
	labels := make([]string, len(tasks))
	for i, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		labels[i] = fmt.Sprintf("%d. %s %s", i+1, mark, t.Text)
	}
	return labels
}
