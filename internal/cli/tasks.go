package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tasktree/pkg/errors"
	"github.com/matzehuels/tasktree/pkg/store"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty task graph",
		Long:  `Create a task graph holding only the root task. An existing graph is kept unless --force is given.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := store.Open(c.cfg.Store, store.Options{})
			if err != nil {
				return err
			}
			defer s.Close()

			if !force {
				_, err := s.Load(ctx)
				switch {
				case err == nil:
					return errors.New(errors.ErrCodeInvalidInput, "a task graph already exists at %s (use --force to replace it)", c.location())
				case !errors.Is(err, errors.ErrCodeFileNotFound):
					return err
				}
			}

			if err := s.Save(ctx, taskgraph.New()); err != nil {
				return err
			}
			printSuccess(c.out, "Initialized empty task graph")
			printFile(c.out, c.location())
			printNextStep(c.out, "Add a task", "tasktree add NAME")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace an existing graph")
	return cmd
}

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var parentID int

	cmd := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add a task",
		Long:  `Add a task under the root, or under another task with --parent. Multiple words are joined into one name.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			if err := errors.ValidateTaskName(name); err != nil {
				return err
			}

			var task *taskgraph.Node
			err := c.update(cmd.Context(), true, func(g *taskgraph.Graph) error {
				parent, ok := g.Find(parentID)
				if !ok {
					return errors.New(errors.ErrCodeTaskNotFound, "no task with id %d", parentID)
				}
				task = g.CreateTask(name, parent)
				return nil
			})
			if err != nil {
				return err
			}

			printSuccess(c.out, "Added task %s %s", StyleNumber.Render(strconv.Itoa(task.ID)), StyleValue.Render(task.Name))
			printDetail(c.out, "under %s (#%d)", task.Parent().Name, task.Parent().ID)
			return nil
		},
	}

	cmd.Flags().IntVarP(&parentID, "parent", "p", taskgraph.RootID, "id of the task to add the new task under")
	return cmd
}

// doneCommand creates the done command, or undone when done is false.
func (c *CLI) doneCommand(done bool) *cobra.Command {
	use, short := "done ID...", "Mark tasks as done"
	if !done {
		use, short = "undone ID...", "Mark tasks as open again"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tasks []*taskgraph.Node
			err := c.update(cmd.Context(), false, func(g *taskgraph.Graph) error {
				for _, arg := range args {
					n, err := findTask(g, arg)
					if err != nil {
						return err
					}
					tasks = append(tasks, n)
				}
				for _, n := range tasks {
					n.SetDone(done)
				}
				return nil
			})
			if err != nil {
				return err
			}

			for _, n := range tasks {
				printSuccess(c.out, "%s %s %s", statusText(done), StyleValue.Render(n.Name), StyleDim.Render(fmt.Sprintf("#%d", n.ID)))
			}
			return nil
		},
	}
}

// linkCommand creates the link command.
func (c *CLI) linkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link PARENT CHILD",
		Short: "Make an existing task a dependency of another",
		Long: `Add a dependency edge from PARENT to CHILD, so CHILD becomes a shared
sub-task. Edges that would close a cycle, duplicate edges, and edges to the
root are refused.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parent, child *taskgraph.Node
			err := c.update(cmd.Context(), false, func(g *taskgraph.Graph) error {
				var err error
				if parent, err = findTask(g, args[0]); err != nil {
					return err
				}
				if child, err = findTask(g, args[1]); err != nil {
					return err
				}

				switch {
				case child == g.Head:
					return errors.New(errors.ErrCodeInvalidInput, "the root task cannot be a dependency")
				case parent.DependsOn(child):
					return errors.New(errors.ErrCodeInvalidInput, "task %d already depends on task %d", parent.ID, child.ID)
				case taskgraph.Reaches(child, parent):
					return errors.New(errors.ErrCodeInvalidInput, "linking %d -> %d would create a cycle", parent.ID, child.ID)
				}
				parent.AddDependency(child)
				return nil
			})
			if err != nil {
				return err
			}

			printSuccess(c.out, "Linked %s %s %s", StyleValue.Render(parent.Name), StyleDim.Render(iconArrow), StyleValue.Render(child.Name))
			return nil
		},
	}
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reachable tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.load(cmd.Context(), false)
			if err != nil {
				return err
			}

			if tree {
				for _, r := range flatten(g) {
					fmt.Fprintln(c.out, formatRow(r))
				}
			} else {
				fmt.Fprintln(c.out, taskTable(g.Reachable()))
			}
			fmt.Fprintln(c.out, summary(g))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "show an outline instead of a table")
	return cmd
}

// taskTable renders records as a table in the order given.
func taskTable(records []taskgraph.Record) string {
	rows := make([][]string, len(records))
	for i, r := range records {
		deps := make([]string, len(r.Dependencies))
		for j, id := range r.Dependencies {
			deps[j] = strconv.Itoa(id)
		}
		status := "open"
		if r.Done {
			status = "done"
		}
		rows[i] = []string{strconv.Itoa(r.ID), status, r.Name, strings.Join(deps, ", ")}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "Status", "Name", "Dependencies").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return base.Inherit(styleHeader)
			}
			if col == 1 && row < len(records) {
				if records[row].Done {
					return base.Inherit(styleDone)
				}
				return base.Inherit(styleOpen)
			}
			return base
		}).
		Render()
}

// summary returns a one-line count of the reachable tasks.
func summary(g *taskgraph.Graph) string {
	total, done := 0, 0
	g.Walk(func(n *taskgraph.Node) bool {
		total++
		if n.Done {
			done++
		}
		return true
	})
	parts := []string{
		fmt.Sprintf("%d tasks", total),
		fmt.Sprintf("%d done", done),
		fmt.Sprintf("%d open", total-done),
		fmt.Sprintf("next id %d", g.NextID()),
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}
