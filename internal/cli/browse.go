package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tasktree/pkg/errors"
	"github.com/matzehuels/tasktree/pkg/store"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	browseInputStyle    = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// BrowseModel - Interactive task outline
// =============================================================================

// BrowseModel is the bubbletea model for the browse command. It edits the
// graph in place and writes it back through save.
type BrowseModel struct {
	Graph  *taskgraph.Graph
	Rows   []treeRow
	Cursor int
	Offset int
	Height int

	// Dirty is set by every edit and cleared by a successful save.
	Dirty bool
	Saves int

	adding      bool
	input       []rune
	confirmQuit bool
	status      string
	save        func(*taskgraph.Graph) error
}

// NewBrowseModel creates a browse model over g.
func NewBrowseModel(g *taskgraph.Graph, save func(*taskgraph.Graph) error) BrowseModel {
	return BrowseModel{
		Graph:  g,
		Rows:   flatten(g),
		Height: 15,
		save:   save,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

// current returns the task under the cursor.
func (m BrowseModel) current() *taskgraph.Node {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return nil
	}
	return m.Rows[m.Cursor].node
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}

		key := msg.String()
		if key != "q" && key != "esc" {
			m.confirmQuit = false
		}

		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.Dirty && !m.confirmQuit {
				m.confirmQuit = true
				m.status = "Unsaved changes: s saves, q again quits"
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			m.moveTo(m.Cursor - 1)
		case "down", "j":
			m.moveTo(m.Cursor + 1)
		case " ", "space", "x":
			if n := m.current(); n != nil {
				n.SetDone(!n.Done)
				m.Dirty = true
				m.status = fmt.Sprintf("Marked #%d %s", n.ID, doneWord(n.Done))
			}
		case "a":
			if m.current() != nil {
				m.adding = true
				m.input = nil
				m.status = ""
			}
		case "s":
			m.saveGraph()
		}

	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
		m.moveTo(m.Cursor)
	}
	return m, nil
}

func (m BrowseModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.adding = false
		m.input = nil
	case tea.KeyEnter:
		name := string(m.input)
		if err := errors.ValidateTaskName(name); err != nil {
			m.status = errors.UserMessage(err)
			return m, nil
		}
		task := m.Graph.CreateTask(name, m.current())
		m.adding = false
		m.input = nil
		m.Dirty = true
		m.Rows = flatten(m.Graph)
		for i, r := range m.Rows {
			if r.node == task && !r.shared {
				m.moveTo(i)
				break
			}
		}
		m.status = fmt.Sprintf("Added #%d", task.ID)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

// moveTo places the cursor on row i, clamped, and scrolls it into view.
func (m *BrowseModel) moveTo(i int) {
	if i >= len(m.Rows) {
		i = len(m.Rows) - 1
	}
	if i < 0 {
		i = 0
	}
	m.Cursor = i
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *BrowseModel) saveGraph() {
	if err := m.save(m.Graph); err != nil {
		m.status = "Save failed: " + errors.UserMessage(err)
		return
	}
	m.Dirty = false
	m.confirmQuit = false
	m.Saves++
	m.status = "Saved"
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Tasks"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("↑/↓ navigate  space toggle  a add  s save  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}
	for i := m.Offset; i < end; i++ {
		line := formatRow(m.Rows[i])
		if i == m.Cursor {
			b.WriteString(browseSelectedStyle.Render("▸ ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.adding {
		parent := m.current()
		b.WriteString(browseDimStyle.Render(fmt.Sprintf("New task under %s: ", parent.Name)))
		b.WriteString(browseInputStyle.Render(string(m.input) + "█"))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))
	if m.Dirty {
		footer += " modified"
	}
	b.WriteString(browseDimStyle.Render(footer))

	return b.String()
}

func doneWord(done bool) string {
	if done {
		return "done"
	}
	return "open"
}

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and edit tasks interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := store.Open(c.cfg.Store, store.Options{CreateIfMissing: true})
			if err != nil {
				return err
			}
			defer s.Close()

			g, err := s.Load(ctx)
			if err != nil {
				return err
			}

			m := NewBrowseModel(g, func(g *taskgraph.Graph) error {
				return s.Save(ctx, g)
			})
			finalModel, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			if err != nil {
				return err
			}

			fm, ok := finalModel.(BrowseModel)
			if !ok {
				return nil
			}
			if fm.Saves > 0 {
				printSuccess(c.out, "Saved task graph")
				printFile(c.out, c.location())
			}
			if fm.Dirty {
				printWarning(c.out, "Discarded unsaved changes")
			}
			return nil
		},
	}
}
