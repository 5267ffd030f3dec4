package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
)

type keyMap struct {
	Forward key.Binding
	Reverse key.Binding
	Jump    key.Binding
	Layer   key.Binding
	Toggle  key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reverse, k.Forward, k.Jump, k.Layer, k.Toggle, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Forward: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next year")),
	Reverse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous year")),
	Jump:    key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "jump")),
	Layer:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch layer")),
	Toggle:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "show/hide layer")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// remoteEventMsg carries a sequence change made by another client.
type remoteEventMsg domain.SequenceEvent

type model struct {
	ctx   context.Context
	ctrl  *usecases.SequenceController
	frame domain.Frame
	layer int // layer shown in the table
	table table.Model
	help  help.Model
	err   error
}

func newModel(ctx context.Context, ctrl *usecases.SequenceController) *model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Country", Width: 24},
			{Title: "Value", Width: 10},
			{Title: "Radius", Width: 8},
			{Title: "Popup", Width: 60},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	m := &model{ctx: ctx, ctrl: ctrl, table: t, help: help.New()}
	m.refresh()
	return m
}

func (m *model) Init() tea.Cmd {
	slog.Info("viewer started", "year", m.frame.Year, "layers", len(m.frame.Layers))
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-14, 5))
		m.help.Width = msg.Width
		return m, nil
	case remoteEventMsg:
		if msg.Sequence.Index != m.frame.Sequence.Index {
			m.apply(m.ctrl.SetDirect(m.ctx, msg.Sequence.Index))
		}
		return m, nil
	}
	return m, nil
}

func (m *model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Forward):
		m.apply(m.ctrl.Forward(m.ctx))
	case key.Matches(msg, keys.Reverse):
		m.apply(m.ctrl.Reverse(m.ctx))
	case key.Matches(msg, keys.Jump):
		i := int(msg.String()[0] - '0')
		m.apply(m.ctrl.SetDirect(m.ctx, i))
	case key.Matches(msg, keys.Layer):
		if n := len(m.frame.Layers); n > 0 {
			m.layer = (m.layer + 1) % n
			m.refresh()
		}
	case key.Matches(msg, keys.Toggle):
		if l, ok := m.currentLayer(); ok {
			m.err = m.ctrl.SetVisible(l.Name, !l.Visible)
			m.refresh()
		}
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply records the outcome of a sequence transition.
func (m *model) apply(ev domain.SequenceEvent, err error) {
	m.err = err
	if err != nil {
		slog.Warn("sequence transition failed", "error", err)
		return
	}
	slog.Debug("sequence moved", "action", ev.Action, "index", ev.Sequence.Index, "year", ev.Year)
	m.refresh()
}

func (m *model) refresh() {
	m.frame = m.ctrl.Snapshot()
	l, ok := m.currentLayer()
	if !ok {
		m.table.SetRows(nil)
		return
	}
	rows := make([]table.Row, 0, len(l.Markers))
	for _, mk := range l.Markers {
		value := domain.MissingValueText
		if mk.Value.Present {
			value = domain.FormatNumber(mk.Value.Number)
		}
		rows = append(rows, table.Row{mk.Country, value, fmt.Sprintf("%.1f", mk.Radius), mk.Popup.Body})
	}
	m.table.SetRows(rows)
}

func (m *model) currentLayer() (domain.LayerFrame, bool) {
	if m.layer >= len(m.frame.Layers) {
		return domain.LayerFrame{}, false
	}
	return m.frame.Layers[m.layer], true
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(yearStyle.Render(m.frame.Year))
	b.WriteString("  ")
	b.WriteString(m.sliderView())
	b.WriteString("\n\n")

	b.WriteString(m.layersView())
	b.WriteString("\n")
	b.WriteString(tableStyle.Render(m.table.View()))
	b.WriteString("\n")
	b.WriteString(m.legendsView())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return appStyle.Render(b.String())
}

// sliderView draws one tick per step with the current one highlighted.
func (m *model) sliderView() string {
	s := m.frame.Sequence
	ticks := make([]string, s.Steps)
	for i := range ticks {
		if i == s.Index {
			ticks[i] = currentStyle.Render("●")
		} else {
			ticks[i] = tickStyle.Render("○")
		}
	}
	return strings.Join(ticks, tickStyle.Render("─"))
}

func (m *model) layersView() string {
	names := make([]string, len(m.frame.Layers))
	for i, l := range m.frame.Layers {
		name := l.Overlay
		if i == m.layer {
			name = "▸ " + name
		}
		if l.Visible {
			names[i] = layerColor(l.Style.FillColor).Render(name)
		} else {
			names[i] = hiddenStyle.Render(name)
		}
	}
	return strings.Join(names, "   ")
}

func (m *model) legendsView() string {
	boxes := make([]string, 0, len(m.frame.Layers))
	for _, l := range m.frame.Layers {
		if !l.Visible {
			continue
		}
		var b strings.Builder
		b.WriteString(titleStyle.Render(l.Legend.Title))
		if len(l.Legend.Circles) == 0 {
			b.WriteString("\nno values")
		}
		for _, c := range l.Legend.Circles {
			fmt.Fprintf(&b, "\n%-5s %s", c.Name, c.Label)
		}
		boxes = append(boxes, legendStyle.Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}
