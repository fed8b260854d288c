// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ilsc/internal/buildpipeline"
)

const statusWidth = 10

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type fileItem struct {
	path   string
	label  string
	stage  buildpipeline.Stage
	status buildpipeline.Status
}

func (it fileItem) finished() bool {
	switch it.status {
	case buildpipeline.StatusError, buildpipeline.StatusCached:
		return true
	case buildpipeline.StatusDone:
		return it.stage == buildpipeline.StageWrite
	}
	return false
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NewProgressModel returns a Bubble Tea model that renders pipeline progress.
// The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = workingStyle

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 60

	items := make([]fileItem, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items[i] = fileItem{path: file, label: "queued", status: buildpipeline.StatusQueued}
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(buildpipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = max(msg.Width-4, 10)
		}
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	var b strings.Builder
	header := fmt.Sprintf("%s %s", m.spinner.View(), m.title)
	if m.done {
		header = "done: " + m.title
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-4, 20)
	for _, it := range m.items {
		status := styleFor(it).Render(fmt.Sprintf("%*s", statusWidth, it.label))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(it.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1))
	} else {
		b.WriteString(m.prog.View())
	}
	fmt.Fprintf(&b, "\n%s\n", m.summary())
	return b.String()
}

func (m *progressModel) summary() string {
	var finished, failed, cached int
	for _, it := range m.items {
		if !it.finished() {
			continue
		}
		finished++
		switch it.status {
		case buildpipeline.StatusError:
			failed++
		case buildpipeline.StatusCached:
			cached++
		}
	}
	s := fmt.Sprintf("%d/%d files", finished, len(m.items))
	if cached > 0 {
		s += fmt.Sprintf(", %d cached", cached)
	}
	if failed > 0 {
		s += ", " + errorStyle.Render(fmt.Sprintf("%d failed", failed))
	}
	return s
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	it := &m.items[idx]
	if it.status == buildpipeline.StatusError {
		// ошибка окончательна
		return nil
	}
	it.stage, it.status = ev.Stage, ev.Status
	it.label = statusLabel(ev.Stage, ev.Status)
	return m.prog.SetPercent(m.fraction())
}

// fraction weighs every file equally and counts the stages it finished.
func (m *progressModel) fraction() float64 {
	total := 0.0
	for _, it := range m.items {
		if it.finished() {
			total++
			continue
		}
		total += stageProgress(it.stage, it.status)
	}
	return total / float64(len(m.items))
}

func stageProgress(stage buildpipeline.Stage, status buildpipeline.Status) float64 {
	if status == buildpipeline.StatusQueued {
		return 0
	}
	for i, s := range buildpipeline.Stages {
		if s != stage {
			continue
		}
		done := float64(i)
		if status == buildpipeline.StatusDone {
			done++
		}
		return done / float64(len(buildpipeline.Stages))
	}
	return 0
}

func statusLabel(stage buildpipeline.Stage, status buildpipeline.Status) string {
	switch status {
	case buildpipeline.StatusWorking:
		switch stage {
		case buildpipeline.StageParse:
			return "parsing"
		case buildpipeline.StageLower:
			return "lowering"
		case buildpipeline.StagePrune:
			return "pruning"
		case buildpipeline.StageEmit:
			return "emitting"
		case buildpipeline.StageWrite:
			return "writing"
		}
	case buildpipeline.StatusDone:
		switch stage {
		case buildpipeline.StageParse:
			return "parsed"
		case buildpipeline.StageLower:
			return "lowered"
		case buildpipeline.StagePrune:
			return "pruned"
		case buildpipeline.StageEmit:
			return "emitted"
		}
		return "done"
	}
	return string(status)
}

func styleFor(it fileItem) lipgloss.Style {
	switch {
	case it.status == buildpipeline.StatusError:
		return errorStyle
	case it.finished():
		return doneStyle
	case it.status == buildpipeline.StatusQueued:
		return idleStyle
	}
	return workingStyle
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	// начало пути менее информативно, чем имя файла: режем слева
	rs := []rune(value)
	w, i := 0, len(rs)
	for i > 0 && w+runewidth.RuneWidth(rs[i-1]) <= width-3 {
		i--
		w += runewidth.RuneWidth(rs[i])
	}
	return "..." + string(rs[i:])
}
