package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"safec/internal/buildpipeline"
)

// fileState is where one source file is in the build, as shown in the list.
type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateCompiling
	stateWriting
	stateDone
	stateFailed
)

var (
	stateNames  = [...]string{"queued", "loading", "compiling", "writing", "done", "error"}
	stateWeight = [...]float64{0, 0.1, 0.5, 0.9, 1, 1}
)

func (s fileState) String() string { return stateNames[s] }
func (s fileState) finished() bool { return s >= stateDone }

// stageVerbs label a stage while it runs; the build stage only shows in the header.
var stageVerbs = map[buildpipeline.Stage]string{
	buildpipeline.StageLoad:    "loading",
	buildpipeline.StageCompile: "compiling",
	buildpipeline.StageWrite:   "writing",
	buildpipeline.StageBuild:   "building",
}

var workingStates = map[buildpipeline.Stage]fileState{
	buildpipeline.StageLoad:    stateLoading,
	buildpipeline.StageCompile: stateCompiling,
	buildpipeline.StageWrite:   stateWriting,
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	waitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

const statusWidth = 12

type fileItem struct {
	path   string
	state  fileState
	cached bool
	errMsg string // first line of the error that failed the file
}

func (it fileItem) label() string {
	if it.state == stateDone && it.cached {
		return "cached"
	}
	return it.state.String()
}

func (it fileItem) style() lipgloss.Style {
	switch it.state {
	case stateDone:
		return okStyle
	case stateFailed:
		return failStyle
	case stateQueued:
		return waitingStyle
	default:
		return activeStyle
	}
}

type progressModel struct {
	title  string
	events <-chan buildpipeline.Event
	spin   spinner.Model
	bar    progress.Model
	items  []fileItem
	byPath map[string]int
	header string // label of the latest build-level event
	width  int
	done   bool
}

type (
	eventMsg buildpipeline.Event
	doneMsg  struct{}
)

// NewProgressModel renders per-file build progress fed from events and
// quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	m := &progressModel{
		title:  title,
		events: events,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(activeStyle)),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		items:  make([]fileItem, len(files)),
		byPath: make(map[string]int, len(files)),
		width:  80,
	}
	for i, f := range files {
		m.items[i] = fileItem{path: f}
		m.byPath[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(buildpipeline.Event(msg)), m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
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

// apply folds one pipeline event into the model. A stage finishing is not
// the file finishing: only the write stage's done (or any error) is final.
func (m *progressModel) apply(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == buildpipeline.StatusWorking {
			m.header = stageVerbs[ev.Stage]
		} else {
			m.header = string(ev.Status)
		}
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	it := &m.items[i]
	it.cached = it.cached || ev.Cached
	if ev.Err != nil && it.errMsg == "" {
		it.errMsg, _, _ = strings.Cut(ev.Err.Error(), "\n")
	}
	switch ev.Status {
	case buildpipeline.StatusQueued:
		it.state = stateQueued
	case buildpipeline.StatusWorking:
		if st, ok := workingStates[ev.Stage]; ok {
			it.state = st
		}
	case buildpipeline.StatusDone:
		if ev.Stage == buildpipeline.StageWrite {
			it.state = stateDone
		}
	case buildpipeline.StatusError:
		it.state = stateFailed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	head := m.title
	if m.header != "" {
		head += " (" + m.header + ")"
	}
	if m.done {
		head = "done: " + head
	} else {
		head = m.spin.View() + " " + head
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(head))
	b.WriteString("\n\n")
	nameWidth := max(m.width-statusWidth-4, 20)
	indent := strings.Repeat(" ", statusWidth+3)
	for _, it := range m.items {
		status := it.style().Render(fmt.Sprintf("%*s", statusWidth, it.label()))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(it.path, nameWidth))
		if it.errMsg != "" {
			b.WriteString(indent + failStyle.Render(truncate(it.errMsg, nameWidth)) + "\n")
		}
	}
	b.WriteString("\n" + m.summary() + "\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

// summary counts finished files, e.g. "3/4 files: 1 cached, 1 failed".
func (m *progressModel) summary() string {
	var finished, cached, failed int
	for _, it := range m.items {
		if !it.state.finished() {
			continue
		}
		finished++
		switch {
		case it.state == stateFailed:
			failed++
		case it.cached:
			cached++
		}
	}
	out := fmt.Sprintf("%d/%d files", finished, len(m.items))
	var extra []string
	if cached > 0 {
		extra = append(extra, fmt.Sprintf("%d cached", cached))
	}
	if failed > 0 {
		extra = append(extra, fmt.Sprintf("%d failed", failed))
	}
	if len(extra) > 0 {
		out += ": " + strings.Join(extra, ", ")
	}
	return out
}

// percent is the mean progress over all files.
func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range m.items {
		sum += stateWeight[it.state]
	}
	return sum / float64(len(m.items))
}

// truncate cuts value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
