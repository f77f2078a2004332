// Package tui renders the live drought dashboard in the terminal: the
// feature table stands in for the map, with overview chips, a KPI panel
// for the selected feature and two month timelines, all driven by
// engine snapshots.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/engine"
)

// Layout constants.
const (
	defaultWidth  = 100
	defaultHeight = 30
	maxNameLen    = 28

	// reservedRows is the vertical space kept for everything that is
	// not the feature table.
	reservedRows = 20
)

// Key bindings as bubbletea reports them.
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keyEsc   = "esc"
)

// snapshotMsg delivers a fresh engine snapshot to the model.
type snapshotMsg engine.Snapshot

// DashboardModel is the Bubble Tea model for the dashboard session.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View.
type DashboardModel struct {
	eng *engine.Engine

	snap engine.Snapshot

	table   table.Model
	spinner spinner.Model

	width  int
	height int

	quitting bool
}

// NewDashboardModel builds the model over a running engine. The engine
// must already be initialized; its events drive all updates.
func NewDashboardModel(eng *engine.Engine) DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := DashboardModel{
		eng:     eng,
		snap:    eng.Snapshot(),
		spinner: sp,
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.table = buildFeatureTable(m.snap, m.tableHeight())
	return m
}

// listenForUpdates blocks until the engine reports a change, then hands
// the model a fresh snapshot.
func listenForUpdates(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		<-eng.Events()
		return snapshotMsg(eng.Snapshot())
	}
}

// Init starts the spinner and the engine event subscription.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listenForUpdates(m.eng))
}

// Update handles messages and updates the model state.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case snapshotMsg:
		m.snap = engine.Snapshot(msg)
		m.refreshTable()
		return m, listenForUpdates(m.eng)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case "left":
		m.eng.StepGlobalMonth(-1)
	case "right":
		m.eng.StepGlobalMonth(1)
	case "home":
		m.eng.JumpGlobalStart()
	case "end":
		m.eng.JumpGlobalEnd()
	case "[":
		m.eng.StepPanelMonth(-1)
	case "]":
		m.eng.StepPanelMonth(1)
	case "s":
		m.eng.SyncPanelToMap()
	case "tab":
		m.cycleDataset(1)
	case "shift+tab":
		m.cycleDataset(-1)
	case "i":
		m.cycleIndex()
	case "r":
		m.eng.Reload()
	case keyEnter:
		m.selectCursorFeature()
	case keyEsc:
		m.eng.ClearSelection()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// cycleDataset activates the next (or previous) dataset in the catalog.
func (m DashboardModel) cycleDataset(step int) {
	list := m.snap.Datasets
	if len(list) < 2 {
		return
	}
	cur := 0
	for i, d := range list {
		if d.Key == m.snap.Dataset {
			cur = i
			break
		}
	}
	next := (cur + step + len(list)) % len(list)
	m.eng.SetDataset(list[next].Key)
}

// cycleIndex activates the next drought index of the current dataset.
func (m DashboardModel) cycleIndex() {
	list := m.snap.Indices
	if len(list) < 2 {
		return
	}
	cur := 0
	for i, idx := range list {
		if idx == m.snap.Index {
			cur = i
			break
		}
	}
	m.eng.SetIndex(list[(cur+1)%len(list)])
}

// selectCursorFeature opens the panel for the table's highlighted row.
func (m DashboardModel) selectCursorFeature() {
	if m.snap.Layer == nil {
		return
	}
	idx := m.table.Cursor()
	feats := m.snap.Layer.Features
	if idx < 0 || idx >= len(feats) {
		return
	}
	p := feats[idx].Properties
	province := ""
	if p.Province != nil {
		province = *p.Province
	}
	m.eng.SelectFeature(p.ID, p.Name, province, p.Value)
}

// refreshTable rebuilds the rows from the latest snapshot, keeping the
// cursor on the same line where possible.
func (m *DashboardModel) refreshTable() {
	cursor := m.table.Cursor()
	m.table = buildFeatureTable(m.snap, m.tableHeight())
	if cursor > 0 && cursor < len(m.table.Rows()) {
		m.table.SetCursor(cursor)
	}
}

func (m DashboardModel) tableHeight() int {
	h := m.height - reservedRows
	if h < 5 {
		h = 5
	}
	return h
}

func buildFeatureTable(snap engine.Snapshot, height int) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Name", Width: maxNameLen},
		{Title: "Province", Width: 18},
		{Title: "Value", Width: 8},
		{Title: "Class", Width: 10},
	}

	var rows []table.Row
	if snap.Layer != nil {
		standardized := api.IsStandardizedIndex(snap.Index)
		rows = make([]table.Row, 0, len(snap.Layer.Features))
		for _, f := range snap.Layer.Features {
			rows = append(rows, featureRow(f.Properties, standardized))
		}
	}

	return table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
}

// featureRow formats one map feature for the table. Severity classes
// only apply to standardized indices.
func featureRow(p api.FeatureProperties, standardized bool) table.Row {
	name := p.Name
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}
	province := ""
	if p.Province != nil {
		province = *p.Province
	}
	value := noValuePlaceholder
	class := ""
	if p.Value != nil {
		value = fmt.Sprintf("%.2f", *p.Value)
		if standardized {
			class = api.DroughtClass(*p.Value)
		}
	}
	return table.Row{p.ID, name, province, value, class}
}
