// Package dashboard is the interactive control panel TUI. It renders
// live host telemetry, the systemd unit list, and host details, and
// drives service actions through the dispatcher.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/dispatch"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/session"
	"github.com/opsdeck/opsdeck/internal/telemetry"
)

// Tab identifies the visible dashboard pane.
type Tab int

const (
	TabOverview Tab = iota
	TabServices
	TabSystem
)

// String returns the tab label.
func (t Tab) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabServices:
		return "Services"
	case TabSystem:
		return "System"
	default:
		return "Overview"
	}
}

// noticeLevel classifies the transient status line.
type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeError
)

// notice is a transient message shown under the header.
type notice struct {
	text  string
	level noticeLevel
	at    time.Time
}

// Model is the Bubble Tea model for the control panel dashboard.
type Model struct {
	cfg        *config.Config
	store      *session.Store
	dispatcher *dispatch.Dispatcher
	client     *api.Client
	history    *telemetry.History
	log        logger.Logger

	updates <-chan telemetry.Update
	events  <-chan dispatch.Event

	tab        Tab
	overview   *api.Overview
	points     []telemetry.Point
	services   []api.Service
	hostInfo   *api.HostInfo
	selected   int
	notice     notice
	lastUpdate time.Time
	pollErr    error

	width    int
	height   int
	showHelp bool
	quitting bool
	spin     spinner.Model

	// Set when the server rejects the session token; Run surfaces it
	// after the program exits.
	authErr error
}

// telemetryMsg carries one poll result from the poller channel.
type telemetryMsg telemetry.Update

// telemetryClosedMsg signals the poller channel closed.
type telemetryClosedMsg struct{}

// actionMsg carries one settled action outcome from the dispatcher.
type actionMsg dispatch.Event

// actionsClosedMsg signals the dispatcher channel closed.
type actionsClosedMsg struct{}

// actionRejectedMsg reports an action the dispatcher refused to start.
type actionRejectedMsg struct {
	err error
}

// servicesMsg carries a fetched unit list.
type servicesMsg struct {
	services []api.Service
	err      error
}

// hostInfoMsg carries the detailed host report for the system tab.
type hostInfoMsg struct {
	info *api.HostInfo
	err  error
}

// NewModel creates the dashboard model. The poller and dispatcher are
// already running; the model consumes their channels.
func NewModel(cfg *config.Config, store *session.Store, dispatcher *dispatch.Dispatcher,
	client *api.Client, updates <-chan telemetry.Update, log logger.Logger) Model {
	if log == nil {
		log = logger.Noop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"◐", "◓", "◑", "◒"},
		FPS:    time.Second / 10,
	}
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccentDim)

	return Model{
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		client:     client,
		history:    telemetry.NewHistory(cfg.HistorySize),
		log:        log,
		updates:    updates,
		events:     dispatcher.Events(),
		selected:   -1,
		spin:       sp,
	}
}

// Init starts channel consumption and the first data fetches.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitTelemetryCmd(),
		m.waitActionCmd(),
		m.fetchServicesCmd(),
		m.fetchHostInfoCmd(),
		m.spin.Tick,
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		// Animate only while waiting for the first sample.
		if m.overview == nil {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}

	case telemetryMsg:
		if cmd, done := m.applyTelemetry(telemetry.Update(msg)); done {
			return m, cmd
		}
		return m, m.waitTelemetryCmd()

	case telemetryClosedMsg:
		// Poller torn down; nothing more arrives on this channel.

	case actionMsg:
		if cmd, done := m.applyAction(dispatch.Event(msg)); done {
			return m, cmd
		}
		return m, m.waitActionCmd()

	case actionsClosedMsg:

	case actionRejectedMsg:
		m.notice = errorNotice(msg.err)

	case servicesMsg:
		if msg.err != nil {
			if errors.IsAuth(msg.err) {
				return m, m.signOut(msg.err)
			}
			m.notice = errorNotice(msg.err)
			return m, nil
		}
		m.setServices(msg.services)

	case hostInfoMsg:
		if msg.err != nil {
			if errors.IsAuth(msg.err) {
				return m, m.signOut(msg.err)
			}
			m.log.Debug("host info fetch failed: %v", msg.err)
			return m, nil
		}
		m.hostInfo = msg.info
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// applyTelemetry folds one poll result into the model. The returned
// command replaces the default re-arm when the session died.
func (m *Model) applyTelemetry(u telemetry.Update) (tea.Cmd, bool) {
	if u.Err != nil {
		if errors.IsAuth(u.Err) {
			return m.signOut(u.Err), true
		}
		m.pollErr = u.Err
		return nil, false
	}

	m.pollErr = nil
	m.overview = u.Overview
	m.lastUpdate = u.At
	m.points = telemetry.BuildPoints(u.Overview.MetricsHistory)

	snapshot := telemetry.SnapshotOrZero(u.Overview.CurrentMetrics)
	m.history.Push(telemetry.Point{
		CPU:    snapshot.CPU.Percent,
		Memory: snapshot.Memory.Percent,
		Disk:   snapshot.Disk.Percent,
	})
	return nil, false
}

// applyAction folds one settled action outcome into the model.
func (m *Model) applyAction(ev dispatch.Event) (tea.Cmd, bool) {
	if ev.Err != nil {
		if errors.IsAuth(ev.Err) {
			return m.signOut(ev.Err), true
		}
		m.notice = errorNotice(ev.Err)
	} else {
		m.notice = successNotice(ev.Action + " " + ev.Service + " completed")
	}

	// The re-fetched list is the truth about unit state, success or not.
	if ev.ListErr == nil && ev.Services != nil {
		m.setServices(ev.Services)
	}
	return nil, false
}

// setServices replaces the unit list, keeping the selection stable by
// name where possible.
func (m *Model) setServices(services []api.Service) {
	var selectedName string
	if m.selected >= 0 && m.selected < len(m.services) {
		selectedName = m.services[m.selected].Name
	}

	m.services = services
	m.selected = -1
	for i, s := range services {
		if s.Name == selectedName {
			m.selected = i
			break
		}
	}
	if m.selected < 0 && len(services) > 0 {
		m.selected = 0
	}
}

// signOut invalidates the session and quits; the server no longer honors
// the token so every further call would fail the same way.
func (m *Model) signOut(err error) tea.Cmd {
	m.store.Invalidate()
	m.authErr = err
	m.quitting = true
	return tea.Quit
}

// selectedService returns the highlighted unit, if any.
func (m Model) selectedService() (api.Service, bool) {
	if m.selected < 0 || m.selected >= len(m.services) {
		return api.Service{}, false
	}
	return m.services[m.selected], true
}

// waitTelemetryCmd waits for the next poll result.
func (m Model) waitTelemetryCmd() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return telemetryClosedMsg{}
		}
		return telemetryMsg(u)
	}
}

// waitActionCmd waits for the next settled action outcome.
func (m Model) waitActionCmd() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return actionsClosedMsg{}
		}
		return actionMsg(ev)
	}
}

// fetchServicesCmd fetches the unit list once.
func (m Model) fetchServicesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.RequestTimeout)
		defer cancel()

		services, err := m.dispatcher.Services(ctx)
		return servicesMsg{services: services, err: err}
	}
}

// fetchHostInfoCmd fetches the detailed host report once.
func (m Model) fetchHostInfoCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.RequestTimeout)
		defer cancel()

		info, err := m.client.SystemInfo(ctx)
		return hostInfoMsg{info: info, err: err}
	}
}

// invokeCmd starts a service action through the dispatcher. Rejections
// (an action already in flight) surface immediately as a notice. The
// in-flight request is bounded by the client's own timeout, so the
// action outlives this command safely.
func (m Model) invokeCmd(service, action string) tea.Cmd {
	return func() tea.Msg {
		if err := m.dispatcher.Invoke(context.Background(), service, action); err != nil {
			return actionRejectedMsg{err: err}
		}
		return nil
	}
}

func successNotice(text string) notice {
	return notice{text: text, level: noticeSuccess, at: time.Now()}
}

func errorNotice(err error) notice {
	return notice{text: firstLine(err.Error()), level: noticeError, at: time.Now()}
}
