// Package tui provides a terminal user interface.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/homepulse/internal/storage"
	"github.com/user/homepulse/internal/util"
)

// App is the main TUI application.
type App struct {
	db     *storage.DB
	config *util.Config
}

// NewApp creates a new TUI application.
func NewApp(db *storage.DB, cfg *util.Config) *App {
	return &App{
		db:     db,
		config: cfg,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(newModel(a.db, a.config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// model is the main bubbletea model.
type model struct {
	db        *storage.DB
	config    *util.Config
	dashboard *Dashboard
	spinner   spinner.Model
	ready     bool
	width     int
	height    int
	err       error
}

func newModel(db *storage.DB, cfg *util.Config) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		db:      db,
		config:  cfg,
		spinner: s,
	}
}

// Init initializes the model.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadData(m.db),
	)
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, loadData(m.db)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.dashboard != nil {
			m.dashboard.SetSize(msg.Width, msg.Height)
		}

	case dataMsg:
		m.ready = true
		m.dashboard = NewDashboard(msg, m.width, m.height)

	case errMsg:
		m.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI.
func (m model) View() string {
	if m.err != nil {
		return ErrorStyle.Render("Error: " + m.err.Error())
	}

	if !m.ready {
		return LoadingStyle.Render(m.spinner.View() + " Loading...")
	}

	return m.dashboard.View()
}

// Messages
type dataMsg struct {
	Data *DashboardData
}

type errMsg struct {
	err error
}

func loadData(db *storage.DB) tea.Cmd {
	return func() tea.Msg {
		data, err := fetchDashboardData(db)
		if err != nil {
			return errMsg{err}
		}
		return dataMsg{Data: data}
	}
}

func fetchDashboardData(db *storage.DB) (*DashboardData, error) {
	data := &DashboardData{}

	dashboards := storage.NewDashboardStorage(db)
	services, err := dashboards.ListServices()
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(services))
	for _, svc := range services {
		names[svc.ID] = svc.Name
	}
	data.ServiceCount = len(services)

	liveness := storage.NewLivenessStorage(db)
	states, err := liveness.List()
	if err != nil {
		return nil, err
	}
	for _, state := range states {
		name := names[state.ServiceID]
		if name == "" {
			name = "-"
		}

		row := ServiceRow{
			Name:        name,
			Status:      state.Status,
			LastChecked: state.LastChecked.Format("15:04:05"),
		}
		if state.DownSince != nil {
			row.DownSince = state.DownSince.Format("Jan 02 15:04")
		}
		data.Services = append(data.Services, row)

		switch state.Status {
		case "up":
			data.UpCount++
		case "down":
			data.DownCount++
		}
	}

	alerts := storage.NewAlertStorage(db)
	if settings, err := alerts.GetSettings(); err == nil {
		data.AlertsEnabled = settings.Enabled
		data.WebhookEnabled = settings.WebhookEnabled
		data.ThresholdMinutes = settings.DownThresholdMinutes
	}
	if count, err := alerts.CountHistory(); err == nil {
		data.AlertCount = count
	}

	if history, err := alerts.GetHistory(10); err == nil {
		for _, entry := range history {
			data.Alerts = append(data.Alerts, AlertRow{
				Type:    entry.AlertType,
				Service: entry.ServiceName,
				Time:    entry.CreatedAt.Format("Jan 02 15:04"),
				Webhook: entry.WebhookSent,
			})
		}
	}

	return data, nil
}
