package tui

import (
	"fmt"
	"strings"
)

// DashboardData holds data for the dashboard view.
type DashboardData struct {
	ServiceCount     int
	UpCount          int
	DownCount        int
	AlertCount       int
	AlertsEnabled    bool
	WebhookEnabled   bool
	ThresholdMinutes int
	Services         []ServiceRow
	Alerts           []AlertRow
}

// ServiceRow represents one service's liveness state for display.
type ServiceRow struct {
	Name        string
	Status      string
	DownSince   string
	LastChecked string
}

// AlertRow represents one alert history entry for display.
type AlertRow struct {
	Type    string
	Service string
	Time    string
	Webhook bool
}

// Dashboard is the main dashboard view.
type Dashboard struct {
	data   *DashboardData
	width  int
	height int
}

// NewDashboard creates a new dashboard.
func NewDashboard(msg dataMsg, width, height int) *Dashboard {
	return &Dashboard{
		data:   msg.Data,
		width:  width,
		height: height,
	}
}

// SetSize updates the dashboard size.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	var sb strings.Builder

	// Header
	header := HeaderStyle.Width(d.width).Render("💓 HomePulse Dashboard")
	sb.WriteString(header)
	sb.WriteString("\n\n")

	// Overview Section
	sb.WriteString(d.renderOverviewSection())
	sb.WriteString("\n")

	// Services Section
	sb.WriteString(d.renderServicesSection())
	sb.WriteString("\n")

	// Alerts Section
	sb.WriteString(d.renderAlertsSection())
	sb.WriteString("\n")

	// Help
	help := HelpStyle.Render("Press 'r' to refresh • 'q' to quit")
	sb.WriteString(help)

	return sb.String()
}

func (d *Dashboard) sectionWidth() int {
	w := d.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

func (d *Dashboard) renderOverviewSection() string {
	alerting := "disabled"
	if d.data.AlertsEnabled {
		alerting = fmt.Sprintf("enabled (threshold %dm)", d.data.ThresholdMinutes)
	}
	webhook := "off"
	if d.data.WebhookEnabled {
		webhook = "on"
	}

	content := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s\n%s %s",
		LabelStyle.Render("Services:"),
		ValueStyle.Render(fmt.Sprintf("%d (%d up, %d down)", d.data.ServiceCount, d.data.UpCount, d.data.DownCount)),
		LabelStyle.Render("Alerting:"),
		ValueStyle.Render(alerting),
		LabelStyle.Render("Webhook:"),
		ValueStyle.Render(webhook),
		LabelStyle.Render("Alerts Sent:"),
		ValueStyle.Render(fmt.Sprintf("%d", d.data.AlertCount)),
	)

	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("📊 Overview") + "\n" + content)
}

func (d *Dashboard) renderServicesSection() string {
	if len(d.data.Services) == 0 {
		content := DimStyle.Render("No services monitored yet")
		return SectionStyle.Width(d.sectionWidth()).Render(
			SectionTitleStyle.Render("🖥️ Services") + "\n" + content)
	}

	var rows []string
	rows = append(rows, fmt.Sprintf("%-22s %-12s %-14s %s", "Name", "Status", "Down Since", "Last Check"))
	rows = append(rows, strings.Repeat("─", 60))

	maxRows := 15
	if len(d.data.Services) < maxRows {
		maxRows = len(d.data.Services)
	}

	for i := 0; i < maxRows; i++ {
		svc := d.data.Services[i]
		name := svc.Name
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		downSince := svc.DownSince
		if downSince == "" {
			downSince = "-"
		}
		rows = append(rows, fmt.Sprintf("%-22s %-12s %-14s %s",
			name, RenderStatus(svc.Status), downSince, svc.LastChecked))
	}

	if len(d.data.Services) > maxRows {
		rows = append(rows, DimStyle.Render(fmt.Sprintf("... and %d more", len(d.data.Services)-maxRows)))
	}

	content := strings.Join(rows, "\n")
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("🖥️ Services") + "\n" + content)
}

func (d *Dashboard) renderAlertsSection() string {
	if len(d.data.Alerts) == 0 {
		content := DimStyle.Render("No alerts recorded yet")
		return SectionStyle.Width(d.sectionWidth()).Render(
			SectionTitleStyle.Render("🔔 Recent Alerts") + "\n" + content)
	}

	var rows []string
	for _, a := range d.data.Alerts {
		label := DownStyle.Render("DOWN")
		if a.Type == "service_recovered" {
			label = UpStyle.Render("RECOVERED")
		}
		webhook := ""
		if a.Webhook {
			webhook = DimStyle.Render(" (webhook sent)")
		}
		rows = append(rows, fmt.Sprintf("%s  %s  %s%s", a.Time, label, a.Service, webhook))
	}

	content := strings.Join(rows, "\n")
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("🔔 Recent Alerts") + "\n" + content)
}
