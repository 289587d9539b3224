package storage

import (
	"database/sql"
	"fmt"

	"github.com/user/homepulse/internal/model"
)

// DashboardStorage handles dashboard configuration persistence
// (display settings, pages, groups, services, bar icons, widgets).
type DashboardStorage struct {
	db *DB
}

// NewDashboardStorage creates a new dashboard storage handler.
func NewDashboardStorage(db *DB) *DashboardStorage {
	return &DashboardStorage{db: db}
}

// GetConfig returns the display settings singleton, or defaults when unset.
func (s *DashboardStorage) GetConfig() (*model.DashboardConfig, error) {
	query := `SELECT id, title, tab_title, favicon_url, background_url, mode,
			  show_details, font_family, font_size, icon_size
			  FROM dashboard_config ORDER BY id LIMIT 1`

	var cfg model.DashboardConfig
	err := s.db.QueryRow(query).Scan(
		&cfg.ID, &cfg.Title, &cfg.TabTitle, &cfg.FaviconURL, &cfg.BackgroundURL,
		&cfg.Mode, &cfg.ShowDetails, &cfg.FontFamily, &cfg.FontSize, &cfg.IconSize)

	if err == sql.ErrNoRows {
		return &model.DashboardConfig{Title: "Homepulse", Mode: "dark", ShowDetails: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig upserts the display settings singleton.
func (s *DashboardStorage) SaveConfig(cfg *model.DashboardConfig) error {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM dashboard_config ORDER BY id LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		result, err := s.db.Exec(
			`INSERT INTO dashboard_config
			 (title, tab_title, favicon_url, background_url, mode, show_details, font_family, font_size, icon_size)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cfg.Title, cfg.TabTitle, cfg.FaviconURL, cfg.BackgroundURL, cfg.Mode,
			cfg.ShowDetails, cfg.FontFamily, cfg.FontSize, cfg.IconSize)
		if err != nil {
			return fmt.Errorf("failed to insert dashboard config: %w", err)
		}
		cfg.ID, _ = result.LastInsertId()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check dashboard config: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE dashboard_config SET title = ?, tab_title = ?, favicon_url = ?,
		 background_url = ?, mode = ?, show_details = ?, font_family = ?, font_size = ?, icon_size = ?
		 WHERE id = ?`,
		cfg.Title, cfg.TabTitle, cfg.FaviconURL, cfg.BackgroundURL, cfg.Mode,
		cfg.ShowDetails, cfg.FontFamily, cfg.FontSize, cfg.IconSize, id)
	if err != nil {
		return fmt.Errorf("failed to update dashboard config: %w", err)
	}
	cfg.ID = id
	return nil
}

// ListPages returns all pages ordered for display.
func (s *DashboardStorage) ListPages() ([]model.Page, error) {
	rows, err := s.db.Query(`SELECT id, title, display_order FROM pages ORDER BY display_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	pages := []model.Page{}
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.Title, &p.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// CreatePage inserts a new page.
func (s *DashboardStorage) CreatePage(p *model.Page) error {
	result, err := s.db.Exec(
		`INSERT INTO pages (title, display_order) VALUES (?, ?)`, p.Title, p.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	p.ID, _ = result.LastInsertId()
	return nil
}

// UpdatePage updates a page; returns false if it does not exist.
func (s *DashboardStorage) UpdatePage(p *model.Page) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE pages SET title = ?, display_order = ? WHERE id = ?`,
		p.Title, p.DisplayOrder, p.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update page: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeletePage deletes a page; returns false if it does not exist.
func (s *DashboardStorage) DeletePage(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete page: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// CountGroupsForPage returns the number of groups attached to a page.
func (s *DashboardStorage) CountGroupsForPage(pageID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM groups WHERE page_id = ?`, pageID).Scan(&count)
	return count, err
}

// ListGroups returns all groups ordered for display.
func (s *DashboardStorage) ListGroups() ([]model.Group, error) {
	rows, err := s.db.Query(
		`SELECT id, page_id, title, display_order FROM groups ORDER BY display_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.PageID, &g.Title, &g.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// CreateGroup inserts a new group.
func (s *DashboardStorage) CreateGroup(g *model.Group) error {
	result, err := s.db.Exec(
		`INSERT INTO groups (page_id, title, display_order) VALUES (?, ?, ?)`,
		g.PageID, g.Title, g.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	g.ID, _ = result.LastInsertId()
	return nil
}

// UpdateGroup updates a group; returns false if it does not exist.
func (s *DashboardStorage) UpdateGroup(g *model.Group) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE groups SET page_id = ?, title = ?, display_order = ? WHERE id = ?`,
		g.PageID, g.Title, g.DisplayOrder, g.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update group: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteGroup deletes a group; returns false if it does not exist.
func (s *DashboardStorage) DeleteGroup(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// ListServices returns all services ordered for display.
func (s *DashboardStorage) ListServices() ([]model.Service, error) {
	rows, err := s.db.Query(
		`SELECT id, group_id, name, url, COALESCE(icon_url, ''), COALESCE(ip, ''),
		 COALESCE(port, 0), display_order
		 FROM services ORDER BY display_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	services := []model.Service{}
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(&svc.ID, &svc.GroupID, &svc.Name, &svc.URL,
			&svc.IconURL, &svc.IP, &svc.Port, &svc.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

// CreateService inserts a new service.
func (s *DashboardStorage) CreateService(svc *model.Service) error {
	result, err := s.db.Exec(
		`INSERT INTO services (group_id, name, url, icon_url, ip, port, display_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		svc.GroupID, svc.Name, svc.URL, nullString(svc.IconURL),
		nullString(svc.IP), nullInt(svc.Port), svc.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}
	svc.ID, _ = result.LastInsertId()
	return nil
}

// UpdateService updates a service; returns false if it does not exist.
func (s *DashboardStorage) UpdateService(svc *model.Service) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE services SET group_id = ?, name = ?, url = ?, icon_url = ?,
		 ip = ?, port = ?, display_order = ? WHERE id = ?`,
		svc.GroupID, svc.Name, svc.URL, nullString(svc.IconURL),
		nullString(svc.IP), nullInt(svc.Port), svc.DisplayOrder, svc.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update service: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteService deletes a service together with its liveness state and
// alert override (orphan cleanup).
func (s *DashboardStorage) DeleteService(id int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete service: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM service_liveness WHERE service_id = ?`, id); err != nil {
		return false, fmt.Errorf("failed to delete liveness state: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM service_alert_configs WHERE service_id = ?`, id); err != nil {
		return false, fmt.Errorf("failed to delete alert config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// ListIcons returns all bar icons ordered for display.
func (s *DashboardStorage) ListIcons() ([]model.BarIcon, error) {
	rows, err := s.db.Query(
		`SELECT id, COALESCE(alt, ''), COALESCE(link, ''), COALESCE(icon_url, ''), display_order
		 FROM bar_icons ORDER BY display_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to query icons: %w", err)
	}
	defer rows.Close()

	icons := []model.BarIcon{}
	for rows.Next() {
		var icon model.BarIcon
		if err := rows.Scan(&icon.ID, &icon.Alt, &icon.Link, &icon.IconURL, &icon.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan icon: %w", err)
		}
		icons = append(icons, icon)
	}
	return icons, rows.Err()
}

// CreateIcon inserts a new bar icon.
func (s *DashboardStorage) CreateIcon(icon *model.BarIcon) error {
	result, err := s.db.Exec(
		`INSERT INTO bar_icons (alt, link, icon_url, display_order) VALUES (?, ?, ?, ?)`,
		icon.Alt, icon.Link, icon.IconURL, icon.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to insert icon: %w", err)
	}
	icon.ID, _ = result.LastInsertId()
	return nil
}

// UpdateIcon updates a bar icon; returns false if it does not exist.
func (s *DashboardStorage) UpdateIcon(icon *model.BarIcon) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE bar_icons SET alt = ?, link = ?, icon_url = ?, display_order = ? WHERE id = ?`,
		icon.Alt, icon.Link, icon.IconURL, icon.DisplayOrder, icon.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update icon: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteIcon deletes a bar icon; returns false if it does not exist.
func (s *DashboardStorage) DeleteIcon(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM bar_icons WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete icon: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// ListWidgets returns all widgets ordered for display.
func (s *DashboardStorage) ListWidgets() ([]model.Widget, error) {
	rows, err := s.db.Query(
		`SELECT id, COALESCE(page_id, 0), type, COALESCE(title, ''), config, display_order, enabled
		 FROM widgets ORDER BY display_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to query widgets: %w", err)
	}
	defer rows.Close()

	widgets := []model.Widget{}
	for rows.Next() {
		var w model.Widget
		var config string
		if err := rows.Scan(&w.ID, &w.PageID, &w.Type, &w.Title, &config,
			&w.DisplayOrder, &w.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan widget: %w", err)
		}
		w.Config = []byte(config)
		widgets = append(widgets, w)
	}
	return widgets, rows.Err()
}

// CreateWidget inserts a new widget.
func (s *DashboardStorage) CreateWidget(w *model.Widget) error {
	config := string(w.Config)
	if config == "" {
		config = "{}"
	}
	result, err := s.db.Exec(
		`INSERT INTO widgets (page_id, type, title, config, display_order, enabled)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullInt64(w.PageID), w.Type, w.Title, config, w.DisplayOrder, w.Enabled)
	if err != nil {
		return fmt.Errorf("failed to insert widget: %w", err)
	}
	w.ID, _ = result.LastInsertId()
	return nil
}

// UpdateWidget updates a widget; returns false if it does not exist.
func (s *DashboardStorage) UpdateWidget(w *model.Widget) (bool, error) {
	config := string(w.Config)
	if config == "" {
		config = "{}"
	}
	result, err := s.db.Exec(
		`UPDATE widgets SET page_id = ?, type = ?, title = ?, config = ?,
		 display_order = ?, enabled = ? WHERE id = ?`,
		nullInt64(w.PageID), w.Type, w.Title, config, w.DisplayOrder, w.Enabled, w.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update widget: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteWidget deletes a widget; returns false if it does not exist.
func (s *DashboardStorage) DeleteWidget(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM widgets WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete widget: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

func nullInt64(n int64) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
