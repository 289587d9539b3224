package storage

import (
	"path/filepath"
	"testing"

	"github.com/user/homepulse/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConfigDefaultsAndUpsert(t *testing.T) {
	s := NewDashboardStorage(openTestDB(t))

	cfg, err := s.GetConfig()
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if cfg.Title != "Homepulse" || cfg.Mode != "dark" || !cfg.ShowDetails {
		t.Errorf("defaults = %+v", cfg)
	}

	cfg.Title = "My Lab"
	cfg.Mode = "light"
	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	firstID := cfg.ID

	// Saving again must update the singleton row, not add one.
	cfg.Title = "My Lab v2"
	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("save config again: %v", err)
	}
	if cfg.ID != firstID {
		t.Errorf("config id changed on update: %d -> %d", firstID, cfg.ID)
	}

	got, err := s.GetConfig()
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if got.Title != "My Lab v2" || got.Mode != "light" {
		t.Errorf("got %+v", got)
	}
}

func TestPageCRUD(t *testing.T) {
	s := NewDashboardStorage(openTestDB(t))

	p := &model.Page{Title: "Home", DisplayOrder: 1}
	if err := s.CreatePage(p); err != nil {
		t.Fatalf("create page: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("page id not set on insert")
	}

	p.Title = "Media"
	found, err := s.UpdatePage(p)
	if err != nil || !found {
		t.Fatalf("update page: found=%t err=%v", found, err)
	}

	pages, err := s.ListPages()
	if err != nil {
		t.Fatalf("list pages: %v", err)
	}
	if len(pages) != 1 || pages[0].Title != "Media" {
		t.Fatalf("pages = %+v", pages)
	}

	found, err = s.UpdatePage(&model.Page{ID: 999, Title: "x"})
	if err != nil || found {
		t.Errorf("update missing page: found=%t err=%v", found, err)
	}

	found, err = s.DeletePage(p.ID)
	if err != nil || !found {
		t.Fatalf("delete page: found=%t err=%v", found, err)
	}
	found, _ = s.DeletePage(p.ID)
	if found {
		t.Error("delete reported a row for an already-deleted page")
	}
}

func TestCountGroupsForPage(t *testing.T) {
	s := NewDashboardStorage(openTestDB(t))

	p := &model.Page{Title: "Home"}
	s.CreatePage(p)
	s.CreateGroup(&model.Group{PageID: p.ID, Title: "Media"})
	s.CreateGroup(&model.Group{PageID: p.ID, Title: "Infra"})

	count, err := s.CountGroupsForPage(p.ID)
	if err != nil {
		t.Fatalf("count groups: %v", err)
	}
	if count != 2 {
		t.Errorf("got %d groups, want 2", count)
	}
}

func TestServiceCRUDWithNullableFields(t *testing.T) {
	s := NewDashboardStorage(openTestDB(t))

	g := &model.Group{PageID: 1, Title: "Media"}
	s.CreateGroup(g)

	// No IP/port: stored as NULL, read back as zero values.
	svc := &model.Service{GroupID: g.ID, Name: "docs", URL: "https://docs.example.com"}
	if err := s.CreateService(svc); err != nil {
		t.Fatalf("create service: %v", err)
	}

	probed := &model.Service{GroupID: g.ID, Name: "plex", URL: "http://plex.local",
		IP: "192.168.1.10", Port: 32400, DisplayOrder: 1}
	if err := s.CreateService(probed); err != nil {
		t.Fatalf("create service: %v", err)
	}

	services, err := s.ListServices()
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(services) != 2 {
		t.Fatalf("got %d services, want 2", len(services))
	}
	if services[0].IP != "" || services[0].Port != 0 {
		t.Errorf("unprobed service = %+v, want empty ip/port", services[0])
	}
	if services[1].IP != "192.168.1.10" || services[1].Port != 32400 {
		t.Errorf("probed service = %+v", services[1])
	}
}

func TestDeleteServiceCleansUpState(t *testing.T) {
	db := openTestDB(t)
	s := NewDashboardStorage(db)

	svc := &model.Service{GroupID: 1, Name: "plex", URL: "http://plex.local",
		IP: "192.168.1.10", Port: 32400}
	s.CreateService(svc)

	liveness := NewLivenessStorage(db)
	now := timeNowTrunc()
	liveness.Upsert(&model.LivenessState{ServiceID: svc.ID, Status: model.StatusDown,
		DownSince: &now, LastChecked: now})

	alerts := NewAlertStorage(db)
	enabled := false
	alerts.SaveServiceConfig(&model.ServiceAlertConfig{ServiceID: svc.ID, Enabled: &enabled})

	found, err := s.DeleteService(svc.ID)
	if err != nil || !found {
		t.Fatalf("delete service: found=%t err=%v", found, err)
	}

	if state, _ := liveness.Get(svc.ID); state != nil {
		t.Errorf("liveness state survived service deletion: %+v", state)
	}
	if cfg, _ := alerts.GetServiceConfig(svc.ID); cfg != nil {
		t.Errorf("alert config survived service deletion: %+v", cfg)
	}
}

func TestWidgetConfigRoundTrip(t *testing.T) {
	s := NewDashboardStorage(openTestDB(t))

	w := &model.Widget{Type: "weather", Title: "Weather",
		Config: []byte(`{"city":"Oslo"}`), Enabled: true}
	if err := s.CreateWidget(w); err != nil {
		t.Fatalf("create widget: %v", err)
	}

	// Empty config defaults to an empty object.
	bare := &model.Widget{Type: "clock", Enabled: true}
	if err := s.CreateWidget(bare); err != nil {
		t.Fatalf("create widget: %v", err)
	}

	widgets, err := s.ListWidgets()
	if err != nil {
		t.Fatalf("list widgets: %v", err)
	}
	if len(widgets) != 2 {
		t.Fatalf("got %d widgets, want 2", len(widgets))
	}
	if string(widgets[0].Config) != `{"city":"Oslo"}` {
		t.Errorf("config = %s", widgets[0].Config)
	}
	if string(widgets[1].Config) != "{}" {
		t.Errorf("bare config = %s, want {}", widgets[1].Config)
	}
}
