package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/homepulse/internal/alert"
	"github.com/user/homepulse/internal/model"
	"github.com/user/homepulse/internal/storage"
	"github.com/user/homepulse/internal/util"
)

// Handlers contains HTTP handlers.
type Handlers struct {
	db         *storage.DB
	config     *util.Config
	dashboards *storage.DashboardStorage
	alerts     *storage.AlertStorage
	pipeline   *alert.Pipeline
}

// NewHandlers creates new handlers.
func NewHandlers(db *storage.DB, cfg *util.Config, pipeline *alert.Pipeline) *Handlers {
	return &Handlers{
		db:         db,
		config:     cfg,
		dashboards: storage.NewDashboardStorage(db),
		alerts:     storage.NewAlertStorage(db),
		pipeline:   pipeline,
	}
}

// Health reports API liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy"})
}

// GetSettings returns the dashboard display settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.dashboards.GetConfig()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, cfg)
}

// UpdateSettings replaces the dashboard display settings.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var cfg model.DashboardConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if err := h.dashboards.SaveConfig(&cfg); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, cfg)
}

// ListPages returns all pages.
func (h *Handlers) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.dashboards.ListPages()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, pages)
}

// CreatePage creates a page.
func (h *Handlers) CreatePage(w http.ResponseWriter, r *http.Request) {
	var p model.Page
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if p.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}
	if err := h.dashboards.CreatePage(&p); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, p)
}

// UpdatePage updates a page.
func (h *Handlers) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p model.Page
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if p.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}
	p.ID = id
	found, err := h.dashboards.UpdatePage(&p)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Page not found")
		return
	}
	writeJSON(w, p)
}

// DeletePage deletes a page unless groups still reference it.
func (h *Handlers) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	count, err := h.dashboards.CountGroupsForPage(id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if count > 0 {
		writeMessage(w, http.StatusBadRequest, "Cannot delete page with associated groups")
		return
	}
	found, err := h.dashboards.DeletePage(id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Page not found")
		return
	}
	writeMessage(w, http.StatusOK, "Page deleted successfully")
}

// ListGroups returns all groups.
func (h *Handlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.dashboards.ListGroups()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, groups)
}

// CreateGroup creates a group.
func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var g model.Group
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if g.Title == "" || g.PageID == 0 {
		writeMessage(w, http.StatusBadRequest, "Title and Page are required")
		return
	}
	if err := h.dashboards.CreateGroup(&g); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, g)
}

// UpdateGroup updates a group.
func (h *Handlers) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var g model.Group
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if g.Title == "" || g.PageID == 0 {
		writeMessage(w, http.StatusBadRequest, "Title and Page are required")
		return
	}
	g.ID = id
	found, err := h.dashboards.UpdateGroup(&g)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Group not found")
		return
	}
	writeJSON(w, g)
}

// DeleteGroup deletes a group.
func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	found, err := h.dashboards.DeleteGroup(id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Group not found")
		return
	}
	writeMessage(w, http.StatusOK, "Group deleted successfully")
}

// ListServices returns all services.
func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.dashboards.ListServices()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, services)
}

// CreateService creates a service.
func (h *Handlers) CreateService(w http.ResponseWriter, r *http.Request) {
	var svc model.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if svc.Name == "" || svc.URL == "" || svc.GroupID == 0 {
		writeMessage(w, http.StatusBadRequest, "Name, URL, and Group are required")
		return
	}
	if err := h.dashboards.CreateService(&svc); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, svc)
}

// UpdateService updates a service.
func (h *Handlers) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var svc model.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if svc.Name == "" || svc.URL == "" || svc.GroupID == 0 {
		writeMessage(w, http.StatusBadRequest, "Name, URL, and Group are required")
		return
	}
	svc.ID = id
	found, err := h.dashboards.UpdateService(&svc)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Service not found")
		return
	}
	writeJSON(w, svc)
}

// DeleteService deletes a service and its liveness/alert rows.
func (h *Handlers) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	found, err := h.dashboards.DeleteService(id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Service not found")
		return
	}
	writeMessage(w, http.StatusOK, "Service deleted successfully")
}

// ListIcons returns all bar icons.
func (h *Handlers) ListIcons(w http.ResponseWriter, r *http.Request) {
	icons, err := h.dashboards.ListIcons()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, icons)
}

// CreateIcon creates a bar icon.
func (h *Handlers) CreateIcon(w http.ResponseWriter, r *http.Request) {
	var icon model.BarIcon
	if err := json.NewDecoder(r.Body).Decode(&icon); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if err := h.dashboards.CreateIcon(&icon); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, icon)
}

// UpdateIcon updates a bar icon.
func (h *Handlers) UpdateIcon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var icon model.BarIcon
	if err := json.NewDecoder(r.Body).Decode(&icon); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	icon.ID = id
	found, err := h.dashboards.UpdateIcon(&icon)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Icon not found")
		return
	}
	writeJSON(w, icon)
}

// DeleteIcon deletes a bar icon.
func (h *Handlers) DeleteIcon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	found, err := h.dashboards.DeleteIcon(id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Icon not found")
		return
	}
	writeMessage(w, http.StatusOK, "Icon deleted successfully")
}

// ListWidgets returns all widgets.
func (h *Handlers) ListWidgets(w http.ResponseWriter, r *http.Request) {
	widgets, err := h.dashboards.ListWidgets()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, widgets)
}

// CreateWidget creates a widget.
func (h *Handlers) CreateWidget(w http.ResponseWriter, r *http.Request) {
	var widget model.Widget
	if err := json.NewDecoder(r.Body).Decode(&widget); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if widget.Type == "" {
		writeMessage(w, http.StatusBadRequest, "Widget type is required")
		return
	}
	if err := h.dashboards.CreateWidget(&widget); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, widget)
}

// UpdateWidget updates a widget.
func (h *Handlers) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var widget model.Widget
	if err := json.NewDecoder(r.Body).Decode(&widget); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if widget.Type == "" {
		writeMessage(w, http.StatusBadRequest, "Widget type is required")
		return
	}
	widget.ID = id
	found, err := h.dashboards.UpdateWidget(&widget)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Widget not found")
		return
	}
	writeJSON(w, widget)
}

// DeleteWidget deletes a widget.
func (h *Handlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	found, err := h.dashboards.DeleteWidget(id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Widget not found")
		return
	}
	writeMessage(w, http.StatusOK, "Widget deleted successfully")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	key := "message"
	if status >= 400 {
		key = "error"
	}
	json.NewEncoder(w).Encode(map[string]string{key: msg})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
