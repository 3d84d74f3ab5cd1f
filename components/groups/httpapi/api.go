package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	groups "github.com/goliatone/go-customer-groups/components/groups"
	"github.com/goliatone/go-customer-groups/components/groups/commands"
)

// ViewerFunc extracts the viewer from an incoming request.
type ViewerFunc func(*http.Request) groups.ViewerContext

// Handlers exposes the tree operations as JSON endpoints on net/http.
type Handlers struct {
	API    Executor
	Viewer ViewerFunc
}

// Mount registers the handlers on mux under prefix, e.g. "/admin/customer-groups".
func (h *Handlers) Mount(mux *http.ServeMux, prefix string) {
	prefix = strings.TrimRight(prefix, "/")
	mux.HandleFunc("GET "+prefix+"/rows", h.HandleRows)
	mux.HandleFunc("GET "+prefix+"/stats", h.HandleStats)
	mux.HandleFunc("POST "+prefix+"/expand-all", h.bulk(commands.ActionExpandAll))
	mux.HandleFunc("POST "+prefix+"/collapse-all", h.bulk(commands.ActionCollapseAll))
	mux.HandleFunc("POST "+prefix+"/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleExpansion(w, r, commands.ExpansionAction(r.PathValue("action")), r.PathValue("id"))
	})
	mux.HandleFunc("POST "+prefix+"/filter", h.HandleFilter)
	mux.HandleFunc("POST "+prefix+"/columns", h.HandleColumns)
	mux.HandleFunc("POST "+prefix+"/reload", h.HandleReload)
	mux.HandleFunc("POST "+prefix+"/refresh", h.HandleRefresh)
}

func (h *Handlers) HandleRows(w http.ResponseWriter, r *http.Request) {
	view, err := h.API.Rows(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.API.Stats(r.Context())
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleExpansion applies a per-group action. rawID is ignored by bulk actions.
func (h *Handlers) HandleExpansion(w http.ResponseWriter, r *http.Request, action commands.ExpansionAction, rawID string) {
	input := commands.ExpansionInput{Viewer: h.viewer(r), Action: action}
	if action != commands.ActionExpandAll && action != commands.ActionCollapseAll {
		id, err := ParseGroupID(rawID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		input.GroupID = id
	}
	if err := h.API.Expansion(r.Context(), input); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	h.HandleRows(w, r)
}

func (h *Handlers) bulk(action commands.ExpansionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.HandleExpansion(w, r, action, "")
	}
}

func (h *Handlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	var payload groups.FilterInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.API.Filter(r.Context(), commands.SetFilterInput{Viewer: h.viewer(r), Filter: payload}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	h.HandleRows(w, r)
}

// ColumnsPayload is the body accepted by HandleColumns.
type ColumnsPayload struct {
	Columns []string `json:"columns"`
}

func (h *Handlers) HandleColumns(w http.ResponseWriter, r *http.Request) {
	var payload ColumnsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.API.Columns(r.Context(), commands.SetColumnsInput{Viewer: h.viewer(r), Columns: payload.Columns}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	h.HandleRows(w, r)
}

func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	input := commands.ReloadDatasetInput{Strict: r.URL.Query().Get("strict") == "true"}
	if err := h.API.Reload(r.Context(), input); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshInput
	if err := json.NewDecoder(r.Body).Decode(&payload.Event); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.API.Refresh(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) viewer(r *http.Request) groups.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return DefaultViewer(r)
}

// DefaultViewer reads the user from X-User-ID and the locale from the
// "locale" query parameter or Accept-Language.
func DefaultViewer(r *http.Request) groups.ViewerContext {
	viewer := groups.ViewerContext{UserID: strings.TrimSpace(r.Header.Get("X-User-ID"))}
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		viewer.Locale = strings.ToLower(locale)
	} else {
		viewer.Locale = ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	}
	return viewer
}

// ParseAcceptLanguage returns the first language tag of the header, lowercased.
func ParseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

// ParseGroupID parses a path segment as a group id.
func ParseGroupID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("httpapi: group id must be an integer")
	}
	return id, nil
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case groups.IsUnknownGroup(err):
		return http.StatusNotFound
	case groups.IsUnknownColumn(err):
		return http.StatusBadRequest
	case groups.IsMissingViewer(err):
		return http.StatusUnauthorized
	case groups.IsIntegrity(err):
		return http.StatusUnprocessableEntity
	case commands.IsUnknownAction(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
