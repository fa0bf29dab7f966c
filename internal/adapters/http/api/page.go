package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/okian/pulseboard/pkg/logger"
)

// PageHandler serves the dashboard page, its state and the logout action.
type PageHandler struct {
	page   Page
	logout Logouter
	logger logger.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(page Page, logout Logouter, l logger.Logger) *PageHandler {
	return &PageHandler{page: page, logout: logout, logger: l}
}

// HandlePage handles GET / requests. Once the dashboard navigated away
// the browser is redirected to the navigation target.
func (h *PageHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	if target, ok := h.page.Navigated(); ok {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	var buf bytes.Buffer
	if err := h.page.Render(&buf); err != nil {
		h.logger.Error(r.Context(), "failed to render dashboard", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "render_failed", fmt.Errorf("%w: %w", ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// HandleState handles GET /state requests.
func (h *PageHandler) HandleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.page.State())
}

// HandleLogout handles POST /logout requests.
func (h *PageHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.logout.Logout(r.Context())
	target, ok := h.page.Navigated()
	if !ok {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
