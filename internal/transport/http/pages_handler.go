package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/analytics"
	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/page"
	"github.com/IgorGrieder/linkhub/internal/subject"
	"github.com/IgorGrieder/linkhub/pkg/httputils"
)

// PagesHandler serves the public link-in-bio page and the owner dashboard.
type PagesHandler struct {
	composer *page.Composer
	tracker  *analytics.Tracker
}

func NewPagesHandler(composer *page.Composer, tracker *analytics.Tracker) *PagesHandler {
	return &PagesHandler{composer: composer, tracker: tracker}
}

// Public renders /api/pages/{username} and records the visit in the
// background.
func (h *PagesHandler) Public(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PathValue("username"))

	p, err := h.composer.PublicPage(r.Context(), subject.ByUsername(username))
	if err != nil {
		writeError(w, r, "pages.public", err)
		return
	}

	if h.tracker != nil {
		ctx := analytics.WithSessionID(r.Context(), r.Header.Get(SessionIDHeader))
		h.tracker.GoLogVisit(ctx, "/"+p.Profile.Username, nil, false)
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessPageFound, p)
}

// Dashboard returns the owner's profile, every link and recent stats.
func (h *PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	d, err := h.composer.Dashboard(r.Context(), ownerFrom(r).subject(), days)
	if err != nil {
		writeError(w, r, "pages.dashboard", err)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessDashboardFound, d)
}
