package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/analytics"
	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/pkg/httputils"
)

// EventsHandler accepts visit and click beacons and serves the stats
// aggregate. Beacons are answered 202 before the event is recorded.
type EventsHandler struct {
	tracker *analytics.Tracker
}

func NewEventsHandler(tracker *analytics.Tracker) *EventsHandler {
	return &EventsHandler{tracker: tracker}
}

type visitRequest struct {
	Page       string `json:"page"`
	SessionID  string `json:"sessionId"`
	UserID     string `json:"userId"`
	UserEmail  string `json:"userEmail"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

type clickRequest struct {
	LinkID    string `json:"linkId"`
	LinkTitle string `json:"linkTitle"`
	LinkURL   string `json:"linkUrl"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
}

func userInfo(id, email string) *analytics.UserInfo {
	if strings.TrimSpace(id) == "" && strings.TrimSpace(email) == "" {
		return nil
	}
	return &analytics.UserInfo{UserID: id, UserEmail: email}
}

func (h *EventsHandler) sessionContext(r *http.Request, bodyID string) *http.Request {
	id := bodyID
	if strings.TrimSpace(id) == "" {
		id = r.Header.Get(SessionIDHeader)
	}
	if strings.TrimSpace(id) == "" {
		return r
	}
	return r.WithContext(analytics.WithSessionID(r.Context(), id))
}

func (h *EventsHandler) Visit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := httputils.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	r = h.sessionContext(r, req.SessionID)
	h.tracker.GoLogVisit(r.Context(), req.Page, userInfo(req.UserID, req.UserEmail), req.IsLoggedIn)
	httputils.WriteAPISuccess(w, r, constants.SuccessEventAccepted, nil)
}

func (h *EventsHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := httputils.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}
	if strings.TrimSpace(req.LinkID) == "" {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage(constants.MsgLinkIDRequired))
		return
	}

	r = h.sessionContext(r, req.SessionID)
	h.tracker.GoLogLinkClick(r.Context(), req.LinkID, req.LinkTitle, req.LinkURL, userInfo(req.UserID, req.UserEmail))
	httputils.WriteAPISuccess(w, r, constants.SuccessEventAccepted, nil)
}

// Stats answers 200 either way; a missing aggregate is reported with the
// STATS_UNAVAILABLE code and no data.
func (h *EventsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	stats := h.tracker.GetStats(r.Context(), days)
	if stats == nil {
		httputils.WriteAPISuccess(w, r, constants.SuccessStatsMissing, nil)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessStatsFound, stats)
}
