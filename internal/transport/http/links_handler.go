package http

import (
	"net/http"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/links"
	"github.com/IgorGrieder/linkhub/pkg/httputils"
)

type LinksHandler struct {
	svc *links.Service
}

func NewLinksHandler(svc *links.Service) *LinksHandler {
	return &LinksHandler{svc: svc}
}

// List returns the owner's links, sorted by ?sort= (default, newest, oldest,
// title, clicks). ?active=true hides deactivated links.
func (h *LinksHandler) List(w http.ResponseWriter, r *http.Request) {
	o := ownerFrom(r)
	list, err := h.svc.GetLinks(r.Context(), o.UserID, o.UserEmail)
	if err != nil {
		writeError(w, r, "links.list", err)
		return
	}

	q := r.URL.Query()
	if q.Get("active") == "true" {
		list = links.ActiveOnly(list)
	}
	list = links.SortLinks(list, links.SortKey(strings.TrimSpace(q.Get("sort"))))

	httputils.WriteAPISuccess(w, r, constants.SuccessLinksFound, list)
}

type createLinkResponse struct {
	LinkID string `json:"linkId"`
}

func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in links.SaveLinkInput
	if err := httputils.DecodeJSON(w, r, &in); err != nil {
		writeBadBody(w, r, err)
		return
	}

	check := links.ValidateLinkData(links.LinkData{
		Title:       in.Title,
		URL:         links.NormalizeURL(in.URL),
		Category:    in.Category,
		Description: in.Description,
	})
	if !check.IsValid {
		httputils.WriteAPIError(w, r, constants.ErrInvalidLink.WithMessage(strings.Join(check.Errors, " ")))
		return
	}
	in.URL = links.NormalizeURL(in.URL)

	id, err := h.svc.SaveLink(r.Context(), in)
	if err != nil {
		writeError(w, r, "links.create", err)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinkCreated, createLinkResponse{LinkID: id})
}

func (h *LinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u links.Update
	if err := httputils.DecodeJSON(w, r, &u); err != nil {
		writeBadBody(w, r, err)
		return
	}
	if u.URL != nil {
		normalized := links.NormalizeURL(*u.URL)
		u.URL = &normalized
	}

	if err := h.svc.UpdateLink(r.Context(), r.PathValue("id"), u); err != nil {
		writeError(w, r, "links.update", err)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinkUpdated, nil)
}

func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLink(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, "links.delete", err)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinkDeleted, nil)
}

type reorderRequest struct {
	UserID     string         `json:"userId"`
	UserEmail  string         `json:"userEmail"`
	LinkOrders map[string]int `json:"linkOrders"`
}

func (h *LinksHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := httputils.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	if err := h.svc.UpdateLinkOrders(r.Context(), req.UserID, req.LinkOrders, req.UserEmail); err != nil {
		writeError(w, r, "links.reorder", err)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinkUpdated, nil)
}

type batchRequest struct {
	Updates []links.BatchUpdate `json:"updates"`
}

func (h *LinksHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := httputils.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	if err := h.svc.BatchUpdateLinks(r.Context(), req.Updates); err != nil {
		writeError(w, r, "links.batch", err)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinkUpdated, nil)
}
