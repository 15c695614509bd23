package http

import (
	"net/http"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/profile"
	"github.com/IgorGrieder/linkhub/internal/subject"
	"github.com/IgorGrieder/linkhub/pkg/httputils"
)

type ProfilesHandler struct {
	svc *profile.Service
}

func NewProfilesHandler(svc *profile.Service) *ProfilesHandler {
	return &ProfilesHandler{svc: svc}
}

func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	o := ownerFrom(r)
	res, err := h.svc.GetProfile(r.Context(), profile.Lookup{
		UserID:    o.UserID,
		UserEmail: o.UserEmail,
		Username:  r.URL.Query().Get("username"),
	})
	if err != nil {
		writeError(w, r, "profiles.get", err)
		return
	}
	if !res.Success {
		apiErr := constants.ErrProfileNotFound
		if strings.TrimSpace(res.Message) != "" {
			apiErr = apiErr.WithMessage(res.Message)
		}
		httputils.WriteAPIError(w, r, apiErr)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessProfileFound, res.Profile)
}

// Save is PUT: a full save_profile that may create the profile.
func (h *ProfilesHandler) Save(w http.ResponseWriter, r *http.Request) {
	var in profile.SaveInput
	if err := httputils.DecodeJSON(w, r, &in); err != nil {
		writeBadBody(w, r, err)
		return
	}

	res, err := h.svc.SaveProfile(r.Context(), in)
	if err != nil {
		writeError(w, r, "profiles.save", err)
		return
	}
	if !res.Success {
		httputils.WriteAPIError(w, r, constants.ErrUpstreamRejected.WithMessage(res.Message))
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessProfileSaved, res)
}

type updateProfileRequest struct {
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	profile.Update
}

// Update is PATCH: only the fields present in the body change.
func (h *ProfilesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httputils.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	subj := subject.First(req.UserID, req.UserEmail, "")
	if err := h.svc.UpdateProfile(r.Context(), subj, req.Update); err != nil {
		writeError(w, r, "profiles.update", err)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessProfileSaved, nil)
}
