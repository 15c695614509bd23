package constants

import "net/http"

// APISuccess represents a standardized API success response with code and HTTP status.
type APISuccess struct {
	Code   string
	Status int
}

var (
	SuccessPageFound = APISuccess{
		Code:   CodePageFound,
		Status: http.StatusOK,
	}
	SuccessProfileFound = APISuccess{
		Code:   CodeProfileFound,
		Status: http.StatusOK,
	}
	SuccessProfileSaved = APISuccess{
		Code:   CodeProfileSaved,
		Status: http.StatusOK,
	}
	SuccessLinksFound = APISuccess{
		Code:   CodeLinksFound,
		Status: http.StatusOK,
	}
	SuccessLinkCreated = APISuccess{
		Code:   CodeLinkCreated,
		Status: http.StatusCreated,
	}
	SuccessLinkUpdated = APISuccess{
		Code:   CodeLinkUpdated,
		Status: http.StatusOK,
	}
	SuccessLinkDeleted = APISuccess{
		Code:   CodeLinkDeleted,
		Status: http.StatusOK,
	}
	SuccessEventAccepted = APISuccess{
		Code:   CodeEventAccepted,
		Status: http.StatusAccepted,
	}
	SuccessStatsFound = APISuccess{
		Code:   CodeStatsFound,
		Status: http.StatusOK,
	}
	SuccessStatsMissing = APISuccess{
		Code:   CodeStatsMissing,
		Status: http.StatusOK,
	}
	SuccessDashboardFound = APISuccess{
		Code:   CodeDashboardFound,
		Status: http.StatusOK,
	}
)
