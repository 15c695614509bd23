package constants

// Error codes used in gateway responses.
// These are the machine-readable codes returned in the "error" field.
const (
	// Common error codes
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeAPIKeyMissing  = "API_KEY_REQUIRED"
	CodeAPIKeyInvalid  = "API_KEY_INVALID"
	CodeRateLimited    = "RATE_LIMITED"

	// Remote store failures
	CodeUpstreamTimeout     = "UPSTREAM_TIMEOUT"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamRejected    = "UPSTREAM_REJECTED"

	// LinkHub-specific codes
	CodeInvalidLink      = "INVALID_LINK"
	CodeProfileNotFound  = "PROFILE_NOT_FOUND"
	CodePermissionDenied = "PERMISSION_DENIED"

	// Success codes
	CodePageFound      = "PAGE_FOUND"
	CodeProfileFound   = "PROFILE_FOUND"
	CodeProfileSaved   = "PROFILE_SAVED"
	CodeLinksFound     = "LINKS_FOUND"
	CodeLinkCreated    = "LINK_CREATED"
	CodeLinkUpdated    = "LINK_UPDATED"
	CodeLinkDeleted    = "LINK_DELETED"
	CodeEventAccepted  = "EVENT_ACCEPTED"
	CodeStatsFound     = "STATS_FOUND"
	CodeStatsMissing   = "STATS_UNAVAILABLE"
	CodeDashboardFound = "DASHBOARD_FOUND"
)
