package constants

// Gateway messages returned in the "message" field.
const (
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An internal error occurred"
	MsgAPIKeyMissing      = "An X-API-Key header is required to change a page"
	MsgAPIKeyInvalid      = "The API key is not valid for this gateway"
	MsgRateLimited        = "Too many requests"
	MsgProfileNotFound    = "Profile not found"
)

// User-facing messages shown by clients next to the failing control.
const (
	MsgRequestTimeout      = "요청 시간이 초과되었습니다. 잠시 후 다시 시도해주세요."
	MsgNetworkUnavailable  = "네트워크 연결을 확인해주세요."
	MsgServerCommunication = "서버와 통신 중 오류가 발생했습니다."
	MsgPermissionDenied    = "권한이 없습니다. 다시 로그인해주세요."
	MsgUnknownError        = "알 수 없는 오류가 발생했습니다."
)

// Link validation messages.
const (
	MsgTitleRequired       = "제목은 필수입니다."
	MsgTitleTooLong        = "제목은 100자 이하여야 합니다."
	MsgURLRequired         = "URL은 필수입니다."
	MsgURLInvalid          = "올바른 URL 형식이 아닙니다."
	MsgCategoryTooLong     = "카테고리는 20자 이하여야 합니다."
	MsgDescriptionTooLong  = "설명은 500자 이하여야 합니다."
	MsgLinkOwnerRequired   = "사용자 ID 또는 이메일이 필요합니다."
	MsgLinkIDRequired      = "링크 ID가 필요합니다."
	MsgProfileIDRequired   = "사용자 ID, 사용자명 또는 이메일 중 하나가 필요합니다."
	MsgProfileEmailMissing = "사용자 이메일이 필요합니다."
	MsgProfileOwnerMissing = "프로필을 수정하려면 사용자 ID 또는 이메일이 필요합니다."
	MsgLoginFieldsRequired = "이메일과 비밀번호를 입력해주세요."
)
