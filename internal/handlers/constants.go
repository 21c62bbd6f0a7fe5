package handlers

const (
	// CaregiverTokenHeader carries the token issued by POST /api/caregiver/unlock
	CaregiverTokenHeader = "Authorization"

	maxJSONBody = 1 << 20 // 1MB

	ErrInvalidJSON         = "Invalid JSON body"
	ErrBodyTooLarge        = "Request body too large"
	ErrUnauthorized        = "Unauthorized"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
	ErrStorageUnavailable  = "Storage unavailable"
)
