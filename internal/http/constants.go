package http

import "time"

// Response texts
const (
	HTTPErrorNoFileUploadedText  = "No file uploaded"
	HTTPErrorUploadTooLargeText  = "File too large"
	HTTPErrorTooManyRequestsText = "Too many requests, slow down"
	HTTPErrorInvalidCIDText      = "invalid cid"
	HTTPErrorNotFoundText        = "not found"
)

// Common JSON keys
const (
	JSONKeyOK          = "ok"
	JSONKeyTS          = "ts"
	JSONKeyError       = "error"
	JSONKeyMetadataURL = "metadataUrl"
)

// Headers
const (
	HeaderRequestID    = "X-Request-ID"
	HeaderCacheControl = "Cache-Control"
	CacheControlNone   = "no-store"
)

// Context keys
const (
	ContextKeyRequestID = "request_id"
)

const (
	corsMaxAge         = 12 * time.Hour
	maxRequestIDLength = 128
	limiterIdleTTL     = 10 * time.Minute
)
