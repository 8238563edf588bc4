package http

const (
	KeyHeaderContentType = "Content-Type"
	KeyHeaderRequestID   = "X-Request-Id"
	KeyHeaderSessionID   = "X-Session-Id"
	ValueHeaderJson      = "application/json"
)
