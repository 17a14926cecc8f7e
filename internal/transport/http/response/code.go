package response

// 错误码直接使用 HTTP 状态码，成功为 0
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooLarge        = 413
	CodeTooManyRequests = 429
	CodeServerError     = 500
	CodeUnavailable     = 503
	CodeGatewayTimeout  = 504
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeBadRequest:      "Bad Request",
	CodeUnauthorized:    "Unauthorized",
	CodeForbidden:       "Forbidden",
	CodeNotFound:        "Not Found",
	CodeConflict:        "Conflict",
	CodeTooLarge:        "Request Entity Too Large",
	CodeTooManyRequests: "Too Many Requests",
	CodeServerError:     "Internal Server Error",
	CodeUnavailable:     "Service Unavailable",
	CodeGatewayTimeout:  "Gateway Timeout",
}
