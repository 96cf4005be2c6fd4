package response

// 错误码直接沿用 HTTP 状态码
const (
	CodeBadRequest     = 400
	CodeNotFound       = 404
	CodeConflict       = 409
	CodeTooLarge       = 413
	CodeServerError    = 500
	CodeUnavailable    = 503
	CodeGatewayTimeout = 504
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeBadRequest:     "Bad Request",
	CodeNotFound:       "Not Found",
	CodeConflict:       "Conflict",
	CodeTooLarge:       "Request Entity Too Large",
	CodeServerError:    "Internal Server Error",
	CodeUnavailable:    "Service Unavailable",
	CodeGatewayTimeout: "Gateway Timeout",
}
