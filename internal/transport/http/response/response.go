package response

// Resp 错误响应体；成功时直接返回资源本身
type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	return New(code, customMsg, nil)
}
