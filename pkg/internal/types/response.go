// Package types 定义对上层（UI）暴露的请求与响应结构.
package types

// Response 统一响应壳. 所有操作都返回 {success, data?, error?}，
// 让调用方总是分支在 success 上，不跨边界抛异常.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK 构造成功响应.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail 构造失败响应，携带人类可读的错误信息.
func Fail(err error) Response {
	if err == nil {
		return Response{Success: false, Error: "unknown error"}
	}

	return Response{Success: false, Error: err.Error()}
}
