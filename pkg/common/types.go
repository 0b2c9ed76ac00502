package common

// Pagination describes the window that was requested and the size of the
// filtered collection. Page and Limit echo the request, they are never
// clamped to TotalRecord.
type Pagination struct {
	TotalRecord int64 `json:"totalRecord"`
	Limit       int   `json:"limit"`
	Page        int   `json:"page"`
}

// Result is one page of records plus its pagination metadata
type Result[T any] struct {
	Records    []T        `json:"records"`
	Pagination Pagination `json:"pagination"`
}

// EmptyResult returns a result with no records and a zero total for the given window.
func EmptyResult[T any](page, limit int) Result[T] {
	return Result[T]{
		Records:    make([]T, 0),
		Pagination: Pagination{TotalRecord: 0, Limit: limit, Page: page},
	}
}

// Response structures
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
