package constants

// Pagination Query Parameters
const (
	QueryParamPage   = "page"
	QueryParamSize   = "size"
	QueryParamSearch = "query"
)

// Default Pagination Values (as strings for query parsing)
const (
	DefaultPage = "1"
	DefaultSize = "10"
)

// Pagination Limits (as integers for validation)
const (
	MinPage = 1
	MinSize = 1
	MaxSize = 100
)
