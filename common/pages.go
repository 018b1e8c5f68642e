package common

type PagedBody struct {
	List  interface{} `json:"list"`
	Total uint64      `json:"total"`
}
