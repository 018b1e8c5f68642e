package search

import (
	"claimflow/bizerror"
	"claimflow/common"
	"claimflow/security"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	PathClaimSearch = "/v1/claim-search"
)

func RegisterClaimSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathClaimSearch, middleWares...)
	g.GET("", handleSearchClaims)
}

func handleSearchClaims(c *gin.Context) {
	q := ClaimSearchQuery{}
	if err := c.ShouldBindQuery(&q); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	docs, err := SearchClaimsFunc(c.Request.Context(), q, security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &common.PagedBody{List: docs, Total: uint64(len(docs))})
}
