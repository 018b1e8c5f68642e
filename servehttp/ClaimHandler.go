package servehttp

import (
	"claimflow/bizerror"
	"claimflow/common"
	"claimflow/domain/claim"
	"claimflow/security"
	"errors"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterClaimHandler(r *gin.Engine, m claim.LifecycleTraits, middleWares ...gin.HandlerFunc) {
	// group: "", version: v1, resource: claims
	g := r.Group("/v1/claims", middleWares...)

	handler := &claimHandler{lifecycle: m}

	g.GET("", handler.handleQuery)
	g.POST("", handler.handleCreate)
	g.GET(":id", handler.handleDetail)
	g.DELETE(":id", handler.handleDelete)
}

type claimHandler struct {
	lifecycle claim.LifecycleTraits
}

func (h *claimHandler) handleCreate(c *gin.Context) {
	creation := claim.ClaimCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := h.lifecycle.CreateDraft(c.Request.Context(), &creation, security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *claimHandler) handleQuery(c *gin.Context) {
	query := claim.ClaimQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	claims, err := h.lifecycle.QueryClaims(c.Request.Context(), &query, security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &common.PagedBody{List: claims, Total: uint64(len(claims))})
}

func (h *claimHandler) handleDetail(c *gin.Context) {
	detail, err := h.lifecycle.DetailClaim(c.Request.Context(), parseIDParam(c, "id"), security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func (h *claimHandler) handleDelete(c *gin.Context) {
	err := h.lifecycle.DeleteDraft(c.Request.Context(), parseIDParam(c, "id"), security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context, name string) types.ID {
	parsedId, err := types.ParseID(c.Param(name))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid " + name + " '" + c.Param(name) + "'")})
	}
	return parsedId
}
