package servehttp

import (
	"claimflow/bizerror"
	"claimflow/domain/claim"
	"claimflow/security"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterClaimItemHandler(r *gin.Engine, m claim.LifecycleTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/claims/:id/items", middleWares...)

	handler := &claimItemHandler{lifecycle: m}
	g.POST("", handler.handleCreate)
	g.DELETE(":itemId", handler.handleDelete)
}

type claimItemHandler struct {
	lifecycle claim.LifecycleTraits
}

func (h *claimItemHandler) handleCreate(c *gin.Context) {
	claimID := parseIDParam(c, "id")
	creation := claim.ItemCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := h.lifecycle.AddItem(c.Request.Context(), claimID, &creation, security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *claimItemHandler) handleDelete(c *gin.Context) {
	claimID := parseIDParam(c, "id")
	itemID := parseIDParam(c, "itemId")

	detail, err := h.lifecycle.RemoveItem(c.Request.Context(), claimID, itemID, security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}
