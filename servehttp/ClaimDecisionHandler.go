package servehttp

import (
	"claimflow/bizerror"
	"claimflow/domain/claim"
	"claimflow/security"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// RegisterClaimDecisionHandler exposes the approval chain of a claim.
func RegisterClaimDecisionHandler(r *gin.Engine, m claim.LifecycleTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/claims/:id", middleWares...)

	handler := &claimDecisionHandler{lifecycle: m}
	g.POST("submit", handler.handleSubmit)
	g.POST("coordinator-decision", handler.handleCoordinatorDecision)
	g.POST("manager-decision", handler.handleManagerDecision)
	g.POST("payment", handler.handlePayment)
}

type claimDecisionHandler struct {
	lifecycle claim.LifecycleTraits
}

type decisionBody struct {
	Approve *bool  `json:"approve" binding:"required"`
	Comment string `json:"comment" binding:"max=500"`
}

func (h *claimDecisionHandler) handleSubmit(c *gin.Context) {
	detail, err := h.lifecycle.Submit(c.Request.Context(), parseIDParam(c, "id"), security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func (h *claimDecisionHandler) handleCoordinatorDecision(c *gin.Context) {
	claimID := parseIDParam(c, "id")
	d := bindDecision(c)
	detail, err := h.lifecycle.CoordinatorDecide(c.Request.Context(), claimID, d, security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func (h *claimDecisionHandler) handleManagerDecision(c *gin.Context) {
	claimID := parseIDParam(c, "id")
	d := bindDecision(c)
	detail, err := h.lifecycle.ManagerDecide(c.Request.Context(), claimID, d, security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func (h *claimDecisionHandler) handlePayment(c *gin.Context) {
	detail, err := h.lifecycle.MarkPaid(c.Request.Context(), parseIDParam(c, "id"), security.MustFindActing(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func bindDecision(c *gin.Context) *claim.Decision {
	body := decisionBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return &claim.Decision{Approve: *body.Approve, Comment: body.Comment}
}
