package servehttp_test

import (
	"claimflow/bizerror"
	"claimflow/domain/actor"
	"claimflow/domain/claim"
	"claimflow/security"
	"claimflow/servehttp"
	"claimflow/testinfra"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ClaimDecisionHandler", func() {
	var (
		router    *gin.Engine
		lifecycle *lifecycleMock
	)

	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		lifecycle = &lifecycleMock{}
		servehttp.RegisterClaimDecisionHandler(router, lifecycle, security.ActingFilter())
	})

	It("should submit claim", func() {
		var gotID types.ID
		var gotActing actor.Acting
		lifecycle.SubmitFunc = func(claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
			gotID, gotActing = claimID, acting
			return demoClaim(claim.StatusSubmitted), nil
		}
		req := actingRequest(http.MethodPost, "/v1/claims/1/submit", nil, "10", "LECTURER")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(gotID).To(Equal(types.ID(1)))
		Expect(gotActing).To(Equal(actor.Acting{ID: 10, Role: actor.RoleLecturer}))
		Expect(decodeObject(body)["status"]).To(Equal(claim.StatusSubmitted))
	})

	It("should map validation failures of submission", func() {
		lifecycle.SubmitFunc = func(claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
			return nil, &bizerror.ValidationError{Field: "totalHours", Reason: "must be greater than 0"}
		}
		req := actingRequest(http.MethodPost, "/v1/claims/1/submit", nil, "10", "LECTURER")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"claim.validation_failed","message":"validation failed: totalHours must be greater than 0","data":{"field":"totalHours"}}`))
	})

	It("should require the approve flag of decisions", func() {
		req := actingRequest(http.MethodPost, "/v1/claims/1/coordinator-decision", []byte(`{"comment":"ok"}`), "20", "COORDINATOR")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(decodeObject(body)["code"]).To(Equal("common.bad_param"))
	})

	It("should pass coordinator decision", func() {
		var gotDecision *claim.Decision
		lifecycle.CoordinatorDecideFunc = func(claimID types.ID, d *claim.Decision, acting actor.Acting) (*claim.MonthlyClaim, error) {
			gotDecision = d
			return demoClaim(claim.StatusRejected), nil
		}
		req := actingRequest(http.MethodPost, "/v1/claims/1/coordinator-decision",
			[]byte(`{"approve":false,"comment":"missing timesheet"}`), "20", "COORDINATOR")
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(*gotDecision).To(Equal(claim.Decision{Approve: false, Comment: "missing timesheet"}))
	})

	It("should map invalid transitions of manager decision", func() {
		lifecycle.ManagerDecideFunc = func(claimID types.ID, d *claim.Decision, acting actor.Acting) (*claim.MonthlyClaim, error) {
			Expect(d.Approve).To(BeTrue())
			return nil, &bizerror.InvalidTransitionError{ClaimID: claimID, From: claim.StatusSubmitted, Event: claim.EventManagerApprove}
		}
		req := actingRequest(http.MethodPost, "/v1/claims/1/manager-decision", []byte(`{"approve":true}`), "30", "MANAGER")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"claim.invalid_transition","message":"event managerApprove is not acceptable for claim 1 in status SUBMITTED",
			"data":{"from":"SUBMITTED","event":"managerApprove"}}`))
	})

	It("should mark claim paid", func() {
		lifecycle.MarkPaidFunc = func(claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
			Expect(acting.Role).To(Equal(actor.RolePayroll))
			return demoClaim(claim.StatusPaid), nil
		}
		req := actingRequest(http.MethodPost, "/v1/claims/1/payment", nil, "40", "PAYROLL")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(decodeObject(body)["status"]).To(Equal(claim.StatusPaid))
	})

	It("should map concurrent modification", func() {
		lifecycle.MarkPaidFunc = func(claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
			return nil, &bizerror.ConcurrentModificationError{ClaimID: claimID}
		}
		req := actingRequest(http.MethodPost, "/v1/claims/1/payment", nil, "30", "MANAGER")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"claim.concurrent_modification","message":"claim 1 was modified concurrently","data":null}`))
	})
})

var _ = Describe("ClaimItemHandler", func() {
	var (
		router    *gin.Engine
		lifecycle *lifecycleMock
	)

	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		lifecycle = &lifecycleMock{}
		servehttp.RegisterClaimItemHandler(router, lifecycle, security.ActingFilter())
	})

	It("should add item", func() {
		var gotEntry *claim.ItemCreation
		lifecycle.AddItemFunc = func(claimID types.ID, entry *claim.ItemCreation, acting actor.Acting) (*claim.MonthlyClaim, error) {
			gotEntry = entry
			return demoClaim(claim.StatusDraft), nil
		}
		req := actingRequest(http.MethodPost, "/v1/claims/1/items",
			[]byte(`{"workDate":"2024-01-05T00:00:00Z","description":"tutorial","hoursWorked":3,"hourlyRate":"250.00"}`), "10", "LECTURER")
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(gotEntry.Description).To(Equal("tutorial"))
		Expect(gotEntry.HoursWorked.String()).To(Equal("3"))
		Expect(gotEntry.HourlyRate.StringFixed(2)).To(Equal("250.00"))
		Expect(gotEntry.WorkDate.Time().Day()).To(Equal(5))
	})

	It("should map not editable claims", func() {
		lifecycle.AddItemFunc = func(claimID types.ID, entry *claim.ItemCreation, acting actor.Acting) (*claim.MonthlyClaim, error) {
			return nil, &bizerror.NotEditableError{ClaimID: claimID, Status: claim.StatusPaid}
		}
		req := actingRequest(http.MethodPost, "/v1/claims/1/items", []byte(`{"description":"tutorial"}`), "10", "LECTURER")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(decodeObject(body)["code"]).To(Equal("claim.not_editable"))
	})

	It("should remove item", func() {
		var gotClaimID, gotItemID types.ID
		lifecycle.RemoveItemFunc = func(claimID, itemID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
			gotClaimID, gotItemID = claimID, itemID
			return demoClaim(claim.StatusDraft), nil
		}
		req := actingRequest(http.MethodDelete, "/v1/claims/1/items/100", nil, "10", "LECTURER")
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(gotClaimID).To(Equal(types.ID(1)))
		Expect(gotItemID).To(Equal(types.ID(100)))
	})

	It("should refuse invalid item id", func() {
		req := actingRequest(http.MethodDelete, "/v1/claims/1/items/x", nil, "10", "LECTURER")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid itemId 'x'","data":null}`))
	})
})
