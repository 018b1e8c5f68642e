package servehttp_test

import (
	"bytes"
	"claimflow/bizerror"
	"claimflow/domain/actor"
	"claimflow/domain/claim"
	"claimflow/security"
	"claimflow/servehttp"
	"claimflow/testinfra"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func actingRequest(method, target string, body []byte, id, role string) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	}
	req.Header.Set(security.HeaderActorID, id)
	req.Header.Set(security.HeaderActorRole, role)
	return req
}

func decodeObject(body string) map[string]interface{} {
	m := map[string]interface{}{}
	Expect(json.Unmarshal([]byte(body), &m)).To(Succeed())
	return m
}

func demoClaim(status string) *claim.MonthlyClaim {
	return &claim.MonthlyClaim{ID: 1, LecturerID: 10, ClaimMonth: "2024-01", Status: status,
		TotalHours: decimal.NewFromInt(5), TotalAmount: decimal.NewFromInt(1250), Items: []claim.ClaimItem{}}
}

var _ = Describe("ClaimHandler", func() {
	var (
		router    *gin.Engine
		lifecycle *lifecycleMock
	)

	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		lifecycle = &lifecycleMock{}
		servehttp.RegisterClaimHandler(router, lifecycle, security.ActingFilter())
	})

	Describe("acting actor", func() {
		It("should refuse requests without actor headers", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/claims", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusUnauthorized))
			Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated","data":null}`))
		})
		It("should refuse unknown roles", func() {
			req := actingRequest(http.MethodGet, "/v1/claims", nil, "10", "JANITOR")
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("handleCreate", func() {
		It("should be able to handle bind error", func() {
			req := actingRequest(http.MethodPost, "/v1/claims", []byte(`bad json`), "10", "LECTURER")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid character 'b' looking for beginning of value","data":null}`))
		})
		It("should be able to handle validate error", func() {
			req := actingRequest(http.MethodPost, "/v1/claims", []byte(`{}`), "10", "LECTURER")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"Key: 'ClaimCreation.ClaimMonth' Error:Field validation for 'ClaimMonth' failed on the 'required' tag","data":null}`))
		})
		It("should be able to handle service error", func() {
			lifecycle.CreateDraftFunc = func(c *claim.ClaimCreation, acting actor.Acting) (*claim.MonthlyClaim, error) {
				return nil, errors.New("a mocked error")
			}
			req := actingRequest(http.MethodPost, "/v1/claims", []byte(`{"claimMonth":"2024-01"}`), "10", "LECTURER")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusInternalServerError))
			Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"a mocked error","data":null}`))
		})
		It("should map duplicated claims to conflict", func() {
			lifecycle.CreateDraftFunc = func(c *claim.ClaimCreation, acting actor.Acting) (*claim.MonthlyClaim, error) {
				return nil, &bizerror.DuplicateClaimError{LecturerID: 10, ClaimMonth: "2024-01", ExistingID: 7}
			}
			req := actingRequest(http.MethodPost, "/v1/claims", []byte(`{"claimMonth":"2024-01"}`), "10", "LECTURER")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusConflict))
			Expect(body).To(MatchJSON(`{"code":"claim.duplicated","message":"lecturer 10 already has claim 7 for month 2024-01","data":{"existingId":"7"}}`))
		})
		It("should create draft for the acting lecturer", func() {
			var gotCreation *claim.ClaimCreation
			var gotActing actor.Acting
			lifecycle.CreateDraftFunc = func(c *claim.ClaimCreation, acting actor.Acting) (*claim.MonthlyClaim, error) {
				gotCreation, gotActing = c, acting
				return demoClaim(claim.StatusDraft), nil
			}
			req := actingRequest(http.MethodPost, "/v1/claims", []byte(
				`{"claimMonth":"2024-01","items":[{"workDate":"2024-01-05T00:00:00Z","description":"tutorial","hoursWorked":"3.5","hourlyRate":null}]}`),
				"10", "lecturer")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(gotActing).To(Equal(actor.Acting{ID: 10, Role: actor.RoleLecturer}))
			Expect(gotCreation.ClaimMonth).To(Equal("2024-01"))
			Expect(len(gotCreation.Items)).To(Equal(1))
			Expect(gotCreation.Items[0].HoursWorked.String()).To(Equal("3.5"))
			Expect(gotCreation.Items[0].HourlyRate).To(BeNil())

			m := decodeObject(body)
			Expect(m["id"]).To(Equal("1"))
			Expect(m["status"]).To(Equal(claim.StatusDraft))
			Expect(m["totalAmount"]).To(Equal("1250"))
		})
	})

	Describe("handleQuery", func() {
		It("should pass query conditions", func() {
			var gotQuery *claim.ClaimQuery
			lifecycle.QueryClaimsFunc = func(q *claim.ClaimQuery, acting actor.Acting) ([]claim.MonthlyClaim, error) {
				gotQuery = q
				return []claim.MonthlyClaim{*demoClaim(claim.StatusSubmitted)}, nil
			}
			req := actingRequest(http.MethodGet, "/v1/claims?lecturerId=10&claimMonth=2024-01&status=SUBMITTED", nil, "20", "COORDINATOR")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(*gotQuery).To(Equal(claim.ClaimQuery{LecturerID: 10, ClaimMonth: "2024-01", Status: claim.StatusSubmitted}))

			m := decodeObject(body)
			Expect(m["total"]).To(Equal(float64(1)))
			Expect(len(m["list"].([]interface{}))).To(Equal(1))
		})
	})

	Describe("handleDetail", func() {
		It("should refuse invalid id", func() {
			req := actingRequest(http.MethodGet, "/v1/claims/abc", nil, "20", "COORDINATOR")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'abc'","data":null}`))
		})
		It("should map forbidden and not found", func() {
			lifecycle.DetailClaimFunc = func(claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
				if claimID == 1 {
					return nil, &bizerror.ForbiddenError{Reason: "claim is not visible to the actor"}
				}
				return nil, &bizerror.NotFoundError{Kind: "claim", ID: claimID}
			}
			req := actingRequest(http.MethodGet, "/v1/claims/1", nil, "20", "COORDINATOR")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"forbidden: claim is not visible to the actor","data":null}`))

			req = actingRequest(http.MethodGet, "/v1/claims/2", nil, "20", "COORDINATOR")
			status, body, _ = testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNotFound))
			Expect(body).To(MatchJSON(`{"code":"common.record_not_found","message":"claim 2 not found","data":null}`))
		})
		It("should return claim detail", func() {
			lifecycle.DetailClaimFunc = func(claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
				return demoClaim(claim.StatusSubmitted), nil
			}
			req := actingRequest(http.MethodGet, "/v1/claims/1", nil, "30", "MANAGER")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(decodeObject(body)["claimMonth"]).To(Equal("2024-01"))
		})
	})

	Describe("handleDelete", func() {
		It("should delete draft", func() {
			var gotID types.ID
			lifecycle.DeleteDraftFunc = func(claimID types.ID, acting actor.Acting) error {
				gotID = claimID
				return nil
			}
			req := actingRequest(http.MethodDelete, "/v1/claims/1", nil, "10", "LECTURER")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNoContent))
			Expect(body).To(BeEmpty())
			Expect(gotID).To(Equal(types.ID(1)))
		})
		It("should map not editable to conflict", func() {
			lifecycle.DeleteDraftFunc = func(claimID types.ID, acting actor.Acting) error {
				return &bizerror.NotEditableError{ClaimID: claimID, Status: claim.StatusSubmitted}
			}
			req := actingRequest(http.MethodDelete, "/v1/claims/1", nil, "10", "LECTURER")
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusConflict))
			Expect(body).To(MatchJSON(`{"code":"claim.not_editable","message":"claim 1 is not editable in status SUBMITTED","data":null}`))
		})
	})
})
