package claim

import (
	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

const (
	StatusDraft               = "DRAFT"
	StatusSubmitted           = "SUBMITTED"
	StatusCoordinatorApproved = "COORDINATOR_APPROVED"
	StatusManagerApproved     = "MANAGER_APPROVED"
	StatusPaid                = "PAID"
	StatusRejected            = "REJECTED"
)

const (
	MaxDescriptionLength = 200
	MaxCommentLength     = 500
)

// MonthlyClaim is the aggregate root of one lecturer's claim for one calendar month.
type MonthlyClaim struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	LecturerID types.ID `json:"lecturerId" gorm:"index:idx_lecturer_month;unique_index:uix_lecturer_open_month"`
	ClaimMonth string   `json:"claimMonth" gorm:"index:idx_lecturer_month" sql:"type:CHAR(7)"`
	Status     string   `json:"status" gorm:"index" sql:"type:VARCHAR(32)"`
	// OpenMonth is ClaimMonth until the claim is rejected, then NULL. It is maintained by the store.
	OpenMonth *string `json:"-" gorm:"unique_index:uix_lecturer_open_month" sql:"type:CHAR(7)"`

	CreateTime     types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
	SubmissionDate types.Timestamp `json:"submissionDate" sql:"type:DATETIME(6)"`

	CoordinatorID           types.ID        `json:"coordinatorId"`
	CoordinatorReviewDate   types.Timestamp `json:"coordinatorReviewDate" sql:"type:DATETIME(6)"`
	CoordinatorApprovalDate types.Timestamp `json:"coordinatorApprovalDate" sql:"type:DATETIME(6)"`
	CoordinatorComments     string          `json:"coordinatorComments" sql:"type:VARCHAR(500)"`

	ManagerID           types.ID        `json:"managerId"`
	ManagerReviewDate   types.Timestamp `json:"managerReviewDate" sql:"type:DATETIME(6)"`
	ManagerApprovalDate types.Timestamp `json:"managerApprovalDate" sql:"type:DATETIME(6)"`
	ManagerComments     string          `json:"managerComments" sql:"type:VARCHAR(500)"`

	PaymentDate types.Timestamp `json:"paymentDate" sql:"type:DATETIME(6)"`

	TotalHours  decimal.Decimal `json:"totalHours" sql:"type:DECIMAL(8,2)"`
	TotalAmount decimal.Decimal `json:"totalAmount" sql:"type:DECIMAL(12,2)"`

	Version uint `json:"version"`

	Items []ClaimItem `json:"items" gorm:"-"`
}

func (c *MonthlyClaim) TableName() string {
	return "monthly_claims"
}

// Clone returns a deep copy, items included.
func (c *MonthlyClaim) Clone() *MonthlyClaim {
	r := *c
	if c.OpenMonth != nil {
		m := *c.OpenMonth
		r.OpenMonth = &m
	}
	if c.Items != nil {
		r.Items = append([]ClaimItem{}, c.Items...)
	}
	return &r
}

// ClaimItem is a dated work entry of a claim. The hourly rate is a snapshot taken at entry time.
type ClaimItem struct {
	ID          types.ID        `json:"id" gorm:"primary_key"`
	ClaimID     types.ID        `json:"claimId" gorm:"index"`
	WorkDate    types.Timestamp `json:"workDate" sql:"type:DATETIME(6)"`
	Description string          `json:"description" sql:"type:VARCHAR(200)"`
	HoursWorked decimal.Decimal `json:"hoursWorked" sql:"type:DECIMAL(4,2)"`
	HourlyRate  decimal.Decimal `json:"hourlyRate" sql:"type:DECIMAL(10,2)"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (i *ClaimItem) TableName() string {
	return "claim_items"
}

// ItemEntry is the caller supplied content of a new claim item.
type ItemEntry struct {
	WorkDate    types.Timestamp
	Description string `validate:"required,max=200"`
	HoursWorked decimal.Decimal
	HourlyRate  decimal.Decimal
}

type ClaimQuery struct {
	LecturerID types.ID `form:"lecturerId"`
	ClaimMonth string   `form:"claimMonth"`
	Status     string   `form:"status"`
}

// Clock supplies the current time to the lifecycle service.
type Clock func() types.Timestamp

func SystemClock() types.Timestamp {
	return types.CurrentTimestamp()
}
