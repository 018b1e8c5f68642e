package bizerror

import (
	"claimflow/common"
	"errors"
	"fmt"
	"net/http"

	"github.com/fundwit/go-commons/types"
)

const (
	CodeInternalServerError = "common.internal_server_error"
	CodeBadParam            = "common.bad_param"
	CodeRecordNotFound      = "common.record_not_found"
	CodeUnauthenticated     = "common.unauthenticated"
	CodeForbidden           = "security.forbidden"

	CodeValidationFailed       = "claim.validation_failed"
	CodeNotEditable            = "claim.not_editable"
	CodeInvalidTransition      = "claim.invalid_transition"
	CodeDuplicated             = "claim.duplicated"
	CodeConcurrentModification = "claim.concurrent_modification"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// ErrBadParam wraps malformed transport input.
type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return CodeBadParam
}
func (e *ErrBadParam) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusBadRequest, Code: CodeBadParam, Message: e.Error()}
}

// ValidationError reports malformed claim or item input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return "validation failed: " + e.Field + " " + e.Reason
}
func (e *ValidationError) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusBadRequest, Code: CodeValidationFailed, Message: e.Error(),
		Data: map[string]string{"field": e.Field}}
}

// NotEditableError reports an item mutation on a claim that left DRAFT.
// It unwraps to a ValidationError so callers matching on validation also catch it.
type NotEditableError struct {
	ClaimID types.ID
	Status  string
}

func (e *NotEditableError) Error() string {
	return fmt.Sprintf("claim %s is not editable in status %s", e.ClaimID, e.Status)
}
func (e *NotEditableError) Unwrap() error {
	return &ValidationError{Field: "status", Reason: "must be DRAFT to edit claim items"}
}
func (e *NotEditableError) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusConflict, Code: CodeNotEditable, Message: e.Error()}
}

type InvalidTransitionError struct {
	ClaimID types.ID
	From    string
	Event   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("event %s is not acceptable for claim %s in status %s", e.Event, e.ClaimID, e.From)
}
func (e *InvalidTransitionError) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusConflict, Code: CodeInvalidTransition, Message: e.Error(),
		Data: map[string]string{"from": e.From, "event": e.Event}}
}

type DuplicateClaimError struct {
	LecturerID types.ID
	ClaimMonth string
	ExistingID types.ID
}

func (e *DuplicateClaimError) Error() string {
	return fmt.Sprintf("lecturer %s already has claim %s for month %s", e.LecturerID, e.ExistingID, e.ClaimMonth)
}
func (e *DuplicateClaimError) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusConflict, Code: CodeDuplicated, Message: e.Error(),
		Data: map[string]string{"existingId": e.ExistingID.String()}}
}

// ConcurrentModificationError is returned when the stored claim changed after it was loaded.
// Callers reload and retry.
type ConcurrentModificationError struct {
	ClaimID types.ID
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("claim %s was modified concurrently", e.ClaimID)
}
func (e *ConcurrentModificationError) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusConflict, Code: CodeConcurrentModification, Message: e.Error()}
}

type NotFoundError struct {
	Kind string
	ID   types.ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
func (e *NotFoundError) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusNotFound, Code: CodeRecordNotFound, Message: e.Error()}
}

// ForbiddenError reports an actor acting outside its role or ownership.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return "forbidden: " + e.Reason
}
func (e *ForbiddenError) Respond() *common.BizErrorDetail {
	return &common.BizErrorDetail{Status: http.StatusForbidden, Code: CodeForbidden, Message: e.Error()}
}
