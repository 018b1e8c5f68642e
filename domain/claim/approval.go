package claim

import (
	"claimflow/bizerror"
	"claimflow/domain/actor"
	"claimflow/domain/state"
	"strings"
	"unicode/utf8"

	"github.com/fundwit/go-commons/types"
)

const (
	EventSubmit             = "submit"
	EventCoordinatorApprove = "coordinatorApprove"
	EventCoordinatorReject  = "coordinatorReject"
	EventManagerApprove     = "managerApprove"
	EventManagerReject      = "managerReject"
	EventMarkPaid           = "markPaid"
)

var ClaimStateMachine = state.NewStateMachine(
	[]state.State{
		{Name: StatusDraft, Category: state.InBacklog, Order: 1},
		{Name: StatusSubmitted, Category: state.InProcess, Order: 2},
		{Name: StatusCoordinatorApproved, Category: state.InProcess, Order: 3},
		{Name: StatusManagerApproved, Category: state.InProcess, Order: 4},
		{Name: StatusPaid, Category: state.Done, Order: 5},
		{Name: StatusRejected, Category: state.Rejected, Order: 6},
	},
	[]state.Transition{
		{Name: EventSubmit, From: StatusDraft, To: StatusSubmitted},
		{Name: EventCoordinatorApprove, From: StatusSubmitted, To: StatusCoordinatorApproved},
		{Name: EventCoordinatorReject, From: StatusSubmitted, To: StatusRejected},
		{Name: EventManagerApprove, From: StatusCoordinatorApproved, To: StatusManagerApproved},
		{Name: EventManagerReject, From: StatusCoordinatorApproved, To: StatusRejected},
		{Name: EventMarkPaid, From: StatusManagerApproved, To: StatusPaid},
	},
)

var eventRoles = map[string][]actor.Role{
	EventSubmit:             {actor.RoleLecturer},
	EventCoordinatorApprove: {actor.RoleCoordinator},
	EventCoordinatorReject:  {actor.RoleCoordinator},
	EventManagerApprove:     {actor.RoleManager},
	EventManagerReject:      {actor.RoleManager},
	EventMarkPaid:           {actor.RolePayroll, actor.RoleManager},
}

// TransitionRequest carries everything the guards of one transition need.
type TransitionRequest struct {
	Event   string
	Acting  actor.Acting
	Comment string
	Now     types.Timestamp

	// ConflictingClaimID is another claim of the same lecturer and month which already left DRAFT
	// and is not REJECTED. Only submit looks at it.
	ConflictingClaimID types.ID
}

// Fire checks the transition and all of its guards, then applies status and side effects to c.
// c is left untouched when an error is returned.
func Fire(c *MonthlyClaim, req TransitionRequest) error {
	transition, found := ClaimStateMachine.FindTransition(c.Status, req.Event)
	if !found {
		return &bizerror.InvalidTransitionError{ClaimID: c.ID, From: c.Status, Event: req.Event}
	}
	if !roleAllowed(req.Event, req.Acting.Role) {
		return &bizerror.ForbiddenError{Reason: "role " + string(req.Acting.Role) + " can not " + req.Event}
	}
	if utf8.RuneCountInString(req.Comment) > MaxCommentLength {
		return &bizerror.ValidationError{Field: "comment", Reason: "must be at most 500 characters"}
	}

	switch req.Event {
	case EventSubmit:
		if c.LecturerID != req.Acting.ID {
			return &bizerror.ForbiddenError{Reason: "only the owning lecturer can submit"}
		}
		if !CanBeSubmitted(c) {
			return &bizerror.ValidationError{Field: "totalHours", Reason: "must be greater than 0"}
		}
		if req.ConflictingClaimID != 0 {
			return &bizerror.DuplicateClaimError{LecturerID: c.LecturerID, ClaimMonth: c.ClaimMonth, ExistingID: req.ConflictingClaimID}
		}
		c.SubmissionDate = req.Now

	case EventCoordinatorApprove, EventCoordinatorReject:
		if c.CoordinatorID != 0 && c.CoordinatorID != req.Acting.ID {
			return &bizerror.ForbiddenError{Reason: "claim is assigned to another coordinator"}
		}
		if req.Event == EventCoordinatorReject && strings.TrimSpace(req.Comment) == "" {
			return &bizerror.ValidationError{Field: "comment", Reason: "is required for rejection"}
		}
		c.CoordinatorID = req.Acting.ID
		c.CoordinatorReviewDate = req.Now
		if req.Event == EventCoordinatorApprove {
			c.CoordinatorApprovalDate = req.Now
		}
		if req.Comment != "" {
			c.CoordinatorComments = req.Comment
		}

	case EventManagerApprove, EventManagerReject:
		if req.Event == EventManagerReject && strings.TrimSpace(req.Comment) == "" {
			return &bizerror.ValidationError{Field: "comment", Reason: "is required for rejection"}
		}
		c.ManagerID = req.Acting.ID
		c.ManagerReviewDate = req.Now
		if req.Event == EventManagerApprove {
			c.ManagerApprovalDate = req.Now
		}
		if req.Comment != "" {
			c.ManagerComments = req.Comment
		}

	case EventMarkPaid:
		c.PaymentDate = req.Now
	}

	c.Status = transition.To
	return nil
}

// AvailableEvents lists the events the role may fire from the status.
func AvailableEvents(status string, role actor.Role) []string {
	events := []string{}
	for _, t := range ClaimStateMachine.AvailableTransitions(status, "") {
		if roleAllowed(t.Name, role) {
			events = append(events, t.Name)
		}
	}
	return events
}

func IsTerminal(status string) bool {
	return ClaimStateMachine.IsTerminal(status)
}

func roleAllowed(event string, role actor.Role) bool {
	for _, r := range eventRoles[event] {
		if r == role {
			return true
		}
	}
	return false
}
