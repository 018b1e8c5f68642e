package claim

import (
	"claimflow/bizerror"
	"claimflow/common"
	"claimflow/domain/actor"
	"claimflow/event"
	"claimflow/idgen"
	"context"
	"errors"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

const SourceTypeClaim = "CLAIM"

type LifecycleTraits interface {
	CreateDraft(ctx context.Context, c *ClaimCreation, acting actor.Acting) (*MonthlyClaim, error)
	AddItem(ctx context.Context, claimID types.ID, entry *ItemCreation, acting actor.Acting) (*MonthlyClaim, error)
	RemoveItem(ctx context.Context, claimID, itemID types.ID, acting actor.Acting) (*MonthlyClaim, error)
	DeleteDraft(ctx context.Context, claimID types.ID, acting actor.Acting) error
	Submit(ctx context.Context, claimID types.ID, acting actor.Acting) (*MonthlyClaim, error)
	CoordinatorDecide(ctx context.Context, claimID types.ID, d *Decision, acting actor.Acting) (*MonthlyClaim, error)
	ManagerDecide(ctx context.Context, claimID types.ID, d *Decision, acting actor.Acting) (*MonthlyClaim, error)
	MarkPaid(ctx context.Context, claimID types.ID, acting actor.Acting) (*MonthlyClaim, error)
	DetailClaim(ctx context.Context, claimID types.ID, acting actor.Acting) (*MonthlyClaim, error)
	QueryClaims(ctx context.Context, q *ClaimQuery, acting actor.Acting) ([]MonthlyClaim, error)
}

type ClaimCreation struct {
	ClaimMonth string         `json:"claimMonth" binding:"required"`
	Items      []ItemCreation `json:"items"`
}

// ItemCreation is a claim item as requested by a lecturer. A nil rate takes the lecturer's current rate.
type ItemCreation struct {
	WorkDate    types.Timestamp  `json:"workDate"`
	Description string           `json:"description"`
	HoursWorked decimal.Decimal  `json:"hoursWorked"`
	HourlyRate  *decimal.Decimal `json:"hourlyRate"`
}

type Decision struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment"`
}

// Service applies lifecycle operations, each one inside a single unit of work of the store.
type Service struct {
	store     Store
	directory actor.Directory
	clock     Clock
	idWorker  *sonyflake.Sonyflake
}

func NewService(store Store, directory actor.Directory, clock Clock, idWorker *sonyflake.Sonyflake) *Service {
	if clock == nil {
		clock = SystemClock
	}
	return &Service{store: store, directory: directory, clock: clock, idWorker: idWorker}
}

var _ LifecycleTraits = (*Service)(nil)

func (s *Service) CreateDraft(ctx context.Context, creation *ClaimCreation, acting actor.Acting) (*MonthlyClaim, error) {
	if acting.Role != actor.RoleLecturer {
		return nil, &bizerror.ForbiddenError{Reason: "only lecturers can create claims"}
	}
	lecturer, err := s.findActiveLecturer(ctx, acting.ID)
	if err != nil {
		return nil, err
	}
	month, err := ParseClaimMonth(strings.TrimSpace(creation.ClaimMonth))
	if err != nil {
		return nil, err
	}
	if err := checkContractCovers(lecturer, month); err != nil {
		return nil, err
	}

	now := s.clock()
	c := &MonthlyClaim{
		ID:          idgen.NextID(s.idWorker),
		LecturerID:  lecturer.ID,
		ClaimMonth:  month,
		Status:      StatusDraft,
		CreateTime:  now,
		TotalHours:  decimal.Zero,
		TotalAmount: decimal.Zero,
		Items:       []ClaimItem{},
	}
	for idx := range creation.Items {
		if _, err := AddItem(c, idgen.NextID(s.idWorker), toEntry(&creation.Items[idx], lecturer), now); err != nil {
			return nil, err
		}
		if err := checkWorkDate(c, c.Items[len(c.Items)-1].WorkDate); err != nil {
			return nil, err
		}
	}
	Recompute(c)

	record := s.newEvent(c, event.EventCategoryCreated, nil, nil, acting.ID, profileName(lecturer.Profile), now)
	err = s.store.InTransaction(ctx, func(repo Repository) error {
		siblings, err := repo.FindClaimsOfMonth(c.LecturerID, c.ClaimMonth)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling.Status != StatusRejected {
				return &bizerror.DuplicateClaimError{LecturerID: c.LecturerID, ClaimMonth: c.ClaimMonth, ExistingID: sibling.ID}
			}
		}
		if err := repo.CreateClaim(c); err != nil {
			return err
		}
		return repo.AppendEvent(record)
	})
	if err != nil {
		logFailure(c.ID, "create", acting, err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"claimId": c.ID, "claimMonth": c.ClaimMonth, "actor": acting.ID}).Info("claim draft created")
	event.InvokeHandlersFunc(record)
	return c, nil
}

func (s *Service) AddItem(ctx context.Context, claimID types.ID, creation *ItemCreation, acting actor.Acting) (*MonthlyClaim, error) {
	if acting.Role != actor.RoleLecturer {
		return nil, &bizerror.ForbiddenError{Reason: "only lecturers can edit claims"}
	}
	lecturer, err := s.findActiveLecturer(ctx, acting.ID)
	if err != nil {
		return nil, err
	}

	var c *MonthlyClaim
	var record *event.EventRecord
	err = s.store.InTransaction(ctx, func(repo Repository) error {
		c, err = repo.LoadClaim(claimID, true)
		if err != nil {
			return err
		}
		if c.LecturerID != acting.ID {
			return &bizerror.ForbiddenError{Reason: "claim belongs to another lecturer"}
		}
		now := s.clock()
		oldHours, oldAmount := c.TotalHours, c.TotalAmount
		item, err := AddItem(c, idgen.NextID(s.idWorker), toEntry(creation, lecturer), now)
		if err != nil {
			return err
		}
		if err := checkWorkDate(c, item.WorkDate); err != nil {
			return err
		}
		Recompute(c)

		if err := repo.InsertItem(item); err != nil {
			return err
		}
		if err := repo.SaveClaim(c); err != nil {
			return err
		}
		record = s.newEvent(c, event.EventCategoryExtensionUpdated,
			totalsChanges(oldHours, oldAmount, c),
			[]event.UpdatedRelation{{PropertyName: "items", PropertyDesc: "items", TargetType: "CLAIM_ITEM", TargetTypeDesc: "claim item",
				NewTargetId: item.ID.String(), NewTargetDesc: item.Description}},
			acting.ID, profileName(lecturer.Profile), now)
		return repo.AppendEvent(record)
	})
	if err != nil {
		logFailure(claimID, "addItem", acting, err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"claimId": c.ID, "totalHours": c.TotalHours.String(), "actor": acting.ID}).Info("claim item added")
	event.InvokeHandlersFunc(record)
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, claimID, itemID types.ID, acting actor.Acting) (*MonthlyClaim, error) {
	if acting.Role != actor.RoleLecturer {
		return nil, &bizerror.ForbiddenError{Reason: "only lecturers can edit claims"}
	}
	lecturer, err := s.findActiveLecturer(ctx, acting.ID)
	if err != nil {
		return nil, err
	}

	var c *MonthlyClaim
	var record *event.EventRecord
	err = s.store.InTransaction(ctx, func(repo Repository) error {
		c, err = repo.LoadClaim(claimID, true)
		if err != nil {
			return err
		}
		if c.LecturerID != acting.ID {
			return &bizerror.ForbiddenError{Reason: "claim belongs to another lecturer"}
		}
		oldHours, oldAmount := c.TotalHours, c.TotalAmount
		item, err := RemoveItem(c, itemID)
		if err != nil {
			return err
		}
		Recompute(c)

		if err := repo.DeleteItem(item); err != nil {
			return err
		}
		if err := repo.SaveClaim(c); err != nil {
			return err
		}
		record = s.newEvent(c, event.EventCategoryExtensionUpdated,
			totalsChanges(oldHours, oldAmount, c),
			[]event.UpdatedRelation{{PropertyName: "items", PropertyDesc: "items", TargetType: "CLAIM_ITEM", TargetTypeDesc: "claim item",
				OldTargetId: item.ID.String(), OldTargetDesc: item.Description}},
			acting.ID, profileName(lecturer.Profile), s.clock())
		return repo.AppendEvent(record)
	})
	if err != nil {
		logFailure(claimID, "removeItem", acting, err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"claimId": c.ID, "totalHours": c.TotalHours.String(), "actor": acting.ID}).Info("claim item removed")
	event.InvokeHandlersFunc(record)
	return c, nil
}

// DeleteDraft removes a claim that never left DRAFT, items included.
func (s *Service) DeleteDraft(ctx context.Context, claimID types.ID, acting actor.Acting) error {
	if acting.Role != actor.RoleLecturer {
		return &bizerror.ForbiddenError{Reason: "only lecturers can delete claims"}
	}
	lecturer, err := s.findActiveLecturer(ctx, acting.ID)
	if err != nil {
		return err
	}

	var record *event.EventRecord
	err = s.store.InTransaction(ctx, func(repo Repository) error {
		c, err := repo.LoadClaim(claimID, true)
		if err != nil {
			return err
		}
		if c.LecturerID != acting.ID {
			return &bizerror.ForbiddenError{Reason: "claim belongs to another lecturer"}
		}
		if !CanBeEdited(c) {
			return &bizerror.NotEditableError{ClaimID: c.ID, Status: c.Status}
		}
		if err := repo.DeleteClaim(c); err != nil {
			return err
		}
		record = s.newEvent(c, event.EventCategoryDeleted, nil, nil, acting.ID, profileName(lecturer.Profile), s.clock())
		return repo.AppendEvent(record)
	})
	if err != nil {
		logFailure(claimID, "delete", acting, err)
		return err
	}

	logrus.WithFields(logrus.Fields{"claimId": claimID, "actor": acting.ID}).Info("claim draft deleted")
	event.InvokeHandlersFunc(record)
	return nil
}

func (s *Service) Submit(ctx context.Context, claimID types.ID, acting actor.Acting) (*MonthlyClaim, error) {
	return s.transit(ctx, claimID, EventSubmit, "", acting)
}

func (s *Service) CoordinatorDecide(ctx context.Context, claimID types.ID, d *Decision, acting actor.Acting) (*MonthlyClaim, error) {
	if d.Approve {
		return s.transit(ctx, claimID, EventCoordinatorApprove, d.Comment, acting)
	}
	return s.transit(ctx, claimID, EventCoordinatorReject, d.Comment, acting)
}

func (s *Service) ManagerDecide(ctx context.Context, claimID types.ID, d *Decision, acting actor.Acting) (*MonthlyClaim, error) {
	if d.Approve {
		return s.transit(ctx, claimID, EventManagerApprove, d.Comment, acting)
	}
	return s.transit(ctx, claimID, EventManagerReject, d.Comment, acting)
}

func (s *Service) MarkPaid(ctx context.Context, claimID types.ID, acting actor.Acting) (*MonthlyClaim, error) {
	return s.transit(ctx, claimID, EventMarkPaid, "", acting)
}

func (s *Service) DetailClaim(ctx context.Context, claimID types.ID, acting actor.Acting) (*MonthlyClaim, error) {
	if _, err := s.verifyActor(ctx, acting); err != nil {
		return nil, err
	}
	var c *MonthlyClaim
	err := s.store.InTransaction(ctx, func(repo Repository) error {
		var err error
		c, err = repo.LoadClaim(claimID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !visibleTo(c, acting) {
		return nil, &bizerror.ForbiddenError{Reason: "claim is not visible to the actor"}
	}
	return c, nil
}

// QueryClaims lists claims without items. Lecturers only see their own claims, other roles never see drafts.
func (s *Service) QueryClaims(ctx context.Context, q *ClaimQuery, acting actor.Acting) ([]MonthlyClaim, error) {
	if _, err := s.verifyActor(ctx, acting); err != nil {
		return nil, err
	}
	query := *q
	if query.ClaimMonth != "" {
		month, err := ParseClaimMonth(query.ClaimMonth)
		if err != nil {
			return nil, err
		}
		query.ClaimMonth = month
	}
	if acting.Role == actor.RoleLecturer {
		if query.LecturerID != 0 && query.LecturerID != acting.ID {
			return nil, &bizerror.ForbiddenError{Reason: "lecturers can only query their own claims"}
		}
		query.LecturerID = acting.ID
	}

	var claims []MonthlyClaim
	err := s.store.InTransaction(ctx, func(repo Repository) error {
		var err error
		claims, err = repo.QueryClaims(query)
		return err
	})
	if err != nil {
		return nil, err
	}
	result := []MonthlyClaim{}
	for _, c := range claims {
		if visibleTo(&c, acting) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *Service) transit(ctx context.Context, claimID types.ID, eventName, comment string, acting actor.Acting) (*MonthlyClaim, error) {
	actorName, err := s.verifyActor(ctx, acting)
	if err != nil {
		return nil, err
	}

	var c *MonthlyClaim
	var record *event.EventRecord
	var from string
	err = s.store.InTransaction(ctx, func(repo Repository) error {
		c, err = repo.LoadClaim(claimID, true)
		if err != nil {
			return err
		}
		req := TransitionRequest{Event: eventName, Acting: acting, Comment: comment, Now: s.clock()}
		if eventName == EventSubmit {
			Recompute(c)
			if req.ConflictingClaimID, err = findConflictingClaim(repo, c); err != nil {
				return err
			}
		}

		from = c.Status
		if err := Fire(c, req); err != nil {
			return err
		}
		if err := repo.SaveClaim(c); err != nil {
			return err
		}
		record = s.newEvent(c, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{event.PropertyChange("status", from, c.Status)}, nil,
			acting.ID, actorName, req.Now)
		record.Comment = comment
		return repo.AppendEvent(record)
	})
	if err != nil {
		logFailure(claimID, eventName, acting, err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"claimId": c.ID, "event": eventName, "actor": acting.ID, "role": acting.Role,
		"from": from, "to": c.Status}).Info("claim transitioned")
	event.InvokeHandlersFunc(record)
	return c, nil
}

// verifyActor resolves the acting actor in the directory and returns its display name.
// Payroll is a system process without a directory record.
func (s *Service) verifyActor(ctx context.Context, acting actor.Acting) (string, error) {
	switch acting.Role {
	case actor.RoleLecturer:
		l, err := s.findActiveLecturer(ctx, acting.ID)
		if err != nil {
			return "", err
		}
		return profileName(l.Profile), nil
	case actor.RoleCoordinator:
		pc, err := s.directory.FindCoordinator(ctx, acting.ID)
		if err != nil {
			return "", err
		}
		if !pc.Profile.Active {
			return "", &bizerror.ForbiddenError{Reason: "coordinator is inactive"}
		}
		return profileName(pc.Profile), nil
	case actor.RoleManager:
		m, err := s.directory.FindManager(ctx, acting.ID)
		if err != nil {
			return "", err
		}
		if !m.Profile.Active {
			return "", &bizerror.ForbiddenError{Reason: "manager is inactive"}
		}
		return profileName(m.Profile), nil
	case actor.RolePayroll:
		return "payroll", nil
	default:
		return "", &bizerror.ForbiddenError{Reason: "unknown role " + string(acting.Role)}
	}
}

func (s *Service) findActiveLecturer(ctx context.Context, id types.ID) (*actor.Lecturer, error) {
	l, err := s.directory.FindLecturer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.Profile.Active {
		return nil, &bizerror.ForbiddenError{Reason: "lecturer is inactive"}
	}
	return l, nil
}

func (s *Service) newEvent(c *MonthlyClaim, category event.EventCategory,
	properties []event.UpdatedProperty, relations []event.UpdatedRelation,
	creatorID types.ID, creatorName string, now types.Timestamp) *event.EventRecord {
	return event.NewEventRecord(idgen.NextID(s.idWorker), SourceTypeClaim, c.ID, c.ClaimMonth, category,
		properties, relations, creatorID, creatorName, now)
}

func profileName(p actor.Profile) string {
	return actor.FullName(p.FirstName, p.LastName)
}

func findConflictingClaim(repo Repository, c *MonthlyClaim) (types.ID, error) {
	siblings, err := repo.FindClaimsOfMonth(c.LecturerID, c.ClaimMonth)
	if err != nil {
		return 0, err
	}
	for _, sibling := range siblings {
		if sibling.ID != c.ID && sibling.Status != StatusDraft && sibling.Status != StatusRejected {
			return sibling.ID, nil
		}
	}
	return 0, nil
}

func visibleTo(c *MonthlyClaim, acting actor.Acting) bool {
	if acting.Role == actor.RoleLecturer {
		return c.LecturerID == acting.ID
	}
	return c.Status != StatusDraft
}

func toEntry(creation *ItemCreation, lecturer *actor.Lecturer) ItemEntry {
	rate := lecturer.HourlyRate
	if creation.HourlyRate != nil {
		rate = *creation.HourlyRate
	}
	return ItemEntry{WorkDate: creation.WorkDate, Description: creation.Description,
		HoursWorked: creation.HoursWorked, HourlyRate: rate}
}

func checkWorkDate(c *MonthlyClaim, workDate types.Timestamp) error {
	if MonthOf(workDate) != c.ClaimMonth {
		return &bizerror.ValidationError{Field: "workDate", Reason: "must fall in claim month " + c.ClaimMonth}
	}
	return nil
}

func checkContractCovers(l *actor.Lecturer, month string) error {
	if !l.ContractStartDate.Time().IsZero() && month < MonthOf(l.ContractStartDate) {
		return &bizerror.ValidationError{Field: "claimMonth", Reason: "is before the contract start"}
	}
	if !l.ContractEndDate.Time().IsZero() && month > MonthOf(l.ContractEndDate) {
		return &bizerror.ValidationError{Field: "claimMonth", Reason: "is after the contract end"}
	}
	return nil
}

func totalsChanges(oldHours, oldAmount decimal.Decimal, c *MonthlyClaim) []event.UpdatedProperty {
	return []event.UpdatedProperty{
		event.PropertyChange("totalHours", oldHours.StringFixed(2), c.TotalHours.StringFixed(2)),
		event.PropertyChange("totalAmount", oldAmount.StringFixed(2), c.TotalAmount.StringFixed(2)),
	}
}

func logFailure(claimID types.ID, operation string, acting actor.Acting, err error) {
	var bizErr common.BizError
	entry := logrus.WithFields(logrus.Fields{"claimId": claimID, "event": operation, "actor": acting.ID, "role": acting.Role})
	if errors.As(err, &bizErr) {
		entry.Warn("claim operation refused: ", err)
		return
	}
	entry.Error("claim operation failed: ", err)
}
