package claim

import (
	"claimflow/bizerror"
	"claimflow/event"
	"claimflow/persistence"
	"context"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	pkgerrors "github.com/pkg/errors"
)

type GormStore struct {
	dataSource *persistence.DataSourceManager
}

func NewGormStore(ds *persistence.DataSourceManager) *GormStore {
	return &GormStore{dataSource: ds}
}

func (s *GormStore) InTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return s.dataSource.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{tx: tx})
	})
}

const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// AutoMigrate creates or alters the claim tables, then fills open_month of rows written before the column existed.
func (s *GormStore) AutoMigrate() error {
	db := s.dataSource.GormDB(context.Background())
	if err := db.AutoMigrate(&MonthlyClaim{}, &ClaimItem{}, &event.EventRecord{}).Error; err != nil {
		return err
	}
	return db.Model(&MonthlyClaim{}).Where("open_month IS NULL AND status <> ?", StatusRejected).
		UpdateColumn("open_month", gorm.Expr("claim_month")).Error
}

func openMonthOf(c *MonthlyClaim) *string {
	if c.Status == StatusRejected {
		return nil
	}
	month := c.ClaimMonth
	return &month
}

// storageError turns lock conflicts and unique key violations on claim rows into typed errors.
func (r *gormRepository) storageError(err error, c *MonthlyClaim, action string) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDuplicateEntry:
			dup := &bizerror.DuplicateClaimError{LecturerID: c.LecturerID, ClaimMonth: c.ClaimMonth}
			existing := MonthlyClaim{}
			if r.tx.Where("lecturer_id = ? AND open_month = ?", c.LecturerID, c.ClaimMonth).
				First(&existing).Error == nil {
				dup.ExistingID = existing.ID
			}
			return dup
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return &bizerror.ConcurrentModificationError{ClaimID: c.ID}
		}
	}
	return pkgerrors.Wrapf(err, "%s claim %s", action, c.ID)
}

type gormRepository struct {
	tx *gorm.DB
}

func (r *gormRepository) LoadClaim(id types.ID, forUpdate bool) (*MonthlyClaim, error) {
	q := r.tx
	if forUpdate {
		q = q.Set("gorm:query_option", "FOR UPDATE")
	}
	c := MonthlyClaim{}
	if err := q.Where(&MonthlyClaim{ID: id}).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &bizerror.NotFoundError{Kind: "claim", ID: id}
		}
		return nil, pkgerrors.Wrapf(err, "load claim %s", id)
	}
	var items []ClaimItem
	if err := r.tx.Where(&ClaimItem{ClaimID: id}).Order("work_date ASC, id ASC").Find(&items).Error; err != nil {
		return nil, pkgerrors.Wrapf(err, "load items of claim %s", id)
	}
	c.Items = items
	return &c, nil
}

// FindClaimsOfMonth locks the (lecturer, month) index range so concurrent creations for the
// same month are serialized.
func (r *gormRepository) FindClaimsOfMonth(lecturerID types.ID, claimMonth string) ([]MonthlyClaim, error) {
	var claims []MonthlyClaim
	if err := r.tx.Set("gorm:query_option", "FOR UPDATE").
		Where("lecturer_id = ? AND claim_month = ?", lecturerID, claimMonth).
		Order("id ASC").Find(&claims).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && (mysqlErr.Number == mysqlErrDeadlock || mysqlErr.Number == mysqlErrLockWaitTimeout) {
			return nil, &bizerror.ConcurrentModificationError{}
		}
		return nil, pkgerrors.Wrapf(err, "find claims of lecturer %s in %s", lecturerID, claimMonth)
	}
	return claims, nil
}

func (r *gormRepository) QueryClaims(q ClaimQuery) ([]MonthlyClaim, error) {
	db := r.tx
	if q.LecturerID != 0 {
		db = db.Where("lecturer_id = ?", q.LecturerID)
	}
	if q.ClaimMonth != "" {
		db = db.Where("claim_month = ?", q.ClaimMonth)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	var claims []MonthlyClaim
	if err := db.Order("claim_month DESC, id DESC").Find(&claims).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "query claims")
	}
	return claims, nil
}

func (r *gormRepository) CreateClaim(c *MonthlyClaim) error {
	c.OpenMonth = openMonthOf(c)
	if err := r.tx.Create(c).Error; err != nil {
		return r.storageError(err, c, "create")
	}
	for idx := range c.Items {
		if err := r.InsertItem(&c.Items[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (r *gormRepository) SaveClaim(c *MonthlyClaim) error {
	db := r.tx.Model(&MonthlyClaim{}).Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]interface{}{
			"status":                    c.Status,
			"open_month":                openMonthOf(c),
			"submission_date":           c.SubmissionDate,
			"coordinator_id":            c.CoordinatorID,
			"coordinator_review_date":   c.CoordinatorReviewDate,
			"coordinator_approval_date": c.CoordinatorApprovalDate,
			"coordinator_comments":      c.CoordinatorComments,
			"manager_id":                c.ManagerID,
			"manager_review_date":       c.ManagerReviewDate,
			"manager_approval_date":     c.ManagerApprovalDate,
			"manager_comments":          c.ManagerComments,
			"payment_date":              c.PaymentDate,
			"total_hours":               c.TotalHours,
			"total_amount":              c.TotalAmount,
			"version":                   c.Version + 1,
		})
	if db.Error != nil {
		return r.storageError(db.Error, c, "save")
	}
	if db.RowsAffected != 1 {
		return &bizerror.ConcurrentModificationError{ClaimID: c.ID}
	}
	c.OpenMonth = openMonthOf(c)
	c.Version++
	return nil
}

func (r *gormRepository) DeleteClaim(c *MonthlyClaim) error {
	if err := r.tx.Where("claim_id = ?", c.ID).Delete(&ClaimItem{}).Error; err != nil {
		return pkgerrors.Wrapf(err, "delete items of claim %s", c.ID)
	}
	db := r.tx.Where("id = ? AND version = ?", c.ID, c.Version).Delete(&MonthlyClaim{})
	if db.Error != nil {
		return pkgerrors.Wrapf(db.Error, "delete claim %s", c.ID)
	}
	if db.RowsAffected != 1 {
		return &bizerror.ConcurrentModificationError{ClaimID: c.ID}
	}
	return nil
}

func (r *gormRepository) InsertItem(item *ClaimItem) error {
	if err := r.tx.Create(item).Error; err != nil {
		return pkgerrors.Wrapf(err, "create claim item %s", item.ID)
	}
	return nil
}

func (r *gormRepository) DeleteItem(item *ClaimItem) error {
	db := r.tx.Where("id = ? AND claim_id = ?", item.ID, item.ClaimID).Delete(&ClaimItem{})
	if db.Error != nil {
		return pkgerrors.Wrapf(db.Error, "delete claim item %s", item.ID)
	}
	if db.RowsAffected != 1 {
		return &bizerror.ConcurrentModificationError{ClaimID: item.ClaimID}
	}
	return nil
}

func (r *gormRepository) AppendEvent(record *event.EventRecord) error {
	if err := event.EventPersistCreateFunc(record, r.tx); err != nil {
		return pkgerrors.Wrapf(err, "append event of %s %s", record.SourceType, record.SourceId)
	}
	return nil
}
