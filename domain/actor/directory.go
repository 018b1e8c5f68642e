package actor

import (
	"claimflow/bizerror"
	"claimflow/persistence"
	"context"
	"errors"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

// Directory resolves actors by id. A missing actor yields *bizerror.NotFoundError.
type Directory interface {
	FindLecturer(ctx context.Context, id types.ID) (*Lecturer, error)
	FindCoordinator(ctx context.Context, id types.ID) (*ProgrammeCoordinator, error)
	FindManager(ctx context.Context, id types.ID) (*AcademicManager, error)
}

type GormDirectory struct {
	dataSource *persistence.DataSourceManager
}

func NewGormDirectory(ds *persistence.DataSourceManager) *GormDirectory {
	return &GormDirectory{dataSource: ds}
}

// AutoMigrate creates or alters the actor tables.
func (d *GormDirectory) AutoMigrate() error {
	return d.dataSource.GormDB(context.Background()).
		AutoMigrate(&Lecturer{}, &ProgrammeCoordinator{}, &AcademicManager{}).Error
}

func (d *GormDirectory) FindLecturer(ctx context.Context, id types.ID) (*Lecturer, error) {
	r := Lecturer{}
	if err := d.dataSource.GormDB(ctx).Where(&Lecturer{ID: id}).First(&r).Error; err != nil {
		return nil, translateNotFound(err, "lecturer", id)
	}
	return &r, nil
}

func (d *GormDirectory) FindCoordinator(ctx context.Context, id types.ID) (*ProgrammeCoordinator, error) {
	r := ProgrammeCoordinator{}
	if err := d.dataSource.GormDB(ctx).Where(&ProgrammeCoordinator{ID: id}).First(&r).Error; err != nil {
		return nil, translateNotFound(err, "coordinator", id)
	}
	return &r, nil
}

func (d *GormDirectory) FindManager(ctx context.Context, id types.ID) (*AcademicManager, error) {
	r := AcademicManager{}
	if err := d.dataSource.GormDB(ctx).Where(&AcademicManager{ID: id}).First(&r).Error; err != nil {
		return nil, translateNotFound(err, "manager", id)
	}
	return &r, nil
}

func translateNotFound(err error, kind string, id types.ID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &bizerror.NotFoundError{Kind: kind, ID: id}
	}
	return err
}

// CachedDirectory keeps resolved actors for a while, misses and errors are not cached.
type CachedDirectory struct {
	delegate Directory
	cache    *cache.Cache
}

func NewCachedDirectory(delegate Directory, expiration time.Duration) *CachedDirectory {
	return &CachedDirectory{delegate: delegate, cache: cache.New(expiration, expiration*2)}
}

func (d *CachedDirectory) FindLecturer(ctx context.Context, id types.ID) (*Lecturer, error) {
	key := "lecturer:" + id.String()
	if v, found := d.cache.Get(key); found {
		r := v.(Lecturer)
		return &r, nil
	}
	r, err := d.delegate.FindLecturer(ctx, id)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, *r, cache.DefaultExpiration)
	return r, nil
}

func (d *CachedDirectory) FindCoordinator(ctx context.Context, id types.ID) (*ProgrammeCoordinator, error) {
	key := "coordinator:" + id.String()
	if v, found := d.cache.Get(key); found {
		r := v.(ProgrammeCoordinator)
		return &r, nil
	}
	r, err := d.delegate.FindCoordinator(ctx, id)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, *r, cache.DefaultExpiration)
	return r, nil
}

func (d *CachedDirectory) FindManager(ctx context.Context, id types.ID) (*AcademicManager, error) {
	key := "manager:" + id.String()
	if v, found := d.cache.Get(key); found {
		r := v.(AcademicManager)
		return &r, nil
	}
	r, err := d.delegate.FindManager(ctx, id)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, *r, cache.DefaultExpiration)
	return r, nil
}

// Evict drops every cached actor.
func (d *CachedDirectory) Evict() {
	d.cache.Flush()
}
