package indices

import (
	"claimflow/bizerror"
	"claimflow/client/es"
	"claimflow/domain/actor"
	"claimflow/domain/claim"
	"claimflow/event"
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ClaimIndexEventHandlerName = "claimIndexer"

	SyncBatchSize = 500
)

// Indexer keeps the claims index in line with the claim store.
type Indexer struct {
	store     claim.Store
	directory actor.Directory

	lock    sync.Mutex
	running bool

	// FullSyncFunc is what a scheduled sync run executes.
	FullSyncFunc func(ctx context.Context) error
}

func NewIndexer(store claim.Store, directory actor.Directory) *Indexer {
	x := &Indexer{store: store, directory: directory}
	x.FullSyncFunc = x.IndicesFullSync
	return x
}

// ScheduleNewSyncRun starts a full sync in background unless one is running already.
func (x *Indexer) ScheduleNewSyncRun(acting actor.Acting) (bool, error) {
	if acting.Role != actor.RoleManager {
		return false, &bizerror.ForbiddenError{Reason: "only managers can rebuild the claim index"}
	}

	x.lock.Lock()
	if x.running {
		x.lock.Unlock()
		return false, nil
	}
	x.running = true
	x.lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			x.lock.Lock()
			x.running = false
			x.lock.Unlock()
		}()
		if err := x.FullSyncFunc(context.Background()); err != nil {
			logrus.Errorf("indices fully sync: %v", err)
		}
	}()
	waitRunning.Wait()
	return true, nil
}

// IndicesFullSync indexes every stored claim, SyncBatchSize claims per unit of work.
// A failed batch is logged and skipped.
func (x *Indexer) IndicesFullSync(ctx context.Context) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	var summaries []claim.MonthlyClaim
	if err := x.store.InTransaction(ctx, func(repo claim.Repository) error {
		var err error
		summaries, err = repo.QueryClaims(claim.ClaimQuery{})
		return err
	}); err != nil {
		return err
	}

	for begin := 0; begin < len(summaries); begin += SyncBatchSize {
		end := begin + SyncBatchSize
		if end > len(summaries) {
			end = len(summaries)
		}
		var docs []ClaimDocument
		err := x.store.InTransaction(ctx, func(repo claim.Repository) error {
			docs = make([]ClaimDocument, 0, end-begin)
			for _, s := range summaries[begin:end] {
				c, err := repo.LoadClaim(s.ID, false)
				if err != nil {
					return err
				}
				docs = append(docs, BuildClaimDocument(ctx, c, x.directory))
			}
			return nil
		})
		if err != nil {
			logrus.Warnf("indices fully sync: error on load claims [%d, %d): %v", begin, end, err)
			continue
		}
		if err := IndexClaims(ctx, docs); err != nil {
			logrus.Warnf("indices fully sync: error on index claims [%d, %d): %v", begin, end, err)
		}
	}
	logrus.Infof("indices fully sync: %d claims visited", len(summaries))
	return nil
}

// IndexClaimEventHandle removes the document of a deleted claim and re-indexes the claim on any other event.
func (x *Indexer) IndexClaimEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != claim.SourceTypeClaim {
		return nil
	}
	ctx := context.Background()

	if e.EventCategory == event.EventCategoryDeleted {
		if err := es.DeleteDocumentByIdFunc(ctx, ClaimIndexName, e.SourceId); err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete claim index %s, %v", e.SourceId, err),
				HandlerIdentifier: ClaimIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: ClaimIndexEventHandlerName}
	}

	var c *claim.MonthlyClaim
	err := x.store.InTransaction(ctx, func(repo claim.Repository) error {
		var err error
		c, err = repo.LoadClaim(e.SourceId, false)
		return err
	})
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("load claim when index claim %s, %v", e.SourceId, err),
			HandlerIdentifier: ClaimIndexEventHandlerName,
		}
	}
	if err := IndexClaims(ctx, []ClaimDocument{BuildClaimDocument(ctx, c, x.directory)}); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index claim %s, %v", e.SourceId, err),
			HandlerIdentifier: ClaimIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: ClaimIndexEventHandlerName}
}
