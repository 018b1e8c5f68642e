package servehttp_test

import (
	"claimflow/domain/actor"
	"claimflow/domain/claim"
	"context"
	"errors"

	"github.com/fundwit/go-commons/types"
)

var errNotMocked = errors.New("not mocked")

type lifecycleMock struct {
	CreateDraftFunc       func(c *claim.ClaimCreation, acting actor.Acting) (*claim.MonthlyClaim, error)
	AddItemFunc           func(claimID types.ID, entry *claim.ItemCreation, acting actor.Acting) (*claim.MonthlyClaim, error)
	RemoveItemFunc        func(claimID, itemID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error)
	DeleteDraftFunc       func(claimID types.ID, acting actor.Acting) error
	SubmitFunc            func(claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error)
	CoordinatorDecideFunc func(claimID types.ID, d *claim.Decision, acting actor.Acting) (*claim.MonthlyClaim, error)
	ManagerDecideFunc     func(claimID types.ID, d *claim.Decision, acting actor.Acting) (*claim.MonthlyClaim, error)
	MarkPaidFunc          func(claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error)
	DetailClaimFunc       func(claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error)
	QueryClaimsFunc       func(q *claim.ClaimQuery, acting actor.Acting) ([]claim.MonthlyClaim, error)
}

func (m *lifecycleMock) CreateDraft(ctx context.Context, c *claim.ClaimCreation, acting actor.Acting) (*claim.MonthlyClaim, error) {
	if m.CreateDraftFunc == nil {
		return nil, errNotMocked
	}
	return m.CreateDraftFunc(c, acting)
}
func (m *lifecycleMock) AddItem(ctx context.Context, claimID types.ID, entry *claim.ItemCreation, acting actor.Acting) (*claim.MonthlyClaim, error) {
	if m.AddItemFunc == nil {
		return nil, errNotMocked
	}
	return m.AddItemFunc(claimID, entry, acting)
}
func (m *lifecycleMock) RemoveItem(ctx context.Context, claimID, itemID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
	if m.RemoveItemFunc == nil {
		return nil, errNotMocked
	}
	return m.RemoveItemFunc(claimID, itemID, acting)
}
func (m *lifecycleMock) DeleteDraft(ctx context.Context, claimID types.ID, acting actor.Acting) error {
	if m.DeleteDraftFunc == nil {
		return errNotMocked
	}
	return m.DeleteDraftFunc(claimID, acting)
}
func (m *lifecycleMock) Submit(ctx context.Context, claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
	if m.SubmitFunc == nil {
		return nil, errNotMocked
	}
	return m.SubmitFunc(claimID, acting)
}
func (m *lifecycleMock) CoordinatorDecide(ctx context.Context, claimID types.ID, d *claim.Decision, acting actor.Acting) (*claim.MonthlyClaim, error) {
	if m.CoordinatorDecideFunc == nil {
		return nil, errNotMocked
	}
	return m.CoordinatorDecideFunc(claimID, d, acting)
}
func (m *lifecycleMock) ManagerDecide(ctx context.Context, claimID types.ID, d *claim.Decision, acting actor.Acting) (*claim.MonthlyClaim, error) {
	if m.ManagerDecideFunc == nil {
		return nil, errNotMocked
	}
	return m.ManagerDecideFunc(claimID, d, acting)
}
func (m *lifecycleMock) MarkPaid(ctx context.Context, claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
	if m.MarkPaidFunc == nil {
		return nil, errNotMocked
	}
	return m.MarkPaidFunc(claimID, acting)
}
func (m *lifecycleMock) DetailClaim(ctx context.Context, claimID types.ID, acting actor.Acting) (*claim.MonthlyClaim, error) {
	if m.DetailClaimFunc == nil {
		return nil, errNotMocked
	}
	return m.DetailClaimFunc(claimID, acting)
}
func (m *lifecycleMock) QueryClaims(ctx context.Context, q *claim.ClaimQuery, acting actor.Acting) ([]claim.MonthlyClaim, error) {
	if m.QueryClaimsFunc == nil {
		return nil, errNotMocked
	}
	return m.QueryClaimsFunc(q, acting)
}
