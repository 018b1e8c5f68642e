package claim

import (
	"claimflow/event"
	"context"

	"github.com/fundwit/go-commons/types"
)

// Store runs a unit of work atomically. Any error returned by fn rolls back every change made through repo.
type Store interface {
	InTransaction(ctx context.Context, fn func(repo Repository) error) error
}

// Repository is the view of claim storage inside one unit of work.
type Repository interface {
	// LoadClaim returns the claim with its items ordered by work date. forUpdate locks the claim
	// row until the unit of work ends.
	LoadClaim(id types.ID, forUpdate bool) (*MonthlyClaim, error)
	// FindClaimsOfMonth returns the claims of a lecturer for a month, items are not loaded.
	FindClaimsOfMonth(lecturerID types.ID, claimMonth string) ([]MonthlyClaim, error)
	QueryClaims(q ClaimQuery) ([]MonthlyClaim, error)

	CreateClaim(c *MonthlyClaim) error
	// SaveClaim writes the claim columns when the stored version still equals c.Version,
	// then increments c.Version. Items are not written.
	SaveClaim(c *MonthlyClaim) error
	DeleteClaim(c *MonthlyClaim) error

	InsertItem(item *ClaimItem) error
	DeleteItem(item *ClaimItem) error

	AppendEvent(record *event.EventRecord) error
}
