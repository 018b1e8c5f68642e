package indices

import (
	"claimflow/client/es"
	"claimflow/domain/actor"
	"claimflow/domain/claim"
	"context"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ClaimIndexName = "claims"
)

// ClaimDocument is the searchable form of a claim, with the derived display fields resolved.
type ClaimDocument struct {
	claim.MonthlyClaim

	DisplayMonth string `json:"displayMonth"`
	LecturerName string `json:"lecturerName"`
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

// BuildClaimDocument resolves the lecturer name through directory. A failed lookup leaves the name empty.
func BuildClaimDocument(ctx context.Context, c *claim.MonthlyClaim, directory actor.Directory) ClaimDocument {
	doc := ClaimDocument{MonthlyClaim: *c, DisplayMonth: claim.DisplayMonth(c.ClaimMonth)}
	if doc.Items == nil {
		doc.Items = []claim.ClaimItem{}
	}
	lecturer, err := directory.FindLecturer(ctx, c.LecturerID)
	if err != nil {
		logrus.Warnf("resolve lecturer %s of claim %s: %v", c.LecturerID, c.ID, err)
		return doc
	}
	doc.LecturerName = actor.FullName(lecturer.FirstName, lecturer.LastName)
	return doc
}

func IndexClaims(ctx context.Context, docs []ClaimDocument) error {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(ctx, ClaimIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index claim %s %s: %v", doc.ID, doc.ClaimMonth, err)
		} else {
			logrus.Infof("index claim %s %s successfully", doc.ID, doc.ClaimMonth)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
