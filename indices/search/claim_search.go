package search

import (
	"claimflow/bizerror"
	"claimflow/client/es"
	"claimflow/domain/actor"
	"claimflow/domain/claim"
	"claimflow/indices"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

var (
	SearchClaimsFunc = SearchClaims

	MaxSearchSize = 10000
)

type ClaimSearchQuery struct {
	claim.ClaimQuery

	LecturerName string `form:"lecturerName"`
}

// SearchClaims queries the claims index. Lecturers are confined to their own claims and
// drafts are never returned to other roles. Exact filters use the keyword sub-fields of the dynamic mapping.
func SearchClaims(ctx context.Context, q ClaimSearchQuery, acting actor.Acting) ([]indices.ClaimDocument, error) {
	filters := make([]es.H, 0, 5)

	switch acting.Role {
	case actor.RoleLecturer:
		if q.LecturerID != 0 && q.LecturerID != acting.ID {
			return nil, &bizerror.ForbiddenError{Reason: "lecturers can only query their own claims"}
		}
		filters = append(filters, es.H{"term": es.H{"lecturerId.keyword": acting.ID.String()}})
	case actor.RoleCoordinator, actor.RoleManager, actor.RolePayroll:
		filters = append(filters, es.H{"bool": es.H{"must_not": es.H{"term": es.H{"status.keyword": claim.StatusDraft}}}})
		if q.LecturerID != 0 {
			filters = append(filters, es.H{"term": es.H{"lecturerId.keyword": q.LecturerID.String()}})
		}
	default:
		return nil, &bizerror.ForbiddenError{Reason: "unknown role " + string(acting.Role)}
	}

	if q.ClaimMonth != "" {
		month, err := claim.ParseClaimMonth(q.ClaimMonth)
		if err != nil {
			return nil, err
		}
		filters = append(filters, es.H{"term": es.H{"claimMonth.keyword": month}})
	}
	if q.Status != "" {
		filters = append(filters, es.H{"term": es.H{"status.keyword": strings.ToUpper(q.Status)}})
	}
	if name := strings.TrimSpace(q.LecturerName); name != "" {
		filters = append(filters, es.H{"match": es.H{"lecturerName": es.H{"query": name, "operator": "AND"}}})
	}

	sorts := []es.H{{"claimMonth.keyword": es.H{"order": "desc"}}, {"createTime": es.H{"order": "desc"}}}
	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(ctx, indices.ClaimIndexName, es.H{"size": MaxSearchSize, "query": root, "sort": sorts})
	if err != nil {
		return nil, err
	}

	docs := make([]indices.ClaimDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := indices.ClaimDocument{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode claim document %s: %w", hit.Id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
