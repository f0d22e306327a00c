package memberships

import (
	"github.com/sarisari/backoffice/pkg/db/models"
)

type membershipWithStoreRow struct {
	models.StoreMembership
	StoreName string `gorm:"column:store_name"`
}

func membershipWithStoreFromRow(row membershipWithStoreRow) MembershipWithStore {
	return MembershipWithStore{
		MembershipID: row.ID,
		StoreID:      row.StoreID,
		UserID:       row.UserID,
		StoreName:    row.StoreName,
		Role:         row.Role,
		Status:       row.Status,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func membershipRowsToDTO(rows []membershipWithStoreRow) []MembershipWithStore {
	out := make([]MembershipWithStore, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipWithStoreFromRow(row))
	}
	return out
}
