package orders

import (
	"context"

	"postmarket-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleView is an order placed on one of the seller's listings.
type SaleView struct {
	OrderView
	BuyerUsername string `json:"buyer_username"`
}

// Sales is the seller-side ledger: every order on the seller's listings, newest first,
// and the summed amount.
type Sales struct {
	Orders []SaleView      `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

// ListSales returns orders on listings authored by sellerID.
func (s *Service) ListSales(ctx context.Context, sellerID uuid.UUID) (*Sales, error) {
	db := s.DB.WithContext(ctx)
	var rows []domain.Order
	err := db.Where("listing_id IN (?)", db.Model(&domain.Listing{}).Select("listing_id").Where("author_id = ?", sellerID)).
		Order(`"createdAt" DESC`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	views, err := withTitles(db, rows)
	if err != nil {
		return nil, err
	}

	buyerIDs := make([]uuid.UUID, 0, len(rows))
	for _, o := range rows {
		buyerIDs = append(buyerIDs, o.BuyerID)
	}
	names := make(map[uuid.UUID]string)
	if len(buyerIDs) > 0 {
		var users []domain.User
		if err := db.Select("user_id", "username").Where("user_id IN ?", buyerIDs).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.UserID] = u.Username
		}
	}

	out := &Sales{Orders: make([]SaleView, 0, len(views)), Total: decimal.Zero}
	for _, v := range views {
		out.Orders = append(out.Orders, SaleView{OrderView: v, BuyerUsername: names[v.BuyerID]})
		out.Total = out.Total.Add(v.Amount)
	}
	return out, nil
}
