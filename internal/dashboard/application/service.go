package application

import (
	"context"
	"errors"

	dashboard "mellioncoin-cloud/internal/dashboard/domain"
	orders "mellioncoin-cloud/internal/orders/domain"
)

// Service derives dashboard rows and analytics from stored orders.
type Service struct {
	orders    orders.Repository
	analytics dashboard.AnalyticsSource
}

// NewService constructs a Service.
func NewService(orderRepo orders.Repository, analytics dashboard.AnalyticsSource) (*Service, error) {
	if orderRepo == nil {
		return nil, errors.New("dashboard service: nil order repository")
	}
	if analytics == nil {
		return nil, errors.New("dashboard service: nil analytics source")
	}
	return &Service{orders: orderRepo, analytics: analytics}, nil
}

// Rows returns one dashboard line per order, oldest first.
func (s *Service) Rows(ctx context.Context, username string, filter orders.Filter) ([]dashboard.Row, error) {
	list, err := s.orders.List(ctx, username, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]dashboard.Row, 0, len(list))
	for _, order := range list {
		rows = append(rows, RowFromOrder(order))
	}
	return rows, nil
}

// MonthlyRollups returns per-month aggregates for the last months.
func (s *Service) MonthlyRollups(ctx context.Context, username string, months int) ([]dashboard.MonthlyRollup, error) {
	if months <= 0 {
		months = 12
	}
	return s.analytics.MonthlyRollups(ctx, username, months)
}

// RowFromOrder maps a stored order onto a dashboard line.
func RowFromOrder(order *orders.Order) dashboard.Row {
	res := order.Result
	return dashboard.Row{
		Index:           order.Index,
		Date:            order.ComputedAt,
		CycleEnd:        order.CycleEndAt,
		Invested:        res.InvestedTotal,
		Interest:        res.TotalInterest,
		Commission:      res.TotalCommission,
		BonusCommission: res.Reinvest.BonusCommission,
		GlobalRevenue:   res.GlobalRevenue,
		Units:           res.TotalUnitsGlobal,
		Circulation:     res.Circulation,
		YieldPct:        res.YieldRatio * 100,
		Favorite:        order.Favorite,
	}
}
