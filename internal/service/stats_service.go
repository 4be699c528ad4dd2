package service

import (
	"context"

	"deliverytrack/internal/model"
	"deliverytrack/internal/repository"
)

// Stats is the admin dashboard aggregate. OrdersByStage always carries all
// seven stage keys; AvgDeliveryTime is nil until at least one delivered
// order has both boundary history entries.
type Stats struct {
	TotalOrders     int64         `json:"totalOrders"`
	OrdersByStage   map[int]int64 `json:"ordersByStage"`
	AvgDeliveryTime *float64      `json:"avgDeliveryTime"`
}

// StageTime is one adjacent pair in an order's history with the elapsed time
// between the two entries.
type StageTime struct {
	From       string `json:"from"`
	To         string `json:"to"`
	DurationMs int64  `json:"durationMs"`
}

type StatsService interface {
	Stats(ctx context.Context) (*Stats, error)
}

type statsService struct {
	orders repository.OrderRepository
}

func NewStatsService(orders repository.OrderRepository) StatsService {
	return &statsService{orders: orders}
}

func (s *statsService) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.orders.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.orders.CountByStage(ctx)
	if err != nil {
		return nil, err
	}
	byStage := make(map[int]int64, 7)
	for stage := 1; stage <= 7; stage++ {
		byStage[stage] = 0
	}
	for _, row := range rows {
		byStage[row.Stage] = row.Count
	}

	delivered, err := s.orders.ListDelivered(ctx)
	if err != nil {
		return nil, err
	}
	var totalMs int64
	var count int64
	for i := range delivered {
		placed := findEntry(delivered[i].History, model.StageName(1))
		done := findEntry(delivered[i].History, model.StageName(7))
		if placed == nil || done == nil {
			// malformed history, leave it out of the average entirely
			continue
		}
		totalMs += done.Timestamp.Sub(placed.Timestamp).Milliseconds()
		count++
	}
	var avg *float64
	if count > 0 {
		v := float64(totalMs) / float64(count)
		avg = &v
	}

	return &Stats{TotalOrders: total, OrdersByStage: byStage, AvgDeliveryTime: avg}, nil
}

// StageTimes expands an order's history into the per-stage duration
// breakdown shown on the admin detail view.
func StageTimes(history []model.HistoryEntry) []StageTime {
	times := make([]StageTime, 0, len(history))
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		times = append(times, StageTime{
			From:       prev.Stage,
			To:         cur.Stage,
			DurationMs: cur.Timestamp.Sub(prev.Timestamp).Milliseconds(),
		})
	}
	return times
}

func findEntry(history []model.HistoryEntry, stage string) *model.HistoryEntry {
	for i := range history {
		if history[i].Stage == stage {
			return &history[i]
		}
	}
	return nil
}
