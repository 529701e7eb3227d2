package service

import (
	"context"
	"sort"
	"time"

	"github.com/inkhaus/studio/internal/analytics/domain"
	"github.com/inkhaus/studio/internal/realtime"
	"go.uber.org/zap"
)

// Summary reduces all events in the range into the dashboard aggregate.
func (s *Service) Summary(ctx context.Context, r domain.DateRange) (*domain.Summary, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}

	started := time.Now()
	events, err := s.repo.EventsInRange(ctx, r)
	if err != nil {
		s.log.Error("summary aggregation failed", zap.Error(err))
		return nil, err
	}

	summary := reduceSummary(events, s.cfgHolder.Get().TopPagesLimit)
	s.metrics.ObserveAggregation("summary", time.Since(started))
	s.publishMetricsUpdate("summary", summary.TotalEvents)

	return summary, nil
}

// DailyTrend returns per-day event volume over the range.
func (s *Service) DailyTrend(ctx context.Context, r domain.DateRange) ([]domain.DailyCount, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}

	started := time.Now()
	counts, err := s.repo.DailyCounts(ctx, r)
	if err != nil {
		s.log.Error("daily trend aggregation failed", zap.Error(err))
		return nil, err
	}
	s.metrics.ObserveAggregation("trend", time.Since(started))
	return counts, nil
}

func reduceSummary(events []*domain.Event, topPagesLimit int) *domain.Summary {
	summary := &domain.Summary{
		TotalEvents:      int64(len(events)),
		EventsByCategory: make(map[string]int64),
		EventsByAction:   make(map[string]int64),
		TopPages:         []domain.PageCount{},
		DeviceBreakdown:  make(map[string]int64),
	}

	// Page grouping keeps first-seen order so ties keep it after the
	// stable sort below.
	pageOrder := make([]string, 0)
	pageCounts := make(map[string]int64)

	usersSeen := make(map[string]bool)
	usersConverted := make(map[string]bool)

	for _, event := range events {
		summary.EventsByCategory[string(event.Category)]++
		summary.EventsByAction[event.Action]++

		if event.Category == domain.CategoryPageView && event.Path != "" {
			if _, seen := pageCounts[event.Path]; !seen {
				pageOrder = append(pageOrder, event.Path)
			}
			pageCounts[event.Path]++
		}

		if event.DeviceType != "" {
			summary.DeviceBreakdown[event.DeviceType]++
		}

		if event.UserID != "" {
			usersSeen[event.UserID] = true
			if event.Category == domain.CategoryConversion {
				usersConverted[event.UserID] = true
			}
		}
	}

	pages := make([]domain.PageCount, 0, len(pageOrder))
	for _, path := range pageOrder {
		pages = append(pages, domain.PageCount{Path: path, Count: pageCounts[path]})
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Count > pages[j].Count })
	if len(pages) > topPagesLimit {
		pages = pages[:topPagesLimit]
	}
	summary.TopPages = pages

	if len(usersSeen) > 0 {
		summary.ConversionRate = float64(len(usersConverted)) / float64(len(usersSeen)) * 100
	}

	sessionCount, avgDuration, bounceRate := reduceSessions(events)
	summary.SessionCount = sessionCount
	summary.AverageSessionDuration = avgDuration
	summary.BounceRate = bounceRate

	return summary
}

type sessionAgg struct {
	first     time.Time
	last      time.Time
	events    int
	pageViews int
}

// reduceSessions groups events by session id; events without a session are
// excluded. Duration is computed only for sessions with at least two events;
// the average covers those sessions. A session bounces when it has exactly
// one page view event.
func reduceSessions(events []*domain.Event) (count int64, avgDuration, bounceRate float64) {
	sessions := make(map[string]*sessionAgg)

	for _, event := range events {
		if event.SessionID == "" {
			continue
		}
		agg, ok := sessions[event.SessionID]
		if !ok {
			agg = &sessionAgg{first: event.Timestamp, last: event.Timestamp}
			sessions[event.SessionID] = agg
		}
		if event.Timestamp.Before(agg.first) {
			agg.first = event.Timestamp
		}
		if event.Timestamp.After(agg.last) {
			agg.last = event.Timestamp
		}
		agg.events++
		if event.Category == domain.CategoryPageView {
			agg.pageViews++
		}
	}

	if len(sessions) == 0 {
		return 0, 0, 0
	}

	var durationSum float64
	var durationN int
	var bounces int
	for _, agg := range sessions {
		if agg.events >= 2 {
			durationSum += agg.last.Sub(agg.first).Seconds()
			durationN++
		}
		if agg.pageViews == 1 {
			bounces++
		}
	}

	if durationN > 0 {
		avgDuration = durationSum / float64(durationN)
	}
	bounceRate = float64(bounces) / float64(len(sessions)) * 100

	return int64(len(sessions)), avgDuration, bounceRate
}

func (s *Service) publishMetricsUpdate(kind string, totalEvents int64) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(realtime.TopicMetrics, realtime.Event{
		Type: realtime.EventMetricsUpdate,
		Payload: map[string]any{
			"kind":         kind,
			"total_events": totalEvents,
		},
	})
	s.metrics.RecordRealtimePublish(realtime.TopicMetrics)
}
