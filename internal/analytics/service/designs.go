package service

import (
	"context"
	"sort"
	"time"

	"github.com/inkhaus/studio/internal/analytics/domain"
	"go.uber.org/zap"
)

// TopDesigns ranks gallery designs by weighted engagement over the range.
// Interactions are weighted heavier than views as a ranking policy.
func (s *Service) TopDesigns(ctx context.Context, r domain.DateRange, limit int) ([]domain.DesignScore, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}

	cfg := s.cfgHolder.Get()
	if limit <= 0 {
		limit = cfg.TopDesignsLimit
	}

	started := time.Now()
	views, err := s.repo.GalleryEvents(ctx, r, true)
	if err != nil {
		s.log.Error("top designs view fetch failed", zap.Error(err))
		return nil, err
	}
	interactions, err := s.repo.GalleryEvents(ctx, r, false)
	if err != nil {
		s.log.Error("top designs interaction fetch failed", zap.Error(err))
		return nil, err
	}

	scores := scoreDesigns(views, interactions, int64(cfg.InteractionWeight))
	if len(scores) > limit {
		scores = scores[:limit]
	}

	ids := make([]string, 0, len(scores))
	for _, score := range scores {
		ids = append(ids, score.DesignID)
	}
	designs, err := s.designsvc.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range scores {
		scores[i].Design = designs[scores[i].DesignID]
	}

	s.metrics.ObserveAggregation("top_designs", time.Since(started))
	return scores, nil
}

// scoreDesigns computes score = views + interactions*weight per design id,
// sorted descending. Designs seen only in interactions qualify with zero
// views.
func scoreDesigns(views, interactions []*domain.Event, weight int64) []domain.DesignScore {
	order := make([]string, 0)
	byID := make(map[string]*domain.DesignScore)

	record := func(event *domain.Event, view bool) {
		id := domain.MetadataString(event.Metadata, "design_id")
		if id == "" {
			return
		}
		score, ok := byID[id]
		if !ok {
			score = &domain.DesignScore{DesignID: id}
			byID[id] = score
			order = append(order, id)
		}
		if view {
			score.Views++
		} else {
			score.Interactions++
		}
	}

	for _, event := range views {
		record(event, true)
	}
	for _, event := range interactions {
		record(event, false)
	}

	scores := make([]domain.DesignScore, 0, len(order))
	for _, id := range order {
		score := byID[id]
		score.Score = score.Views + score.Interactions*weight
		scores = append(scores, *score)
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	return scores
}
