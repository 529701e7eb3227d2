package service

import (
	"context"
	"time"

	"github.com/inkhaus/studio/internal/analytics/domain"
	"go.uber.org/zap"
)

// BookingFunnel aggregates the fixed booking funnel over the range. Step
// counts are global, not per-session; only step timings are session-scoped.
func (s *Service) BookingFunnel(ctx context.Context, r domain.DateRange) (*domain.Funnel, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}

	started := time.Now()
	events, err := s.repo.FunnelEvents(ctx, r)
	if err != nil {
		s.log.Error("funnel aggregation failed", zap.Error(err))
		return nil, err
	}

	funnel := reduceFunnel(events)
	s.metrics.ObserveAggregation("funnel", time.Since(started))
	return funnel, nil
}

func reduceFunnel(events []*domain.Event) *domain.Funnel {
	counts := make(map[string]int64, len(domain.FunnelSteps))
	// step -> session -> earliest timestamp at that step
	stepSessions := make(map[string]map[string]time.Time)

	for _, event := range events {
		counts[event.Action]++

		if event.SessionID == "" {
			continue
		}
		sessions, ok := stepSessions[event.Action]
		if !ok {
			sessions = make(map[string]time.Time)
			stepSessions[event.Action] = sessions
		}
		if at, seen := sessions[event.SessionID]; !seen || event.Timestamp.Before(at) {
			sessions[event.SessionID] = event.Timestamp
		}
	}

	funnel := &domain.Funnel{
		Steps:           make([]domain.FunnelStepCount, 0, len(domain.FunnelSteps)),
		ConversionRates: make(map[string]float64),
		StepTimings:     make(map[string]float64),
	}
	for _, step := range domain.FunnelSteps {
		funnel.Steps = append(funnel.Steps, domain.FunnelStepCount{Step: step, Count: counts[step]})
	}

	// The pair chain runs start through complete; abandon is terminal and
	// has no outgoing pair.
	chain := domain.FunnelSteps[:len(domain.FunnelSteps)-1]
	for i := 0; i+1 < len(chain); i++ {
		stepA, stepB := chain[i], chain[i+1]
		key := stepA + "_to_" + stepB

		if counts[stepA] > 0 {
			funnel.ConversionRates[key] = float64(counts[stepB]) / float64(counts[stepA]) * 100
		} else {
			funnel.ConversionRates[key] = 0
		}

		// Timing averages only over sessions that recorded both steps;
		// sessions missing either endpoint are excluded, not zeroed.
		var sum float64
		var n int
		for sessionID, atA := range stepSessions[stepA] {
			atB, ok := stepSessions[stepB][sessionID]
			if !ok {
				continue
			}
			sum += atB.Sub(atA).Seconds()
			n++
		}
		if n > 0 {
			funnel.StepTimings[key] = sum / float64(n)
		}
	}

	if start := counts[domain.FunnelStepStart]; start > 0 {
		funnel.CompletionRate = float64(counts[domain.FunnelStepComplete]) / float64(start) * 100
		funnel.AbandonmentRate = float64(counts[domain.FunnelStepAbandon]) / float64(start) * 100
	}

	return funnel
}
