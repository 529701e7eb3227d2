package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/inkhaus/studio/internal/analytics/domain"
	analyticsrepo "github.com/inkhaus/studio/internal/analytics/repository"
	"github.com/inkhaus/studio/internal/clock"
	"github.com/inkhaus/studio/internal/config"
	designdomain "github.com/inkhaus/studio/internal/design/domain"
	designservice "github.com/inkhaus/studio/internal/design/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var baseTime = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Event{}, &designdomain.Design{}))
	return db
}

func setupService(t *testing.T, cfg config.AnalyticsConfig) (domain.Service, designdomain.Service, *clock.FakeClock) {
	t.Helper()
	db := setupDB(t)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(baseTime)

	designSvc := designservice.New(designservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})

	svc := New(ServiceParam{
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fc,
		CfgHolder: config.NewStaticAnalyticsConfigHolder(cfg),
		Repo:      analyticsrepo.Provide(db),
		DesignSvc: designSvc,
	})
	return svc, designSvc, fc
}

type eventSpec struct {
	at       time.Duration
	user     string
	session  string
	category domain.EventCategory
	action   string
	path     string
	device   string
	designID string
}

func ingest(t *testing.T, svc domain.Service, specs []eventSpec) {
	t.Helper()
	for _, spec := range specs {
		req := domain.IngestEventRequest{
			Timestamp:  baseTime.Add(spec.at),
			UserID:     spec.user,
			SessionID:  spec.session,
			Category:   spec.category,
			Action:     spec.action,
			Path:       spec.path,
			DeviceType: spec.device,
		}
		if spec.designID != "" {
			id := spec.designID
			req.Gallery = &domain.GalleryMetadata{DesignID: &id}
		}
		_, err := svc.Ingest(context.Background(), req)
		require.NoError(t, err)
	}
}

func TestIngestValidation(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	_, err := svc.Ingest(context.Background(), domain.IngestEventRequest{
		Category: "bogus",
		Action:   "click",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	_, err = svc.Ingest(context.Background(), domain.IngestEventRequest{
		Category: domain.CategoryPageView,
		Action:   "   ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestIngestDefaultsTimestampAndStoresMetadata(t *testing.T) {
	svc, _, fc := setupService(t, config.AnalyticsConfig{})

	designID := "d-42"
	event, err := svc.Ingest(context.Background(), domain.IngestEventRequest{
		Category: domain.CategoryGallery,
		Action:   "view",
		Gallery:  &domain.GalleryMetadata{DesignID: &designID},
	})
	require.NoError(t, err)

	assert.Equal(t, fc.Now(), event.Timestamp.UTC())
	assert.Equal(t, "d-42", domain.MetadataString(event.Metadata, "design_id"))
	assert.NotZero(t, event.ID)
}

func TestQueryPagination(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	specs := make([]eventSpec, 0, 5)
	for i := 0; i < 5; i++ {
		specs = append(specs, eventSpec{
			at:       time.Duration(i) * time.Minute,
			category: domain.CategoryPageView,
			action:   "view",
			path:     "/home",
		})
	}
	ingest(t, svc, specs)

	req := domain.QueryEventsRequest{SortDir: "asc"}
	req.Page = 2
	req.Limit = 2

	resp, err := svc.Query(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, resp.Events, 2)
	assert.Equal(t, int64(5), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 3, resp.Pagination.PageCount)
}

func TestQueryFiltersByCategoryAndRange(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	ingest(t, svc, []eventSpec{
		{at: 0, category: domain.CategoryPageView, action: "view", path: "/home"},
		{at: time.Hour, category: domain.CategoryInteraction, action: "click"},
		{at: 2 * time.Hour, category: domain.CategoryPageView, action: "view", path: "/gallery"},
	})

	start := baseTime.Add(30 * time.Minute)
	req := domain.QueryEventsRequest{
		StartDate:  &start,
		Categories: []domain.EventCategory{domain.CategoryPageView},
	}

	resp, err := svc.Query(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Events, 1)
	assert.Equal(t, "/gallery", resp.Events[0].Path)
}

func TestQueryRejectsInvertedRange(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	start := baseTime.Add(time.Hour)
	end := baseTime
	_, err := svc.Query(context.Background(), domain.QueryEventsRequest{
		StartDate: &start,
		EndDate:   &end,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestSummaryEmptyRange(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	summary, err := svc.Summary(context.Background(), domain.DateRange{})
	require.NoError(t, err)

	assert.Zero(t, summary.TotalEvents)
	assert.Zero(t, summary.ConversionRate)
	assert.Zero(t, summary.BounceRate)
	assert.Zero(t, summary.AverageSessionDuration)
	assert.Empty(t, summary.TopPages)
}

func TestSummaryAggregates(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	ingest(t, svc, []eventSpec{
		// Session s1, user u1: two page views 60s apart, then converts.
		{at: 0, user: "u1", session: "s1", category: domain.CategoryPageView, action: "view", path: "/gallery", device: "mobile"},
		{at: 60 * time.Second, user: "u1", session: "s1", category: domain.CategoryPageView, action: "view", path: "/contact", device: "mobile"},
		{at: 90 * time.Second, user: "u1", session: "s1", category: domain.CategoryConversion, action: "booking_completed", device: "mobile"},
		// Session s2, user u2: single page view, a bounce.
		{at: 0, user: "u2", session: "s2", category: domain.CategoryPageView, action: "view", path: "/gallery", device: "desktop"},
		// Session s3, user u3: gallery browsing, no page view, no conversion.
		{at: 0, user: "u3", session: "s3", category: domain.CategoryGallery, action: "view", device: "desktop", designID: "d-1"},
		{at: 30 * time.Second, user: "u3", session: "s3", category: domain.CategoryGallery, action: "zoom", device: "desktop", designID: "d-1"},
	})

	summary, err := svc.Summary(context.Background(), domain.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, int64(6), summary.TotalEvents)
	assert.Equal(t, int64(3), summary.EventsByCategory[string(domain.CategoryPageView)])
	assert.Equal(t, int64(2), summary.DeviceBreakdown["mobile"])
	assert.Equal(t, int64(4), summary.DeviceBreakdown["desktop"])

	// One converting user out of three unique users.
	assert.InDelta(t, 100.0/3.0, summary.ConversionRate, 1e-9)

	// /gallery appears twice, /contact once; /gallery was also seen first.
	require.Len(t, summary.TopPages, 2)
	assert.Equal(t, "/gallery", summary.TopPages[0].Path)
	assert.Equal(t, int64(2), summary.TopPages[0].Count)
	assert.Equal(t, "/contact", summary.TopPages[1].Path)

	assert.Equal(t, int64(3), summary.SessionCount)

	// Sessions with >= 2 events: s1 spans 90s, s3 spans 30s.
	assert.InDelta(t, 60.0, summary.AverageSessionDuration, 1e-9)

	// Only s2 has exactly one page view.
	assert.InDelta(t, 100.0/3.0, summary.BounceRate, 1e-9)
}

func TestSummaryTopPagesTieKeepsFirstSeenOrder(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	ingest(t, svc, []eventSpec{
		{at: 0, category: domain.CategoryPageView, action: "view", path: "/a"},
		{at: time.Second, category: domain.CategoryPageView, action: "view", path: "/b"},
		{at: 2 * time.Second, category: domain.CategoryPageView, action: "view", path: "/b"},
		{at: 3 * time.Second, category: domain.CategoryPageView, action: "view", path: "/a"},
	})

	summary, err := svc.Summary(context.Background(), domain.DateRange{})
	require.NoError(t, err)

	require.Len(t, summary.TopPages, 2)
	assert.Equal(t, "/a", summary.TopPages[0].Path)
	assert.Equal(t, "/b", summary.TopPages[1].Path)
}

func TestTopDesignsScoring(t *testing.T) {
	svc, designSvc, _ := setupService(t, config.AnalyticsConfig{InteractionWeight: 2})

	created, err := designSvc.Create(context.Background(), designdomain.CreateDesignRequest{
		Slug:  "koi-sleeve",
		Title: "Koi Sleeve",
	})
	require.NoError(t, err)
	designA := created.ID.String()

	ingest(t, svc, []eventSpec{
		// Design A: three views, score 3.
		{at: 0, session: "s1", category: domain.CategoryGallery, action: "view", designID: designA},
		{at: time.Second, session: "s2", category: domain.CategoryGallery, action: "view", designID: designA},
		{at: 2 * time.Second, session: "s3", category: domain.CategoryGallery, action: "view", designID: designA},
		// Design B: one view, two interactions, score 1 + 2*2 = 5.
		{at: 3 * time.Second, session: "s1", category: domain.CategoryGallery, action: "view", designID: "d-b"},
		{at: 4 * time.Second, session: "s1", category: domain.CategoryGallery, action: "zoom", designID: "d-b"},
		{at: 5 * time.Second, session: "s2", category: domain.CategoryGallery, action: "favorite", designID: "d-b"},
	})

	scores, err := svc.TopDesigns(context.Background(), domain.DateRange{}, 0)
	require.NoError(t, err)

	require.Len(t, scores, 2)
	assert.Equal(t, "d-b", scores[0].DesignID)
	assert.Equal(t, int64(5), scores[0].Score)
	assert.Equal(t, int64(1), scores[0].Views)
	assert.Equal(t, int64(2), scores[0].Interactions)
	assert.Nil(t, scores[0].Design)

	assert.Equal(t, designA, scores[1].DesignID)
	assert.Equal(t, int64(3), scores[1].Score)
	// The catalog record joins in when the id matches a stored design.
	require.NotNil(t, scores[1].Design)
	assert.Equal(t, "koi-sleeve", scores[1].Design.Slug)
}

func TestTopDesignsRespectsLimit(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	specs := make([]eventSpec, 0, 4)
	for i := 0; i < 4; i++ {
		specs = append(specs, eventSpec{
			at:       time.Duration(i) * time.Second,
			session:  "s1",
			category: domain.CategoryGallery,
			action:   "view",
			designID: fmt.Sprintf("d-%d", i),
		})
	}
	ingest(t, svc, specs)

	scores, err := svc.TopDesigns(context.Background(), domain.DateRange{}, 2)
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestBookingFunnel(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	ingest(t, svc, []eventSpec{
		// s1 walks the whole funnel.
		{at: 0, session: "s1", category: domain.CategoryBooking, action: domain.FunnelStepStart},
		{at: 10 * time.Second, session: "s1", category: domain.CategoryBooking, action: domain.FunnelStepSelectService},
		{at: 25 * time.Second, session: "s1", category: domain.CategoryBooking, action: domain.FunnelStepSelectDate},
		{at: 40 * time.Second, session: "s1", category: domain.CategoryBooking, action: domain.FunnelStepEnterDetails},
		{at: 70 * time.Second, session: "s1", category: domain.CategoryBooking, action: domain.FunnelStepPayment},
		{at: 100 * time.Second, session: "s1", category: domain.CategoryBooking, action: domain.FunnelStepComplete},
		// s2 starts, picks a service after 30s, then abandons.
		{at: 0, session: "s2", category: domain.CategoryBooking, action: domain.FunnelStepStart},
		{at: 30 * time.Second, session: "s2", category: domain.CategoryBooking, action: domain.FunnelStepSelectService},
		{at: 45 * time.Second, session: "s2", category: domain.CategoryBooking, action: domain.FunnelStepAbandon},
		// A non-funnel booking event must not leak into step counts.
		{at: 0, session: "s3", category: domain.CategoryBooking, action: "widget_opened"},
	})

	funnel, err := svc.BookingFunnel(context.Background(), domain.DateRange{})
	require.NoError(t, err)

	require.Len(t, funnel.Steps, len(domain.FunnelSteps))
	assert.Equal(t, domain.FunnelStepStart, funnel.Steps[0].Step)
	assert.Equal(t, int64(2), funnel.Steps[0].Count)
	assert.Equal(t, int64(2), funnel.Steps[1].Count)
	assert.Equal(t, int64(1), funnel.Steps[5].Count)
	assert.Equal(t, int64(1), funnel.Steps[6].Count)

	assert.InDelta(t, 100.0, funnel.ConversionRates["start_to_select_service"], 1e-9)
	assert.InDelta(t, 50.0, funnel.ConversionRates["select_service_to_select_date"], 1e-9)
	// Abandon is terminal, so no pair leaves complete.
	_, ok := funnel.ConversionRates["complete_to_abandon"]
	assert.False(t, ok)

	// Both s1 and s2 reached select_service: (10 + 30) / 2.
	assert.InDelta(t, 20.0, funnel.StepTimings["start_to_select_service"], 1e-9)
	// Only s1 reached select_date; s2 is excluded, not zeroed.
	assert.InDelta(t, 15.0, funnel.StepTimings["select_service_to_select_date"], 1e-9)

	assert.InDelta(t, 50.0, funnel.CompletionRate, 1e-9)
	assert.InDelta(t, 50.0, funnel.AbandonmentRate, 1e-9)
}

func TestBookingFunnelNoStarts(t *testing.T) {
	svc, _, _ := setupService(t, config.AnalyticsConfig{})

	ingest(t, svc, []eventSpec{
		{at: 0, session: "s1", category: domain.CategoryBooking, action: domain.FunnelStepSelectService},
	})

	funnel, err := svc.BookingFunnel(context.Background(), domain.DateRange{})
	require.NoError(t, err)

	assert.Zero(t, funnel.ConversionRates["start_to_select_service"])
	assert.Zero(t, funnel.CompletionRate)
	assert.Zero(t, funnel.AbandonmentRate)
}
