package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/inkhaus/studio/internal/design/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Design{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
}

func create(t *testing.T, svc domain.Service, slug string) *domain.Design {
	t.Helper()
	design, err := svc.Create(context.Background(), domain.CreateDesignRequest{
		Slug:  slug,
		Title: "Design " + slug,
	})
	require.NoError(t, err)
	return design
}

func boolPtr(b bool) *bool { return &b }

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc := setupService(t)
	create(t, svc, "koi")

	_, err := svc.Create(context.Background(), domain.CreateDesignRequest{Slug: "koi", Title: "Koi again"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestUpdateDeactivatesDesign(t *testing.T) {
	svc := setupService(t)
	design := create(t, svc, "koi")

	updated, err := svc.Update(context.Background(), design.ID.String(), domain.UpdateDesignRequest{
		Active: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, design.ID, updated.ID)
}

func TestUpdateUnknownDesign(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Update(context.Background(), "not-a-number", domain.UpdateDesignRequest{Active: boolPtr(false)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(context.Background(), "123456789", domain.UpdateDesignRequest{Active: boolPtr(false)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	svc := setupService(t)
	design := create(t, svc, "koi")

	empty := "  "
	_, err := svc.Update(context.Background(), design.ID.String(), domain.UpdateDesignRequest{Title: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)
}

func TestListFiltersInactiveDesigns(t *testing.T) {
	svc := setupService(t)
	kept := create(t, svc, "koi")
	hidden := create(t, svc, "dragon")

	_, err := svc.Update(context.Background(), hidden.ID.String(), domain.UpdateDesignRequest{
		Active: boolPtr(false),
	})
	require.NoError(t, err)

	// active=false must match only the deactivated design, not everything.
	resp, err := svc.List(context.Background(), domain.ListDesignRequest{Active: boolPtr(false)})
	require.NoError(t, err)
	require.Len(t, resp.Designs, 1)
	assert.Equal(t, hidden.ID, resp.Designs[0].ID)
	assert.EqualValues(t, 1, resp.Pagination.Total)

	resp, err = svc.List(context.Background(), domain.ListDesignRequest{Active: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, resp.Designs, 1)
	assert.Equal(t, kept.ID, resp.Designs[0].ID)

	resp, err = svc.List(context.Background(), domain.ListDesignRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Designs, 2)
}

func TestGetByIDsSkipsUnparseableIDs(t *testing.T) {
	svc := setupService(t)
	design := create(t, svc, "koi")

	got, err := svc.GetByIDs(context.Background(), []string{design.ID.String(), "d-b", "", "  "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, design.Slug, got[design.ID.String()].Slug)
}
