package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/inkhaus/studio/internal/design/domain"
	"github.com/inkhaus/studio/pkg/db"
	"github.com/inkhaus/studio/pkg/db/option"
	"github.com/inkhaus/studio/pkg/db/pagination"
	"github.com/inkhaus/studio/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Design]
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("design.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Design](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDesignRequest) (*domain.Design, error) {
	slug := strings.TrimSpace(strings.ToLower(req.Slug))
	if slug == "" {
		return nil, domain.ErrInvalidSlug
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	design := &domain.Design{
		ID:         s.genID.Generate(),
		Slug:       slug,
		Title:      title,
		Style:      strings.TrimSpace(req.Style),
		ArtistName: strings.TrimSpace(req.ArtistName),
		ImageURL:   strings.TrimSpace(req.ImageURL),
		Active:     true,
	}

	if err := s.repo.Create(ctx, design); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}
	return design, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateDesignRequest) (*domain.Design, error) {
	designID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	existing, err := s.repo.FindOne(ctx, &domain.Design{ID: designID})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	fields := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		fields["title"] = title
	}
	if req.Style != nil {
		fields["style"] = strings.TrimSpace(*req.Style)
	}
	if req.ArtistName != nil {
		fields["artist_name"] = strings.TrimSpace(*req.ArtistName)
	}
	if req.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*req.ImageURL)
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if len(fields) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, designID.String(), fields); err != nil {
		return nil, err
	}
	return s.repo.FindOne(ctx, &domain.Design{ID: designID})
}

func (s *Service) List(ctx context.Context, req domain.ListDesignRequest) (domain.ListDesignResponse, error) {
	filter := &domain.Design{Style: strings.TrimSpace(req.Style)}
	// Struct conditions drop zero values, so active=false needs an
	// explicit predicate.
	var opts []option.QueryOption
	if req.Active != nil {
		opts = append(opts, option.WithEquals("active", *req.Active))
	}

	total, err := s.repo.Count(ctx, filter, opts...)
	if err != nil {
		return domain.ListDesignResponse{}, err
	}

	page := req.Pagination.Normalize()
	items, err := s.repo.Find(ctx, filter, append(opts,
		option.WithSortBy(option.QuerySortBy{Default: "created_at", Desc: true}),
		option.ApplyPagination(page),
	)...)
	if err != nil {
		return domain.ListDesignResponse{}, err
	}

	designs := make([]domain.Design, 0, len(items))
	for _, item := range items {
		designs = append(designs, *item)
	}

	return domain.ListDesignResponse{
		Designs:    designs,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Design, error) {
	result := make(map[string]*domain.Design, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	// IDs arrive as free text from event metadata; anything that is not a
	// snowflake would break the bigint comparison on postgres, so skip it.
	keys := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		parsed, err := snowflake.ParseString(strings.TrimSpace(id))
		if err != nil {
			continue
		}
		keys = append(keys, parsed)
	}
	if len(keys) == 0 {
		return result, nil
	}

	var designs []*domain.Design
	if err := s.db.WithContext(ctx).Where("id IN ?", keys).Find(&designs).Error; err != nil {
		return nil, err
	}
	for _, d := range designs {
		result[d.ID.String()] = d
	}
	return result, nil
}
