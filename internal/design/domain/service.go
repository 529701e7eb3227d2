package domain

import (
	"context"
	"errors"

	"github.com/inkhaus/studio/pkg/db/pagination"
)

type CreateDesignRequest struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Style      string `json:"style"`
	ArtistName string `json:"artist_name"`
	ImageURL   string `json:"image_url"`
}

// UpdateDesignRequest updates the named fields only; nil fields are left
// untouched. Deactivating a design hides it from the default gallery list.
type UpdateDesignRequest struct {
	Title      *string `json:"title"`
	Style      *string `json:"style"`
	ArtistName *string `json:"artist_name"`
	ImageURL   *string `json:"image_url"`
	Active     *bool   `json:"active"`
}

type ListDesignRequest struct {
	Style  string
	Active *bool

	pagination.Pagination
}

type ListDesignResponse struct {
	Designs    []Design            `json:"designs"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type Service interface {
	Create(ctx context.Context, req CreateDesignRequest) (*Design, error)
	Update(ctx context.Context, id string, req UpdateDesignRequest) (*Design, error)
	List(ctx context.Context, req ListDesignRequest) (ListDesignResponse, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Design, error)
}

var (
	ErrInvalidSlug  = errors.New("invalid_slug")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrSlugTaken    = errors.New("slug_taken")
	ErrNotFound     = errors.New("not_found")
)
