// This file and its siblings (outfit.go, review.go, movie.go) implement the
// content endpoints: unauthenticated list/filter routes that expose only
// published records, and the admin CRUD surface behind RequireRole.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/glossline/glossline/internal/repository"
	"github.com/glossline/glossline/internal/utils"
)

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed so repositories fall back to their defaults.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// CelebrityHandler serves the celebrity endpoints.
type CelebrityHandler struct {
	Repo CelebrityStore
}

func NewCelebrityHandler(repo CelebrityStore) *CelebrityHandler { return &CelebrityHandler{Repo: repo} }

type celebrityReq struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Bio       string `json:"bio"`
	Category  string `json:"category"`
	Photo     string `json:"photo"`
	Published bool   `json:"published"`
	IsActive  *bool  `json:"isActive"`
}

type celebrityResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Bio       string    `json:"bio"`
	Category  string    `json:"category"`
	Photo     string    `json:"photo,omitempty"`
	Published bool      `json:"published"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toCelebrityResp(c *repository.Celebrity) celebrityResp {
	return celebrityResp{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Bio:       c.Bio,
		Category:  c.Category,
		Photo:     c.Photo.String,
		Published: c.Published,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ListPublic returns published, active celebrities.  Supported query
// parameters: category, q (name search), page, limit.
func (h *CelebrityHandler) ListPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Repo.ListPublished(ctx, repository.CelebrityFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   strings.TrimSpace(c.QueryParam("q")),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]celebrityResp, 0, len(items))
	for _, it := range items {
		out = append(out, toCelebrityResp(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublic returns one published celebrity by slug.
func (h *CelebrityHandler) GetPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	it, err := h.Repo.GetPublishedBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrCelebrityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "celebrity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toCelebrityResp(it))
}

// ListAdmin returns all celebrities including drafts and inactive records.
func (h *CelebrityHandler) ListAdmin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Repo.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]celebrityResp, 0, len(items))
	for _, it := range items {
		out = append(out, toCelebrityResp(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Create inserts a celebrity.  The slug defaults to a slugified name.
func (h *CelebrityHandler) Create(c echo.Context) error {
	var req celebrityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	it := &repository.Celebrity{
		Name:      req.Name,
		Slug:      slug,
		Bio:       req.Bio,
		Category:  req.Category,
		Photo:     nullStr(req.Photo),
		Published: req.Published,
		IsActive:  active,
	}
	if err := h.Repo.Create(ctx, it); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toCelebrityResp(it))
}

// Update rewrites a celebrity by id.
func (h *CelebrityHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req celebrityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	it := &repository.Celebrity{
		ID:        id,
		Name:      req.Name,
		Slug:      slug,
		Bio:       req.Bio,
		Category:  req.Category,
		Photo:     nullStr(req.Photo),
		Published: req.Published,
		IsActive:  active,
	}
	if err := h.Repo.Update(ctx, it); err != nil {
		if errors.Is(err, repository.ErrCelebrityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "celebrity not found"})
		}
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toCelebrityResp(it))
}

// Delete removes a celebrity by id.
func (h *CelebrityHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCelebrityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "celebrity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
