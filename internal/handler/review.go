package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/glossline/glossline/internal/repository"
	"github.com/glossline/glossline/internal/utils"
)

// ReviewHandler serves the movie review endpoints.
type ReviewHandler struct {
	Repo ReviewStore
}

func NewReviewHandler(repo ReviewStore) *ReviewHandler { return &ReviewHandler{Repo: repo} }

type reviewReq struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Body      string `json:"body"`
	Rating    uint8  `json:"rating"`
	Published bool   `json:"published"`
}

// reviewListItem carries the HTML-stripped excerpt instead of the body so
// list responses stay small and markup-free.
type reviewListItem struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Rating    uint8     `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

type reviewResp struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Body      string    `json:"body"`
	Excerpt   string    `json:"excerpt"`
	Rating    uint8     `json:"rating"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toReviewResp(v *repository.Review) reviewResp {
	return reviewResp{
		ID:        v.ID,
		Title:     v.Title,
		Slug:      v.Slug,
		Body:      v.Body,
		Excerpt:   v.Excerpt,
		Rating:    v.Rating,
		Published: v.Published,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// ListPublic returns published reviews.  Supported query parameters:
// min_rating, q (title search), page, limit.
func (h *ReviewHandler) ListPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Repo.ListPublished(ctx, repository.ReviewFilter{
		MinRating: uint8(queryInt(c, "min_rating")),
		Search:    strings.TrimSpace(c.QueryParam("q")),
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]reviewListItem, 0, len(items))
	for _, it := range items {
		out = append(out, reviewListItem{
			ID:        it.ID,
			Title:     it.Title,
			Slug:      it.Slug,
			Excerpt:   it.Excerpt,
			Rating:    it.Rating,
			CreatedAt: it.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublic returns one published review by slug, body included.
func (h *ReviewHandler) GetPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	it, err := h.Repo.GetPublishedBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toReviewResp(it))
}

// ListAdmin returns all reviews including drafts.
func (h *ReviewHandler) ListAdmin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Repo.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]reviewResp, 0, len(items))
	for _, it := range items {
		out = append(out, toReviewResp(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *ReviewHandler) bindReview(c echo.Context, id uint64) (*repository.Review, error) {
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return nil, errors.New("invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Body) == "" {
		return nil, errors.New("title and body are required")
	}
	if req.Rating < 1 || req.Rating > 10 {
		return nil, errors.New("rating must be between 1 and 10")
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}
	return &repository.Review{
		ID:        id,
		Title:     req.Title,
		Slug:      slug,
		Body:      req.Body,
		Rating:    req.Rating,
		Published: req.Published,
	}, nil
}

// Create inserts a review; the excerpt is derived from the body.
func (h *ReviewHandler) Create(c echo.Context) error {
	it, err := h.bindReview(c, 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Create(ctx, it); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toReviewResp(it))
}

// Update rewrites a review by id.
func (h *ReviewHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	it, err := h.bindReview(c, id)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Update(ctx, it); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toReviewResp(it))
}

// Delete removes a review by id.
func (h *ReviewHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
