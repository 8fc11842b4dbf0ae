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
)

// OutfitHandler serves the outfit endpoints.
type OutfitHandler struct {
	Repo OutfitStore
}

func NewOutfitHandler(repo OutfitStore) *OutfitHandler { return &OutfitHandler{Repo: repo} }

type outfitReq struct {
	CelebrityID uint64 `json:"celebrityId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Occasion    string `json:"occasion"`
	Published   bool   `json:"published"`
}

type outfitResp struct {
	ID          uint64    `json:"id"`
	CelebrityID uint64    `json:"celebrityId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Occasion    string    `json:"occasion"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toOutfitResp(o *repository.Outfit) outfitResp {
	return outfitResp{
		ID:          o.ID,
		CelebrityID: o.CelebrityID,
		Title:       o.Title,
		Description: o.Description,
		Image:       o.Image.String,
		Occasion:    o.Occasion,
		Published:   o.Published,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// ListPublic returns published outfits.  Supported query parameters:
// celebrity (id), occasion, page, limit.
func (h *OutfitHandler) ListPublic(c echo.Context) error {
	celebID, _ := strconv.ParseUint(c.QueryParam("celebrity"), 10, 64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Repo.ListPublished(ctx, repository.OutfitFilter{
		CelebrityID: celebID,
		Occasion:    strings.TrimSpace(c.QueryParam("occasion")),
		Page:        queryInt(c, "page"),
		Limit:       queryInt(c, "limit"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]outfitResp, 0, len(items))
	for _, it := range items {
		out = append(out, toOutfitResp(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListAdmin returns all outfits including drafts.
func (h *OutfitHandler) ListAdmin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Repo.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]outfitResp, 0, len(items))
	for _, it := range items {
		out = append(out, toOutfitResp(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *OutfitHandler) bindOutfit(c echo.Context, id uint64) (*repository.Outfit, error) {
	var req outfitReq
	if err := c.Bind(&req); err != nil {
		return nil, errors.New("invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.CelebrityID == 0 {
		return nil, errors.New("celebrityId and title are required")
	}
	return &repository.Outfit{
		ID:          id,
		CelebrityID: req.CelebrityID,
		Title:       req.Title,
		Description: req.Description,
		Image:       nullStr(req.Image),
		Occasion:    req.Occasion,
		Published:   req.Published,
	}, nil
}

// Create inserts an outfit linked to an existing celebrity.
func (h *OutfitHandler) Create(c echo.Context) error {
	it, err := h.bindOutfit(c, 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Create(ctx, it); err != nil {
		if errors.Is(err, repository.ErrCelebrityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "celebrity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toOutfitResp(it))
}

// Update rewrites an outfit by id.
func (h *OutfitHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	it, err := h.bindOutfit(c, id)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Update(ctx, it); err != nil {
		switch {
		case errors.Is(err, repository.ErrOutfitNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "outfit not found"})
		case errors.Is(err, repository.ErrCelebrityNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "celebrity not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toOutfitResp(it))
}

// Delete removes an outfit by id.
func (h *OutfitHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOutfitNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "outfit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
