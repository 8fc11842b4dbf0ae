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

// releaseDateLayout is the wire format for release dates.
const releaseDateLayout = "2006-01-02"

// MovieHandler serves the upcoming-movie endpoints.
type MovieHandler struct {
	Repo MovieStore
}

func NewMovieHandler(repo MovieStore) *MovieHandler { return &MovieHandler{Repo: repo} }

type movieReq struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Poster      string `json:"poster"`
	ReleaseDate string `json:"releaseDate"` // YYYY-MM-DD
	Published   bool   `json:"published"`
}

type movieResp struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Poster      string    `json:"poster,omitempty"`
	ReleaseDate string    `json:"releaseDate"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toMovieResp(m *repository.Movie) movieResp {
	return movieResp{
		ID:          m.ID,
		Title:       m.Title,
		Genre:       m.Genre,
		Poster:      m.Poster.String,
		ReleaseDate: m.ReleaseDate.Format(releaseDateLayout),
		Published:   m.Published,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ListPublic returns published upcoming movies, soonest first.  Supported
// query parameters: genre, after (YYYY-MM-DD), page, limit.
func (h *MovieHandler) ListPublic(c echo.Context) error {
	var after time.Time
	if s := strings.TrimSpace(c.QueryParam("after")); s != "" {
		t, err := time.Parse(releaseDateLayout, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid after date, expected YYYY-MM-DD"})
		}
		after = t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Repo.ListPublished(ctx, repository.MovieFilter{
		Genre: strings.TrimSpace(c.QueryParam("genre")),
		After: after,
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]movieResp, 0, len(items))
	for _, it := range items {
		out = append(out, toMovieResp(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListAdmin returns all movies including unpublished entries.
func (h *MovieHandler) ListAdmin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Repo.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]movieResp, 0, len(items))
	for _, it := range items {
		out = append(out, toMovieResp(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *MovieHandler) bindMovie(c echo.Context, id uint64) (*repository.Movie, error) {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return nil, errors.New("invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	release, err := time.Parse(releaseDateLayout, strings.TrimSpace(req.ReleaseDate))
	if err != nil {
		return nil, errors.New("invalid releaseDate, expected YYYY-MM-DD")
	}
	return &repository.Movie{
		ID:          id,
		Title:       req.Title,
		Genre:       req.Genre,
		Poster:      nullStr(req.Poster),
		ReleaseDate: release,
		Published:   req.Published,
	}, nil
}

// Create inserts an upcoming movie.
func (h *MovieHandler) Create(c echo.Context) error {
	it, err := h.bindMovie(c, 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Create(ctx, it); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toMovieResp(it))
}

// Update rewrites a movie by id.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	it, err := h.bindMovie(c, id)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Update(ctx, it); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toMovieResp(it))
}

// Delete removes a movie by id.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
