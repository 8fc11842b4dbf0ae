package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossline/glossline/internal/repository"
)

// fakeCelebrityStore serves published/all views over an in-memory slice,
// honoring the category and search filters.
type fakeCelebrityStore struct {
	mu     sync.Mutex
	nextID uint64
	items  []*repository.Celebrity
}

func newFakeCelebrityStore() *fakeCelebrityStore { return &fakeCelebrityStore{nextID: 1} }

func (s *fakeCelebrityStore) ListPublished(_ context.Context, f repository.CelebrityFilter) ([]*repository.Celebrity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*repository.Celebrity
	for _, it := range s.items {
		if !it.Published || !it.IsActive {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Search)) {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeCelebrityStore) GetPublishedBySlug(_ context.Context, slug string) (*repository.Celebrity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Slug == slug && it.Published && it.IsActive {
			cp := *it
			return &cp, nil
		}
	}
	return nil, repository.ErrCelebrityNotFound
}

func (s *fakeCelebrityStore) ListAll(context.Context) ([]*repository.Celebrity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*repository.Celebrity, 0, len(s.items))
	for _, it := range s.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeCelebrityStore) Create(_ context.Context, c *repository.Celebrity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Slug == c.Slug {
			return errors.New("Error 1062 (23000): Duplicate entry for key 'celebrities.uq_celebrities_slug'")
		}
	}
	c.ID = s.nextID
	s.nextID++
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	s.items = append(s.items, &cp)
	return nil
}

func (s *fakeCelebrityStore) Update(_ context.Context, c *repository.Celebrity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == c.ID {
			c.CreatedAt = it.CreatedAt
			c.UpdatedAt = time.Now().UTC()
			cp := *c
			s.items[i] = &cp
			return nil
		}
	}
	return repository.ErrCelebrityNotFound
}

func (s *fakeCelebrityStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrCelebrityNotFound
}

func seedCelebrities(t *testing.T, s *fakeCelebrityStore) {
	t.Helper()
	for _, it := range []*repository.Celebrity{
		{Name: "Zendaya", Slug: "zendaya", Category: "actor", Published: true, IsActive: true},
		{Name: "Florence Pugh", Slug: "florence-pugh", Category: "actor", Published: true, IsActive: true},
		{Name: "Dua Lipa", Slug: "dua-lipa", Category: "musician", Published: true, IsActive: true},
		{Name: "Draft Person", Slug: "draft-person", Category: "actor", Published: false, IsActive: true},
		{Name: "Hidden Person", Slug: "hidden-person", Category: "actor", Published: true, IsActive: false},
	} {
		require.NoError(t, s.Create(context.Background(), it))
	}
}

func TestCelebrityListPublic_FiltersDraftsAndInactive(t *testing.T) {
	store := newFakeCelebrityStore()
	seedCelebrities(t, store)
	h := NewCelebrityHandler(store)

	rec := doJSON(t, h.ListPublic, http.MethodGet, "/v1/celebrities", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "zendaya")
	assert.NotContains(t, rec.Body.String(), "draft-person")
	assert.NotContains(t, rec.Body.String(), "hidden-person")
}

func TestCelebrityListPublic_CategoryAndSearch(t *testing.T) {
	store := newFakeCelebrityStore()
	seedCelebrities(t, store)
	h := NewCelebrityHandler(store)

	rec := doJSON(t, h.ListPublic, http.MethodGet, "/v1/celebrities?category=musician", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dua-lipa")
	assert.NotContains(t, rec.Body.String(), "zendaya")

	rec = doJSON(t, h.ListPublic, http.MethodGet, "/v1/celebrities?q=florence", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "florence-pugh")
	assert.NotContains(t, rec.Body.String(), "zendaya")
}

func TestCelebrityGetPublic(t *testing.T) {
	store := newFakeCelebrityStore()
	seedCelebrities(t, store)
	h := NewCelebrityHandler(store)

	e := echo.New()
	get := func(slug string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("slug")
		c.SetParamValues(slug)
		require.NoError(t, h.GetPublic(c))
		return rec
	}

	rec := get("zendaya")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Zendaya"`)

	// unpublished and inactive records are invisible on the public route
	assert.Equal(t, http.StatusNotFound, get("draft-person").Code)
	assert.Equal(t, http.StatusNotFound, get("hidden-person").Code)
	assert.Equal(t, http.StatusNotFound, get("missing").Code)
}

func TestCelebrityCreate_DefaultsSlug(t *testing.T) {
	store := newFakeCelebrityStore()
	h := NewCelebrityHandler(store)

	rec := doJSON(t, h.Create, http.MethodPost, "/",
		`{"name":"Timothée Chalamet","category":"actor","published":true}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"timothée-chalamet"`)
}

func TestCelebrityCreate_DuplicateSlug(t *testing.T) {
	store := newFakeCelebrityStore()
	seedCelebrities(t, store)
	h := NewCelebrityHandler(store)

	rec := doJSON(t, h.Create, http.MethodPost, "/", `{"name":"Zendaya"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"slug already exists"}`, rec.Body.String())
}

func TestCelebrityCreate_NameRequired(t *testing.T) {
	h := NewCelebrityHandler(newFakeCelebrityStore())
	rec := doJSON(t, h.Create, http.MethodPost, "/", `{"category":"actor"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCelebrityDelete(t *testing.T) {
	store := newFakeCelebrityStore()
	seedCelebrities(t, store)
	h := NewCelebrityHandler(store)

	e := echo.New()
	del := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id)
		require.NoError(t, h.Delete(c))
		return rec
	}

	assert.Equal(t, http.StatusNoContent, del("1").Code)
	assert.Equal(t, http.StatusNotFound, del("1").Code)
	assert.Equal(t, http.StatusBadRequest, del("abc").Code)
}
