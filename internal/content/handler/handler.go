// Package handler exposes the content store over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/store"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/markdown"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/logger"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/metrics"
)

type Handler struct {
	st *store.Store
}

type options struct {
	admin []gin.HandlerFunc
}

type Option func(*options)

// WithAdmin registers the write routes behind the given middleware chain.
// Without it only the read routes exist.
func WithAdmin(mw ...gin.HandlerFunc) Option {
	return func(o *options) { o.admin = mw }
}

// RegisterContentRoutes mounts the catalog API under /api.
func RegisterContentRoutes(r gin.IRouter, st *store.Store, opts ...Option) *Handler {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	h := &Handler{st: st}

	api := r.Group("/api")
	api.GET("/services", h.ListServices)
	api.GET("/services/:id", h.GetService)

	api.GET("/documents", h.ListDocuments)
	api.GET("/documents/category/:category", h.DocumentsByCategory)
	api.GET("/documents/slug/:slug", h.DocumentBySlug)
	api.GET("/documents/:id", h.GetDocument)
	api.GET("/documents/:id/html", h.DocumentHTML)

	api.GET("/tutorials", h.ListTutorials)
	api.GET("/tutorials/featured", h.FeaturedTutorials)
	api.GET("/tutorials/slug/:slug", h.TutorialBySlug)
	api.GET("/tutorials/:id", h.GetTutorial)
	api.GET("/tutorials/:id/html", h.TutorialHTML)

	api.GET("/search", h.Search)

	if len(o.admin) > 0 {
		admin := api.Group("", o.admin...)
		admin.POST("/documents", h.CreateDocument)
		admin.PATCH("/documents/:id", h.UpdateDocument)
		admin.DELETE("/documents/:id", h.DeleteDocument)

		admin.POST("/tutorials", h.CreateTutorial)
		admin.PATCH("/tutorials/:id", h.UpdateTutorial)
		admin.DELETE("/tutorials/:id", h.DeleteTutorial)

		admin.POST("/services", h.CreateService)
		admin.PATCH("/services/:id", h.UpdateService)
		admin.DELETE("/services/:id", h.DeleteService)
	}
	return h
}

// fail maps a store error to a response: ErrNotFound becomes 404, anything
// else is logged and becomes 500.
func fail(c *gin.Context, err error, kind, action string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": kind + " not found"})
		return
	}
	logger.Errorw("content store error", "action", action, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to " + action})
}

// idParam parses :id. An unparseable id can never match a record, so it is
// answered like a miss.
func idParam(c *gin.Context, kind string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": kind + " not found"})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "details": err.Error()})
}

// Services

func (h *Handler) ListServices(c *gin.Context) {
	list, err := h.st.Services(c.Request.Context())
	if err != nil {
		fail(c, err, "Service", "fetch services")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := idParam(c, "Service")
	if !ok {
		return
	}
	svc, err := h.st.Service(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Service", "fetch service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// Documents

func (h *Handler) ListDocuments(c *gin.Context) {
	list, err := h.st.Documents(c.Request.Context())
	if err != nil {
		fail(c, err, "Document", "fetch documents")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) DocumentsByCategory(c *gin.Context) {
	list, err := h.st.DocumentsByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		fail(c, err, "Document", "fetch documents by category")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetDocument(c *gin.Context) {
	id, ok := idParam(c, "Document")
	if !ok {
		return
	}
	doc, err := h.st.Document(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Document", "fetch document")
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) DocumentBySlug(c *gin.Context) {
	doc, err := h.st.DocumentBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err, "Document", "fetch document by slug")
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) DocumentHTML(c *gin.Context) {
	id, ok := idParam(c, "Document")
	if !ok {
		return
	}
	doc, err := h.st.Document(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Document", "fetch document")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markdown.Render(doc.Content)))
}

// Tutorials

func (h *Handler) ListTutorials(c *gin.Context) {
	list, err := h.st.Tutorials(c.Request.Context())
	if err != nil {
		fail(c, err, "Tutorial", "fetch tutorials")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) FeaturedTutorials(c *gin.Context) {
	list, err := h.st.FeaturedTutorials(c.Request.Context())
	if err != nil {
		fail(c, err, "Tutorial", "fetch featured tutorials")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetTutorial(c *gin.Context) {
	id, ok := idParam(c, "Tutorial")
	if !ok {
		return
	}
	t, err := h.st.Tutorial(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Tutorial", "fetch tutorial")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) TutorialBySlug(c *gin.Context) {
	t, err := h.st.TutorialBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err, "Tutorial", "fetch tutorial by slug")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) TutorialHTML(c *gin.Context) {
	id, ok := idParam(c, "Tutorial")
	if !ok {
		return
	}
	t, err := h.st.Tutorial(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Tutorial", "fetch tutorial")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markdown.Render(t.Content)))
}

// Search

func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Search query is required"})
		return
	}
	res, err := h.st.Search(c.Request.Context(), q)
	if err != nil {
		logger.Errorw("search failed", "query", q, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Search failed"})
		return
	}
	metrics.SearchQueries.Inc()
	metrics.SearchResults.Observe(float64(res.Total()))
	c.JSON(http.StatusOK, res)
}

// slugTaken reports whether another record (not self) already uses slug.
func slugTaken[T any](ctx context.Context, lookup func(context.Context, string) (*T, error), id func(*T) int, slug string, self int) (bool, error) {
	found, err := lookup(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return id(found) != self, nil
}

func documentID(d *content.Document) int { return d.ID }
func tutorialID(t *content.Tutorial) int { return t.ID }
