package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/logger"
)

type documentRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"required"`
	Icon     string `json:"icon"`
	Slug     string `json:"slug"`
}

type tutorialRequest struct {
	Title         string                `json:"title" binding:"required"`
	Summary       string                `json:"summary" binding:"required"`
	Content       string                `json:"content" binding:"required"`
	Prerequisites []string              `json:"prerequisites"`
	CodeSnippets  []content.CodeSnippet `json:"codeSnippets"`
	Tags          []string              `json:"tags"`
	ReadTime      int                   `json:"readTime" binding:"gte=0"`
	Featured      int                   `json:"featured" binding:"oneof=0 1"`
	Slug          string                `json:"slug"`
}

type serviceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Icon        string `json:"icon"`
	Status      string `json:"status"`
	Version     string `json:"version"`
	IPAddress   string `json:"ipAddress"`
	Platform    string `json:"platform"`
	ConfigLink  string `json:"configLink"`
	AdminLink   string `json:"adminLink"`
}

func conflict(c *gin.Context, kind, slug string) {
	c.JSON(http.StatusConflict, gin.H{"message": kind + " slug already exists", "slug": slug})
}

func deleted(c *gin.Context, ok bool, kind string) {
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": kind + " not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Documents

func (h *Handler) CreateDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Slug == "" {
		req.Slug = content.MakeSlug(req.Title)
	}
	ctx := c.Request.Context()
	taken, err := slugTaken(ctx, h.st.DocumentBySlug, documentID, req.Slug, 0)
	if err != nil {
		fail(c, err, "Document", "create document")
		return
	}
	if taken {
		conflict(c, "Document", req.Slug)
		return
	}
	doc, err := h.st.CreateDocument(ctx, content.Document{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Icon:     req.Icon,
		Slug:     req.Slug,
	})
	if err != nil {
		fail(c, err, "Document", "create document")
		return
	}
	logger.Infow("document created", "id", doc.ID, "slug", doc.Slug)
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) UpdateDocument(c *gin.Context) {
	id, ok := idParam(c, "Document")
	if !ok {
		return
	}
	var p content.DocumentPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	if p.Slug != nil {
		taken, err := slugTaken(ctx, h.st.DocumentBySlug, documentID, *p.Slug, id)
		if err != nil {
			fail(c, err, "Document", "update document")
			return
		}
		if taken {
			conflict(c, "Document", *p.Slug)
			return
		}
	}
	doc, err := h.st.UpdateDocument(ctx, id, p)
	if err != nil {
		fail(c, err, "Document", "update document")
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	id, ok := idParam(c, "Document")
	if !ok {
		return
	}
	removed, err := h.st.DeleteDocument(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Document", "delete document")
		return
	}
	deleted(c, removed, "Document")
}

// Tutorials

func (h *Handler) CreateTutorial(c *gin.Context) {
	var req tutorialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Slug == "" {
		req.Slug = content.MakeSlug(req.Title)
	}
	ctx := c.Request.Context()
	taken, err := slugTaken(ctx, h.st.TutorialBySlug, tutorialID, req.Slug, 0)
	if err != nil {
		fail(c, err, "Tutorial", "create tutorial")
		return
	}
	if taken {
		conflict(c, "Tutorial", req.Slug)
		return
	}
	t, err := h.st.CreateTutorial(ctx, content.Tutorial{
		Title:         req.Title,
		Summary:       req.Summary,
		Content:       req.Content,
		Prerequisites: req.Prerequisites,
		CodeSnippets:  req.CodeSnippets,
		Tags:          req.Tags,
		ReadTime:      req.ReadTime,
		Featured:      req.Featured,
		Slug:          req.Slug,
	})
	if err != nil {
		fail(c, err, "Tutorial", "create tutorial")
		return
	}
	logger.Infow("tutorial created", "id", t.ID, "slug", t.Slug)
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTutorial(c *gin.Context) {
	id, ok := idParam(c, "Tutorial")
	if !ok {
		return
	}
	var p content.TutorialPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	if p.Featured != nil && *p.Featured != 0 && *p.Featured != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "featured must be 0 or 1"})
		return
	}
	ctx := c.Request.Context()
	if p.Slug != nil {
		taken, err := slugTaken(ctx, h.st.TutorialBySlug, tutorialID, *p.Slug, id)
		if err != nil {
			fail(c, err, "Tutorial", "update tutorial")
			return
		}
		if taken {
			conflict(c, "Tutorial", *p.Slug)
			return
		}
	}
	t, err := h.st.UpdateTutorial(ctx, id, p)
	if err != nil {
		fail(c, err, "Tutorial", "update tutorial")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTutorial(c *gin.Context) {
	id, ok := idParam(c, "Tutorial")
	if !ok {
		return
	}
	removed, err := h.st.DeleteTutorial(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Tutorial", "delete tutorial")
		return
	}
	deleted(c, removed, "Tutorial")
}

// Services

func (h *Handler) CreateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Status == "" {
		req.Status = content.StatusUnknown
	}
	svc, err := h.st.CreateService(c.Request.Context(), content.Service{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Status:      req.Status,
		Version:     req.Version,
		IPAddress:   req.IPAddress,
		Platform:    req.Platform,
		ConfigLink:  req.ConfigLink,
		AdminLink:   req.AdminLink,
	})
	if err != nil {
		fail(c, err, "Service", "create service")
		return
	}
	logger.Infow("service created", "id", svc.ID, "name", svc.Name)
	c.JSON(http.StatusCreated, svc)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := idParam(c, "Service")
	if !ok {
		return
	}
	var p content.ServicePatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	svc, err := h.st.UpdateService(c.Request.Context(), id, p)
	if err != nil {
		fail(c, err, "Service", "update service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := idParam(c, "Service")
	if !ok {
		return
	}
	removed, err := h.st.DeleteService(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Service", "delete service")
		return
	}
	deleted(c, removed, "Service")
}
