package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readworld/internal/annotations"
	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/entities"
)

// AnnotationsController handles bookmarks, highlights and notes of catalog books.
type AnnotationsController struct {
	manager *annotations.Manager
	catalog *catalog.Catalog
}

func NewAnnotationsController(manager *annotations.Manager, cat *catalog.Catalog) *AnnotationsController {
	return &AnnotationsController{manager: manager, catalog: cat}
}

// bookID returns the :id parameter if it names a catalog book, otherwise responds 404.
func (ac *AnnotationsController) bookID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, ok := ac.catalog.Find(id); !ok {
		respondNotFound(c, "book")
		return "", false
	}
	return id, true
}

// GetAnnotations handles GET /api/books/:id/annotations
func (ac *AnnotationsController) GetAnnotations(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	a, err := ac.manager.Get(c.Request.Context(), bookID)
	if err != nil {
		respondDomainError(c, err, "get annotations")
		return
	}
	c.JSON(http.StatusOK, a)
}

type pageRequest struct {
	Page int    `json:"page"`
	Note string `json:"note"`
}

// ToggleBookmark handles POST /api/books/:id/bookmarks/toggle
func (ac *AnnotationsController) ToggleBookmark(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	var req pageRequest
	if !bindJSON(c, &req) {
		return
	}
	bookmarked, err := ac.manager.ToggleBookmark(c.Request.Context(), bookID, req.Page)
	if err != nil {
		respondDomainError(c, err, "toggle bookmark")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": req.Page, "bookmarked": bookmarked})
}

// PutBookmark handles PUT /api/books/:id/bookmarks/:page, setting the bookmark note.
func (ac *AnnotationsController) PutBookmark(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	page, ok := parsePageParam(c, "page")
	if !ok {
		return
	}
	var req pageRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ac.manager.SetBookmarkNote(c.Request.Context(), bookID, page, req.Note); err != nil {
		respondDomainError(c, err, "set bookmark note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "note": req.Note})
}

// DeleteBookmark handles DELETE /api/books/:id/bookmarks/:page
func (ac *AnnotationsController) DeleteBookmark(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	page, ok := parsePageParam(c, "page")
	if !ok {
		return
	}
	if err := ac.manager.RemoveBookmark(c.Request.Context(), bookID, page); err != nil {
		respondDomainError(c, err, "remove bookmark")
		return
	}
	respondSuccess(c, "Bookmark removed")
}

type highlightRequest struct {
	Page  int                     `json:"page"`
	Text  string                  `json:"text"`
	Color entities.HighlightColor `json:"color"`
}

// AddHighlight handles POST /api/books/:id/highlights
func (ac *AnnotationsController) AddHighlight(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	var req highlightRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Color == "" {
		req.Color = entities.HighlightYellow
	}
	h, err := ac.manager.AddHighlight(c.Request.Context(), bookID, req.Page, req.Text, req.Color)
	if err != nil {
		respondDomainError(c, err, "add highlight")
		return
	}
	respondCreated(c, h)
}

// DeleteHighlight handles DELETE /api/books/:id/highlights/:annotationId
func (ac *AnnotationsController) DeleteHighlight(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	if err := ac.manager.RemoveHighlight(c.Request.Context(), bookID, c.Param("annotationId")); err != nil {
		respondDomainError(c, err, "remove highlight")
		return
	}
	respondSuccess(c, "Highlight removed")
}

type noteRequest struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// AddNote handles POST /api/books/:id/notes
func (ac *AnnotationsController) AddNote(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := ac.manager.AddNote(c.Request.Context(), bookID, req.Page, req.Text)
	if err != nil {
		respondDomainError(c, err, "add note")
		return
	}
	respondCreated(c, n)
}

// SaveQuickNote handles PUT /api/books/:id/notes/quick
func (ac *AnnotationsController) SaveQuickNote(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := ac.manager.SaveQuickNote(c.Request.Context(), bookID, req.Page, req.Text)
	if err != nil {
		respondDomainError(c, err, "save quick note")
		return
	}
	c.JSON(http.StatusOK, n)
}

// UpdateNote handles PATCH /api/books/:id/notes/:annotationId
func (ac *AnnotationsController) UpdateNote(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := ac.manager.UpdateNote(c.Request.Context(), bookID, c.Param("annotationId"), req.Text)
	if err != nil {
		respondDomainError(c, err, "update note")
		return
	}
	c.JSON(http.StatusOK, n)
}

// DeleteNote handles DELETE /api/books/:id/notes/:annotationId
func (ac *AnnotationsController) DeleteNote(c *gin.Context) {
	bookID, ok := ac.bookID(c)
	if !ok {
		return
	}
	if err := ac.manager.RemoveNote(c.Request.Context(), bookID, c.Param("annotationId")); err != nil {
		respondDomainError(c, err, "remove note")
		return
	}
	respondSuccess(c, "Note removed")
}
