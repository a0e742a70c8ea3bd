package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readworld/internal/reader"
)

// ReaderController drives the single reading session.
type ReaderController struct {
	session *reader.Session
}

func NewReaderController(session *reader.Session) *ReaderController {
	return &ReaderController{session: session}
}

// GetStatus handles GET /api/reader
func (rc *ReaderController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, rc.session.Status())
}

type openRequest struct {
	BookID string `json:"bookId" binding:"required"`
}

// Open handles POST /api/reader/open
func (rc *ReaderController) Open(c *gin.Context) {
	var req openRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := rc.session.Open(c.Request.Context(), req.BookID)
	if err != nil {
		respondDomainError(c, err, "open book")
		return
	}
	c.JSON(http.StatusOK, status)
}

type pageChangeRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ChangePage handles POST /api/reader/page with a delta of +1 or -1.
func (rc *ReaderController) ChangePage(c *gin.Context) {
	var req pageChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := rc.session.ChangePage(c.Request.Context(), req.Delta)
	if err != nil {
		respondDomainError(c, err, "change page")
		return
	}
	c.JSON(http.StatusOK, status)
}

type relocatedRequest struct {
	Position string  `json:"position" binding:"required"`
	Fraction float64 `json:"fraction"`
}

// Relocated handles POST /api/reader/relocated, reported by an EPUB renderer.
func (rc *ReaderController) Relocated(c *gin.Context) {
	var req relocatedRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := rc.session.Relocated(req.Position, req.Fraction); err != nil {
		respondDomainError(c, err, "relocated")
		return
	}
	c.JSON(http.StatusOK, rc.session.Status())
}

// Save handles POST /api/reader/save
func (rc *ReaderController) Save(c *gin.Context) {
	progress, err := rc.session.SaveProgress(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "save progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// Finish handles POST /api/reader/finish
func (rc *ReaderController) Finish(c *gin.Context) {
	counted, err := rc.session.MarkFinished(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "mark finished")
		return
	}
	c.JSON(http.StatusOK, gin.H{"counted": counted})
}

// Close handles POST /api/reader/close
func (rc *ReaderController) Close(c *gin.Context) {
	rc.session.Close()
	c.JSON(http.StatusOK, rc.session.Status())
}
