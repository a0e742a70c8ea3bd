package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/covers"
)

type CoversController struct {
	catalog *catalog.Catalog
	cache   *covers.Cache
}

func NewCoversController(cat *catalog.Catalog, cache *covers.Cache) *CoversController {
	return &CoversController{catalog: cat, cache: cache}
}

// GetCover handles GET /api/books/:id/cover
// Remote covers are served from the local cache. When the image host cannot
// be reached the client is redirected to it instead.
func (cc *CoversController) GetCover(c *gin.Context) {
	book, ok := cc.catalog.Find(c.Param("id"))
	if !ok {
		respondNotFound(c, "Book")
		return
	}
	if !covers.IsRemote(book.Cover) {
		respondNotFound(c, "Cover")
		return
	}

	path, err := cc.cache.Get(c.Request.Context(), book.ID, book.Cover)
	if err != nil {
		log.Printf("Covers: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, book.Cover)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
