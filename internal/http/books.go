package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/library"
	"github.com/mrlokans/readworld/internal/state"
)

// BooksController serves the catalog together with the per-book reading state.
type BooksController struct {
	catalog *catalog.Catalog
	store   *state.Store
	library *library.Library
}

func NewBooksController(cat *catalog.Catalog, store *state.Store, lib *library.Library) *BooksController {
	return &BooksController{catalog: cat, store: store, library: lib}
}

// BookDetail is a catalog entry with what the user has recorded for it.
type BookDetail struct {
	entities.Book
	Favorite   bool               `json:"favorite"`
	UserRating int                `json:"userRating,omitempty"`
	Review     *entities.Review   `json:"review,omitempty"`
	Progress   *entities.Progress `json:"progress,omitempty"`
	LastOpened int64              `json:"lastOpened,omitempty"`
}

// criteriaFromQuery reads the filter criteria from query parameters.
func criteriaFromQuery(c *gin.Context) (catalog.Criteria, error) {
	crit := catalog.Criteria{
		Genre:     c.Query("genre"),
		Query:     c.Query("q"),
		Genres:    c.QueryArray("genres"),
		Languages: c.QueryArray("languages"),
	}
	crit.FavoritesOnly, _ = strconv.ParseBool(c.Query("favorites"))
	crit.InProgressOnly, _ = strconv.ParseBool(c.Query("in_progress"))

	for _, f := range c.QueryArray("formats") {
		crit.Formats = append(crit.Formats, entities.Format(f))
	}
	for _, r := range c.QueryArray("ratings") {
		band, err := catalog.ParseRatingRange(r)
		if err != nil {
			return catalog.Criteria{}, err
		}
		crit.Ratings = append(crit.Ratings, band)
	}
	return crit, nil
}

// GetBooks handles GET /api/books
func (bc *BooksController) GetBooks(c *gin.Context) {
	crit, err := criteriaFromQuery(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	mode, err := catalog.ParseSortMode(c.Query("sort"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	st := bc.store.Snapshot()
	books := catalog.Sort(catalog.Filter(bc.catalog.Books(), crit, &st), mode, &st)

	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"count": len(books),
	})
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	book, ok := bc.catalog.Find(c.Param("id"))
	if !ok {
		respondNotFound(c, "book")
		return
	}

	detail := BookDetail{Book: book}
	bc.store.View(func(st *entities.UserState) {
		detail.Favorite = st.IsFavorite(book.ID)
		detail.UserRating = st.UserRatings[book.ID]
		detail.LastOpened = st.LastOpenedAt(book.ID)
		if r, ok := st.Reviews[book.ID]; ok {
			detail.Review = &r
		}
		if p, ok := st.Progress[book.ID]; ok {
			detail.Progress = &p
		}
	})
	c.JSON(http.StatusOK, detail)
}

// GetRecommendations handles GET /api/books/:id/recommendations
func (bc *BooksController) GetRecommendations(c *gin.Context) {
	recs, ok := bc.catalog.Recommend(c.Param("id"))
	if !ok {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, recs)
}

// GetGenres handles GET /api/genres
func (bc *BooksController) GetGenres(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"genres":       bc.catalog.Genres(),
		"all_genres":   bc.catalog.AllGenres(),
		"languages":    bc.catalog.Languages(),
		"rating_bands": catalog.RatingBands,
	})
}

// ToggleFavorite handles POST /api/books/:id/favorite
func (bc *BooksController) ToggleFavorite(c *gin.Context) {
	favorite, err := bc.library.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err, "toggle favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": favorite})
}

// GetFavorites handles GET /api/favorites
func (bc *BooksController) GetFavorites(c *gin.Context) {
	books := bc.library.Favorites()
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetRecent handles GET /api/recent
func (bc *BooksController) GetRecent(c *gin.Context) {
	books := bc.library.Recent()
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// Download handles POST /api/books/:id/download?format=epub
func (bc *BooksController) Download(c *gin.Context) {
	df, err := bc.library.RecordDownload(c.Request.Context(), c.Param("id"), entities.Format(c.Query("format")))
	if err != nil {
		respondDomainError(c, err, "record download")
		return
	}
	c.JSON(http.StatusOK, df)
}

// SaveReview handles PUT /api/books/:id/review
func (bc *BooksController) SaveReview(c *gin.Context) {
	var in library.ReviewInput
	if !bindJSON(c, &in) {
		return
	}
	review, err := bc.library.SaveReview(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondDomainError(c, err, "save review")
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReview handles DELETE /api/books/:id/review
func (bc *BooksController) DeleteReview(c *gin.Context) {
	if err := bc.library.DeleteReview(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err, "delete review")
		return
	}
	respondSuccess(c, "Review deleted")
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

// SetRating handles PUT /api/books/:id/rating; a rating of 0 clears it.
func (bc *BooksController) SetRating(c *gin.Context) {
	var req ratingRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := bc.library.SetRating(c.Request.Context(), c.Param("id"), req.Rating); err != nil {
		respondDomainError(c, err, "set rating")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": req.Rating})
}

// GetStats handles GET /api/stats
func (bc *BooksController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, bc.library.Stats())
}

// ClearData handles POST /api/data/clear
func (bc *BooksController) ClearData(c *gin.Context) {
	if err := bc.library.ClearData(c.Request.Context()); err != nil {
		respondDomainError(c, err, "clear data")
		return
	}
	respondSuccess(c, "Reading data cleared")
}
