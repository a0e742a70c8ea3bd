package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readworld/internal/account"
	"github.com/mrlokans/readworld/internal/annotations"
	"github.com/mrlokans/readworld/internal/library"
	"github.com/mrlokans/readworld/internal/reader"
	"github.com/mrlokans/readworld/internal/validation"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 without exposing it.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// errorStatuses maps domain errors to a status and machine-readable code.
var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{library.ErrBookNotFound, http.StatusNotFound, "book_not_found"},
	{reader.ErrBookNotFound, http.StatusNotFound, "book_not_found"},
	{annotations.ErrNotFound, http.StatusNotFound, "annotation_not_found"},
	{library.ErrFormatUnavailable, http.StatusNotFound, "format_unavailable"},
	{reader.ErrNotOpen, http.StatusConflict, "not_open"},
	{reader.ErrNoPosition, http.StatusConflict, "no_position"},
	{reader.ErrSuperseded, http.StatusConflict, "superseded"},
	{reader.ErrUnknownFormat, http.StatusUnprocessableEntity, "unknown_format"},
	{reader.ErrDocumentLoad, http.StatusBadGateway, "document_load"},
	{account.ErrNotLoggedIn, http.StatusUnauthorized, "not_logged_in"},
	{account.ErrUnavailable, http.StatusServiceUnavailable, "account_unavailable"},
	{library.ErrEmptyReview, http.StatusBadRequest, "empty_review"},
	{library.ErrInvalidRating, http.StatusBadRequest, "invalid_rating"},
	{annotations.ErrInvalidColor, http.StatusBadRequest, "invalid_color"},
	{annotations.ErrEmptyNote, http.StatusBadRequest, "empty_note"},
	{annotations.ErrInvalidPage, http.StatusBadRequest, "invalid_page"},
}

// respondDomainError translates err into a response. Unknown errors become a 500.
func respondDomainError(c *gin.Context, err error, context string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Code: "invalid_input"})
		return
	}
	var apiErr *account.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		respondError(c, status, "account_api", apiErr.Message)
		return
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			respondError(c, e.status, e.code, err.Error())
			return
		}
	}
	respondInternalError(c, err, context)
}

// --- Success Response Helpers ---

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 for queued work.
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parsePageParam extracts a positive page number from URL parameters.
// Responds with a 400 and returns false when it is missing or not positive.
func parsePageParam(c *gin.Context, paramName string) (int, bool) {
	page, err := strconv.Atoi(c.Param(paramName))
	if err != nil || page < 1 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return page, true
}

// parseIntQuery parses an integer query parameter, returning defaultVal if missing or invalid.
func parseIntQuery(c *gin.Context, paramName string, defaultVal int) int {
	valStr := c.Query(paramName)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// bindJSON decodes the request body into dst, responding with a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
