package handler

import (
	"errors"
	"net/http"

	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/response"
	"github.com/certlab/certprep-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CatalogHandler handles test catalog endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListTests godoc
// GET /api/v1/tests
// Returns all tests in the catalog with their question counts.
func (h *CatalogHandler) ListTests(c *gin.Context) {
	tests, err := h.catalogService.ListTests(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// GetTest godoc
// GET /api/v1/tests/:test_id
// Returns one test. The path accepts either the test UUID or its URL slug.
func (h *CatalogHandler) GetTest(c *gin.Context) {
	param := c.Param("test_id")

	var test *model.Test
	var err error
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		test, err = h.catalogService.GetTest(c.Request.Context(), id)
	} else {
		test, err = h.catalogService.GetTestBySlug(c.Request.Context(), param)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}
