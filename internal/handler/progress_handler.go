package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/certlab/certprep-backend/internal/middleware"
	"github.com/certlab/certprep-backend/internal/response"
	"github.com/certlab/certprep-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProgressHandler handles durable progress endpoints: study records and the
// mock result history.
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// StudyProgress godoc
// GET /api/v1/tests/:test_id/study
// Returns the caller's per-question study records and aggregate stats.
func (h *ProgressHandler) StudyProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	records, err := h.progressService.StudyProgress(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	stats, err := h.progressService.StudyStats(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"records": records,
		"stats":   stats,
	})
}

// ResetStudy godoc
// DELETE /api/v1/tests/:test_id/study
// Wipes the caller's durable study history for one test.
func (h *ProgressHandler) ResetStudy(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.progressService.ResetStudy(c.Request.Context(), claims.UserID, testID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// MockHistory godoc
// GET /api/v1/tests/:test_id/results?page=1&per_page=20
// Returns the caller's mock results for one test, newest first.
func (h *ProgressHandler) MockHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	results, total, err := h.progressService.MockHistory(c.Request.Context(), claims.UserID, testID, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// MockDetail godoc
// GET /api/v1/results/:result_id
// Returns one mock result with its answers joined to question content.
func (h *ProgressHandler) MockDetail(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resultID, err := uuid.Parse(c.Param("result_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, answers, err := h.progressService.MockDetail(c.Request.Context(), claims.UserID, resultID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"result":  result,
		"answers": answers,
	})
}
