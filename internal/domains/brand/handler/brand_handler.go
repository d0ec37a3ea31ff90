package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/brand"
	"catalog-backend/internal/shared/response"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/pkg/logger"
)

type BrandHandler struct {
	service brand.Service
}

func NewBrandHandler(service brand.Service) *BrandHandler {
	return &BrandHandler{service: service}
}

// Create handles POST /brands
func (h *BrandHandler) Create(c *gin.Context) {
	var req brand.CreateBrandReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Get handles GET /brands/:id
func (h *BrandHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a UUID")
		return
	}
	result, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GetBySlug handles GET /brands/by-slug/:slug
func (h *BrandHandler) GetBySlug(c *gin.Context) {
	result, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// List handles GET /brands?q=&limit=&offset=
func (h *BrandHandler) List(c *gin.Context) {
	limit, offset := utils.ParsePage(c.Query("limit"), c.Query("offset"))
	result, err := h.service.List(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, result.Brands, &response.Meta{
		Limit: result.Limit,
		Total: result.Total,
	})
}

// Update handles PUT /brands/:id
func (h *BrandHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a UUID")
		return
	}
	var req brand.UpdateBrandReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Delete handles DELETE /brands/:id
func (h *BrandHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a UUID")
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, err)
		return
	}
	status := brand.GetHTTPStatusCode(err)
	var be *brand.BrandError
	if status < http.StatusInternalServerError && errors.As(err, &be) {
		response.ErrorResponse(c, status, be.Code, be.Message)
		return
	}
	logger.ErrorWith("brand request failed", err, map[string]interface{}{"path": c.FullPath()})
	response.InternalServerError(c, "internal error")
}
