package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/category"
	"catalog-backend/internal/shared/response"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/pkg/logger"
)

type CategoryHandler struct {
	service category.CategoryService
}

func NewCategoryHandler(svc category.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// ========== POST /v1/categories ==========
func (h *CategoryHandler) Create(c *gin.Context) {
	var req category.CreateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// ========== GET /v1/categories/:id ==========
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== GET /v1/categories/by-slug/:slug ==========
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		response.BadRequest(c, "invalid slug")
		return
	}
	resp, err := h.service.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== GET /v1/categories?is_active=&parent_id=&root=&q=&limit=&offset= ==========
func (h *CategoryHandler) GetAll(c *gin.Context) {
	filter := &category.CategoryFilter{Search: c.Query("q")}

	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "is_active must be a boolean")
			return
		}
		filter.IsActive = &active
	}
	parentID, err := utils.ParseOptionalUUID(c.Query("parent_id"))
	if err != nil {
		response.BadRequest(c, "parent_id must be a UUID")
		return
	}
	filter.ParentID = parentID
	filter.RootOnly = c.Query("root") == "true"
	filter.Limit, filter.Offset = utils.ParsePage(c.Query("limit"), c.Query("offset"))

	resp, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Categories, &response.Meta{
		Limit: resp.Limit,
		Total: resp.Total,
	})
}

// ========== GET /v1/categories/tree ==========
func (h *CategoryHandler) GetTree(c *gin.Context) {
	items, err := h.service.GetTree(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ========== GET /v1/categories/:id/breadcrumb ==========
func (h *CategoryHandler) GetBreadcrumb(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetBreadcrumb(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== GET /v1/categories/:id/subcategories ==========
func (h *CategoryHandler) GetSubcategories(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetSubcategories(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== PUT /v1/categories/:id ==========
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req category.UpdateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== PATCH /v1/categories/:id/parent ==========
func (h *CategoryHandler) MoveToParent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req category.MoveToParentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	resp, err := h.service.MoveToParent(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== POST /v1/categories/bulk/move ==========
func (h *CategoryHandler) BulkMove(c *gin.Context) {
	var req category.BulkMoveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	resp, err := h.service.BulkMove(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== PUT /v1/categories/:id/subcategories ==========
func (h *CategoryHandler) SetSubcategories(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req category.SetSubcategoriesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	resp, err := h.service.SetSubcategories(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== POST /v1/categories/:id/activate ==========
func (h *CategoryHandler) Activate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.Activate(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== POST /v1/categories/:id/deactivate ==========
func (h *CategoryHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========== DELETE /v1/categories/:id ==========
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ========== POST /v1/categories/bulk/activate ==========
func (h *CategoryHandler) BulkActivate(c *gin.Context) {
	h.bulk(c, h.service.BulkActivate)
}

// ========== POST /v1/categories/bulk/deactivate ==========
func (h *CategoryHandler) BulkDeactivate(c *gin.Context) {
	h.bulk(c, h.service.BulkDeactivate)
}

// ========== DELETE /v1/categories/bulk ==========
func (h *CategoryHandler) BulkDelete(c *gin.Context) {
	h.bulk(c, h.service.BulkDelete)
}

func (h *CategoryHandler) bulk(c *gin.Context, fn func(ctx context.Context, req category.BulkCategoryIDsReq) (*category.BulkActionResp, error)) {
	var req category.BulkCategoryIDsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	resp, err := fn(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *CategoryHandler) writeError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, err)
		return
	}

	status := category.GetHTTPStatusCode(err)
	var ce *category.CategoryError
	if status < http.StatusInternalServerError && errors.As(err, &ce) {
		response.ErrorWithDetails(c, status, ce.Code, ce.Message, ce.Details)
		return
	}

	logger.ErrorWith("category request failed", err, map[string]interface{}{
		"path": c.FullPath(),
	})
	response.InternalServerError(c, "internal error")
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
