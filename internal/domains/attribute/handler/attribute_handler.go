package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/attribute"
	"catalog-backend/internal/shared/response"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/pkg/logger"
)

type AttributeHandler struct {
	service attribute.Service
}

func NewAttributeHandler(service attribute.Service) *AttributeHandler {
	return &AttributeHandler{service: service}
}

// CreateAttribute handles POST /attributes
func (h *AttributeHandler) CreateAttribute(c *gin.Context) {
	var req attribute.CreateAttributeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.service.CreateAttribute(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// GetAttribute handles GET /attributes/:id
func (h *AttributeHandler) GetAttribute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a UUID")
		return
	}
	result, err := h.service.GetAttribute(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListAttributes handles GET /attributes?limit=&offset=
func (h *AttributeHandler) ListAttributes(c *gin.Context) {
	limit, offset := utils.ParsePage(c.Query("limit"), c.Query("offset"))
	result, err := h.service.ListAttributes(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, result.Attributes, &response.Meta{
		Limit: result.Limit,
		Total: result.Total,
	})
}

// SetOptions handles PUT /attributes/:id/options
func (h *AttributeHandler) SetOptions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a UUID")
		return
	}
	var req attribute.SetOptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.service.SetAttributeOptions(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// CreateOption handles POST /attribute-options
func (h *AttributeHandler) CreateOption(c *gin.Context) {
	var req attribute.CreateOptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.service.CreateOption(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// ListOptions handles GET /attribute-options?q=&limit=&offset=
func (h *AttributeHandler) ListOptions(c *gin.Context) {
	limit, offset := utils.ParsePage(c.Query("limit"), c.Query("offset"))
	result, err := h.service.ListOptions(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, result.Options, &response.Meta{
		Limit: result.Limit,
		Total: result.Total,
	})
}

func writeError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, err)
		return
	}
	status := attribute.GetHTTPStatusCode(err)
	var ae *attribute.AttributeError
	if status < http.StatusInternalServerError && errors.As(err, &ae) {
		response.ErrorWithDetails(c, status, ae.Code, ae.Message, ae.Details)
		return
	}
	logger.ErrorWith("attribute request failed", err, map[string]interface{}{"path": c.FullPath()})
	response.InternalServerError(c, "internal error")
}
