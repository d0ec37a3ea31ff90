package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"catalog-backend/internal/domains/product"
	"catalog-backend/internal/infrastructure/storage"
	"catalog-backend/internal/shared/response"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/pkg/logger"
)

type ProductHandler struct {
	service product.Service
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req product.CreateProductReq
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

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GetBySlug handles GET /products/by-slug/:slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	result, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// List handles GET /products?category_id=&include_subcategories=&brand_id=&is_active=&q=&min_price=&max_price=&limit=&offset=
func (h *ProductHandler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, result.Products, &response.Meta{
		Limit: result.Limit,
		Total: result.Total,
	})
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req product.UpdateProductReq
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

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetOptions handles PUT /products/:id/options
func (h *ProductHandler) SetOptions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req product.SetOptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.service.SetProductOptions(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// UploadImage handles POST /products/:id/images (multipart field "file")
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required (multipart/form-data)")
		return
	}
	if file.Size > storage.DefaultMaxImageBytes {
		response.BadRequest(c, "image exceeds 5MB")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, storage.DefaultMaxImageBytes+1))
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}

	result, err := h.service.AddImage(c.Request.Context(), id, data)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Export handles GET /products/export and streams an .xlsx workbook. It
// accepts the same filters as List; limit and offset are ignored.
func (h *ProductHandler) Export(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	f, err := h.service.Export(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	name := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Error("failed to stream product export", err)
	}
}

func parseFilter(c *gin.Context) (*product.ProductFilter, error) {
	filter := &product.ProductFilter{Search: c.Query("q")}
	filter.Limit, filter.Offset = utils.ParsePage(c.Query("limit"), c.Query("offset"))

	var err error
	if filter.CategoryID, err = utils.ParseOptionalUUID(c.Query("category_id")); err != nil {
		return nil, errors.New("category_id must be a UUID")
	}
	if filter.BrandID, err = utils.ParseOptionalUUID(c.Query("brand_id")); err != nil {
		return nil, errors.New("brand_id must be a UUID")
	}
	if v := c.Query("include_subcategories"); v != "" {
		if filter.IncludeSubcategories, err = strconv.ParseBool(v); err != nil {
			return nil, errors.New("include_subcategories must be a boolean")
		}
	}
	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("is_active must be a boolean")
		}
		filter.IsActive = &active
	}
	if v := c.Query("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errors.New("min_price must be a number")
		}
		filter.MinPrice = &d
	}
	if v := c.Query("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errors.New("max_price must be a number")
		}
		filter.MaxPrice = &d
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, errors.New("min_price must be <= max_price")
	}
	return filter, nil
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, err)
		return
	}
	status := product.GetHTTPStatusCode(err)
	var pe *product.ProductError
	if status != http.StatusInternalServerError && errors.As(err, &pe) {
		response.ErrorWithDetails(c, status, pe.Code, pe.Message, pe.Details)
		return
	}
	logger.ErrorWith("product request failed", err, map[string]interface{}{"path": c.FullPath()})
	response.InternalServerError(c, "internal error")
}
