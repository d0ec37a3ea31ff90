package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-backend/internal/domains/hierarchy"
	"catalog-backend/internal/domains/product"
)

type stubService struct {
	product.Service
	create     func(req product.CreateProductReq) (*product.ProductResp, error)
	list       func(filter *product.ProductFilter) (*product.ProductListResp, error)
	setOptions func(id uuid.UUID, req product.SetOptionsReq) (*product.SetOptionsResp, error)
}

func (s *stubService) Create(_ context.Context, req product.CreateProductReq) (*product.ProductResp, error) {
	return s.create(req)
}

func (s *stubService) List(_ context.Context, filter *product.ProductFilter) (*product.ProductListResp, error) {
	return s.list(filter)
}

func (s *stubService) SetProductOptions(_ context.Context, id uuid.UUID, req product.SetOptionsReq) (*product.SetOptionsResp, error) {
	return s.setOptions(id, req)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func serve(t *testing.T, svc product.Service, method, path, body string) (int, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewProductHandler(svc)
	r := gin.New()
	r.POST("/products", h.Create)
	r.GET("/products", h.List)
	r.PUT("/products/:id/options", h.SetOptions)

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func TestCreate_DecodesDecimalPrice(t *testing.T) {
	var got product.CreateProductReq
	svc := &stubService{create: func(req product.CreateProductReq) (*product.ProductResp, error) {
		got = req
		return &product.ProductResp{ID: uuid.New(), Price: req.Price}, nil
	}}

	code, env := serve(t, svc, http.MethodPost, "/products", `{"name":"Tee","sku":"T1","price":"12.50"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")))
}

func TestList_ParsesFilter(t *testing.T) {
	catID := uuid.New()
	var got *product.ProductFilter
	svc := &stubService{list: func(filter *product.ProductFilter) (*product.ProductListResp, error) {
		got = filter
		return &product.ProductListResp{Products: []product.ProductResp{}, Limit: filter.Limit}, nil
	}}

	code, _ := serve(t, svc, http.MethodGet,
		"/products?category_id="+catID.String()+"&include_subcategories=true&is_active=false&min_price=5&max_price=20.5&limit=10", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, got)
	assert.Equal(t, &catID, got.CategoryID)
	assert.True(t, got.IncludeSubcategories)
	require.NotNil(t, got.IsActive)
	assert.False(t, *got.IsActive)
	assert.True(t, got.MaxPrice.Equal(decimal.RequireFromString("20.5")))
	assert.Equal(t, 10, got.Limit)
}

func TestList_RejectsBadFilter(t *testing.T) {
	svc := &stubService{}
	for _, q := range []string{
		"category_id=nope",
		"brand_id=1",
		"include_subcategories=maybe",
		"min_price=abc",
		"min_price=10&max_price=5",
	} {
		code, env := serve(t, svc, http.MethodGet, "/products?"+q, "")
		assert.Equal(t, http.StatusBadRequest, code, q)
		assert.False(t, env.Success, q)
	}
}

func TestSetOptions_UnresolvedListsIDs(t *testing.T) {
	ghost := uuid.New()
	svc := &stubService{setOptions: func(id uuid.UUID, req product.SetOptionsReq) (*product.SetOptionsResp, error) {
		return nil, product.NewUnresolvedOptions(&hierarchy.UnresolvedIdentifiersError{IDs: []uuid.UUID{ghost}})
	}}

	code, env := serve(t, svc, http.MethodPut, "/products/"+uuid.NewString()+"/options",
		`{"option_ids":["`+ghost.String()+`"]}`)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, product.CodeUnresolved, env.Error.Code)
	assert.Equal(t, []interface{}{ghost.String()}, env.Error.Details["ids"])
}

func TestSetOptions_BadID(t *testing.T) {
	code, _ := serve(t, &stubService{}, http.MethodPut, "/products/abc/options", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
