package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"catalog-backend/internal/domains/product"
)

type mediaStub struct {
	product.Service
	got    []byte
	addErr error
	filter *product.ProductFilter
}

func (s *mediaStub) AddImage(_ context.Context, id uuid.UUID, data []byte) (*product.ProductResp, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.got = data
	return &product.ProductResp{ID: id, Images: []string{"https://cdn.test/x.jpg"}}, nil
}

func (s *mediaStub) Export(_ context.Context, filter *product.ProductFilter) (*excelize.File, error) {
	s.filter = filter
	f := excelize.NewFile()
	_ = f.SetCellValue("Sheet1", "A1", "ID")
	return f, nil
}

func mediaRouter(svc product.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProductHandler(svc)
	r := gin.New()
	r.POST("/products/:id/images", h.UploadImage)
	r.GET("/products/export", h.Export)
	return r
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	id := uuid.New()

	t.Run("passes file bytes to the service", func(t *testing.T) {
		svc := &mediaStub{}
		body, ct := multipartBody(t, "file", []byte("raw-image"))
		req := httptest.NewRequest(http.MethodPost, "/products/"+id.String()+"/images", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		mediaRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, []byte("raw-image"), svc.got)
	})

	t.Run("missing file", func(t *testing.T) {
		body, ct := multipartBody(t, "other", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/products/"+id.String()+"/images", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		mediaRouter(&mediaStub{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage disabled", func(t *testing.T) {
		svc := &mediaStub{addErr: product.ErrStorageDisabled}
		body, ct := multipartBody(t, "file", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/products/"+id.String()+"/images", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		mediaRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		require.NotNil(t, env.Error)
		assert.Equal(t, product.CodeStorageDisabled, env.Error.Code)
	})
}

func TestExport(t *testing.T) {
	svc := &mediaStub{}
	brand := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/products/export?brand_id="+brand.String(), nil)
	w := httptest.NewRecorder()
	mediaRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	require.NotNil(t, svc.filter)
	assert.Equal(t, brand, *svc.filter.BrandID)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	v, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", v)
}
