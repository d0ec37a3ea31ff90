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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-backend/internal/domains/attribute"
	"catalog-backend/internal/domains/hierarchy"
)

type stubService struct {
	attribute.Service
	setOptions func(id uuid.UUID, req attribute.SetOptionsReq) (*attribute.SetOptionsResp, error)
}

func (s *stubService) SetAttributeOptions(_ context.Context, id uuid.UUID, req attribute.SetOptionsReq) (*attribute.SetOptionsResp, error) {
	return s.setOptions(id, req)
}

func putOptions(t *testing.T, svc attribute.Service, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/attributes/:id/options", NewAttributeHandler(svc).SetOptions)

	req := httptest.NewRequest(http.MethodPut, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestSetOptions(t *testing.T) {
	id, opt := uuid.New(), uuid.New()

	t.Run("applied", func(t *testing.T) {
		svc := &stubService{setOptions: func(got uuid.UUID, req attribute.SetOptionsReq) (*attribute.SetOptionsResp, error) {
			assert.Equal(t, id, got)
			assert.Equal(t, []uuid.UUID{opt}, req.OptionIDs)
			return &attribute.SetOptionsResp{Added: []uuid.UUID{opt}}, nil
		}}
		w, _ := putOptions(t, svc, "/attributes/"+id.String()+"/options", `{"option_ids":["`+opt.String()+`"]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unresolved ids are listed", func(t *testing.T) {
		ghost := uuid.New()
		svc := &stubService{setOptions: func(uuid.UUID, attribute.SetOptionsReq) (*attribute.SetOptionsResp, error) {
			return nil, attribute.NewUnresolvedOptions(&hierarchy.UnresolvedIdentifiersError{IDs: []uuid.UUID{ghost}})
		}}
		w, body := putOptions(t, svc, "/attributes/"+id.String()+"/options", `{"option_ids":["`+ghost.String()+`"]}`)
		assert.Equal(t, http.StatusNotFound, w.Code)

		errBody := body["error"].(map[string]interface{})
		assert.Equal(t, attribute.CodeUnresolved, errBody["code"])
		details := errBody["details"].(map[string]interface{})
		assert.Equal(t, []interface{}{ghost.String()}, details["ids"])
	})

	t.Run("text attribute", func(t *testing.T) {
		svc := &stubService{setOptions: func(uuid.UUID, attribute.SetOptionsReq) (*attribute.SetOptionsResp, error) {
			return nil, attribute.ErrOptionsDisabled
		}}
		w, body := putOptions(t, svc, "/attributes/"+id.String()+"/options", `{"option_ids":[]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, attribute.CodeOptionsDisabled, body["error"].(map[string]interface{})["code"])
	})

	t.Run("bad id", func(t *testing.T) {
		w, _ := putOptions(t, &stubService{}, "/attributes/x/options", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
