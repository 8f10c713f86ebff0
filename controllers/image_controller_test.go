package controllers

import (
	"net/http"
	"testing"

	"github.com/roadcheck/inspection-api/models"
	"github.com/roadcheck/inspection-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMockStorage(t *testing.T) *services.MockStorageService {
	t.Helper()
	mock := services.NewMockStorageService()
	mock.SetAsMockForTesting()
	t.Cleanup(func() { services.SetStorageService(nil) })
	return mock
}

func TestCreateImageUploadURL(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	inspection := createInspection(t, db, "user_1")
	path := "/api/v1/inspections/" + itoa(inspection.ID) + "/images/upload-url"

	services.SetStorageService(nil)
	w, env := doRequest(t, router, http.MethodPost, path, map[string]any{"user_id": "user_1", "content_type": "image/png"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORAGE_DISABLED", env.Error.Code)

	mock := useMockStorage(t)

	w, env = doRequest(t, router, http.MethodPost, path, map[string]any{"user_id": "user_1", "content_type": "image/png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	upload := decodeData[services.PresignedUpload](t, env)
	assert.Equal(t, http.MethodPut, upload.Method)
	assert.Contains(t, mock.Uploads(), upload.Key)

	w, env = doRequest(t, router, http.MethodPost, path, map[string]any{"user_id": "user_1", "content_type": "text/plain"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONTENT_TYPE", env.Error.Code)

	w, env = doRequest(t, router, http.MethodPost, path, map[string]any{"user_id": "user_2", "content_type": "image/png"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestRegisterAndListImages(t *testing.T) {
	db := setupTestDB(t)
	useMockStorage(t)
	router := setupTestRouter("", "")
	inspection := createInspection(t, db, "user_1")
	path := "/api/v1/inspections/" + itoa(inspection.ID) + "/images"

	w, env := doRequest(t, router, http.MethodPost, path, map[string]any{
		"user_id":    "user_1",
		"public_id":  "inspections/" + itoa(inspection.ID) + "/cab.jpg",
		"format":     "jpg",
		"width":      1024,
		"height":     768,
		"bytes":      120000,
		"is_private": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	image := decodeData[models.InspectionImage](t, env)
	assert.Equal(t, inspection.ID, image.InspectionID)

	w, env = doRequest(t, router, http.MethodPost, path, map[string]any{
		"user_id":   "user_1",
		"public_id": "inspections/" + itoa(inspection.ID+1) + "/cab.jpg",
		"format":    "jpg",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PUBLIC_ID", env.Error.Code)

	w, env = doRequest(t, router, http.MethodPost, path, map[string]any{
		"user_id": "user_1",
		"url":     "https://cdn.example.com/a.gif",
		"format":  "gif",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE_FORMAT", env.Error.Code)

	w, env = doRequest(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	images := decodeData[[]models.InspectionImage](t, env)
	require.Len(t, images, 1)
	assert.Contains(t, images[0].ViewURL, "mock=get")

	w, env = doRequest(t, router, http.MethodGet, "/api/v1/inspections/single/"+itoa(inspection.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeData[models.Inspection](t, env)
	require.Len(t, got.Images, 1)
	assert.NotEmpty(t, got.Images[0].ViewURL)
}

func TestListImagesUnknownInspection(t *testing.T) {
	setupTestDB(t)
	router := setupTestRouter("", "")

	w, env := doRequest(t, router, http.MethodGet, "/api/v1/inspections/42/images", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "INSPECTION_NOT_FOUND", env.Error.Code)
}
