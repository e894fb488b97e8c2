package getImage_test

import (
	"bytes"
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"imageModeration/internal/http-server/handlers/image/getImage"
	"imageModeration/internal/http-server/handlers/image/getImage/mocks"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/services/fileserver"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetImage(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))

	testUUID, _ := uuid.NewRandom()
	content := []byte("jpeg bytes")

	tests := []struct {
		name           string
		imageID        string
		mockFile       bool
		mockErr        error
		expectedStatus int
		expectedType   string
		expectedBody   string
	}{
		{
			name:           "Success",
			imageID:        testUUID.String(),
			mockFile:       true,
			expectedStatus: http.StatusOK,
			expectedType:   "image/jpeg",
			expectedBody:   string(content),
		},
		{
			name:           "Invalid UUID",
			imageID:        "invalid-uuid",
			expectedStatus: http.StatusBadRequest,
			expectedType:   "application/json",
			expectedBody:   `{"status":"Error","error":"invalid image ID"}`,
		},
		{
			name:           "Not Found",
			imageID:        testUUID.String(),
			mockErr:        apperr.NotFound("image not found"),
			expectedStatus: http.StatusNotFound,
			expectedType:   "application/json",
			expectedBody:   `{"status":"Error","error":"image not found"}`,
		},
		{
			name:           "Confinement",
			imageID:        testUUID.String(),
			mockErr:        apperr.Confinement(errors.New("path escapes root")),
			expectedStatus: http.StatusBadRequest,
			expectedType:   "application/json",
			expectedBody:   `{"status":"Error","error":"invalid path"}`,
		},
		{
			name:           "Internal Error",
			imageID:        testUUID.String(),
			mockErr:        apperr.Storage("failed to load image", errors.New("db error")),
			expectedStatus: http.StatusInternalServerError,
			expectedType:   "application/json",
			expectedBody:   `{"status":"Error","error":"failed to load image"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			openerMock := mocks.NewImageOpener(t)

			if tt.mockFile {
				openerMock.On("OpenImage", mock.Anything, testUUID).Return(&fileserver.File{
					Kind:        fileserver.KindImage,
					Name:        "1-cat_0.jpg",
					ContentType: "image/jpeg",
					Size:        int64(len(content)),
					ModTime:     time.Now(),
					Body:        io.NopCloser(bytes.NewReader(content)),
				}, nil).Once()
			} else if tt.mockErr != nil {
				openerMock.On("OpenImage", mock.Anything, testUUID).Return(nil, tt.mockErr).Once()
			}

			req, err := http.NewRequest(http.MethodGet, "/image/get-images/"+tt.imageID, nil)
			require.NoError(t, err)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.imageID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rr := httptest.NewRecorder()

			handler := getImage.New(log, openerMock)
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)
			require.Contains(t, rr.Header().Get("Content-Type"), tt.expectedType)
			if tt.expectedType == "application/json" {
				require.JSONEq(t, tt.expectedBody, rr.Body.String())
			} else {
				require.Equal(t, tt.expectedBody, rr.Body.String())
				require.Equal(t, "public, max-age=86400", rr.Header().Get("Cache-Control"))
			}
		})
	}
}
