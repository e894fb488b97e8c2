package ingest_test

import (
	"bytes"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"image"
	"image/png"
	"imageModeration/internal/ingest"
	"imageModeration/internal/lib/apperr"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
)

type part struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	return buf.Bytes()
}

func newRequest(t *testing.T, parts []part, values map[string]string) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	for k, v := range values {
		require.NoError(t, writer.WriteField(k, v))
	}

	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, p.field, p.name))
		h.Set("Content-Type", p.contentType)

		w, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/image/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req
}

func TestParse(t *testing.T) {
	img := pngBytes(t)
	limits := ingest.Limits{MaxFiles: 3, MaxFileSize: 1024}

	tests := []struct {
		name       string
		parts      []part
		values     map[string]string
		limits     ingest.Limits
		wantFiles  int
		wantErrMsg string
	}{
		{
			name: "collects files and fields",
			parts: []part{
				{field: "images", name: "a.png", contentType: "image/png", data: img},
				{field: "images", name: "b.png", contentType: "image/png", data: img},
			},
			values:    map[string]string{"userId": "42"},
			limits:    limits,
			wantFiles: 2,
		},
		{
			name: "ignores other file fields",
			parts: []part{
				{field: "images", name: "a.png", contentType: "image/png", data: img},
				{field: "other", name: "b.png", contentType: "image/png", data: img},
			},
			limits:    limits,
			wantFiles: 1,
		},
		{
			name: "too many files",
			parts: []part{
				{field: "images", name: "a.png", contentType: "image/png", data: img},
				{field: "images", name: "b.png", contentType: "image/png", data: img},
			},
			limits:     ingest.Limits{MaxFiles: 1, MaxFileSize: 1024},
			wantErrMsg: "too many files",
		},
		{
			name: "file too large",
			parts: []part{
				{field: "images", name: "big.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, 2048)},
			},
			limits:     limits,
			wantErrMsg: "file too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(t, tt.parts, tt.values)

			form, err := ingest.Parse(httptest.NewRecorder(), req, "images", tt.limits)
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				assert.Equal(t, tt.wantErrMsg, apperr.Message(err))
				return
			}

			require.NoError(t, err)
			assert.Len(t, form.Files, tt.wantFiles)
			for k, v := range tt.values {
				assert.Equal(t, v, form.Value(k))
			}
		})
	}
}

func TestParse_DetectsContent(t *testing.T) {
	req := newRequest(t, []part{
		{field: "images", name: "real.png", contentType: "image/png; name=real", data: pngBytes(t)},
		{field: "images", name: "fake.png", contentType: "image/png", data: []byte("hello there")},
	}, nil)

	form, err := ingest.Parse(httptest.NewRecorder(), req, "images", ingest.Limits{MaxFiles: 12, MaxFileSize: 1 << 20})
	require.NoError(t, err)
	require.Len(t, form.Files, 2)

	assert.Equal(t, "real.png", form.Files[0].Name)
	assert.Equal(t, "image/png", form.Files[0].ContentType)
	assert.Equal(t, "image/png", form.Files[0].Sniffed)

	assert.Equal(t, "image/png", form.Files[1].ContentType)
	assert.True(t, strings.HasPrefix(form.Files[1].Sniffed, "text/plain"))
}

func TestParse_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/image/upload", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	_, err := ingest.Parse(httptest.NewRecorder(), req, "images", ingest.Limits{MaxFiles: 12, MaxFileSize: 1 << 20})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
