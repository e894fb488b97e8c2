package uploadImages

import (
	"context"
	"github.com/go-chi/render"
	"imageModeration/internal/ingest"
	"imageModeration/internal/lib/api/response"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/logger/sl"
	"imageModeration/internal/models"
	"imageModeration/internal/processor"
	"log/slog"
	"net/http"
)

const (
	filesField = "images"
	ownerField = "userId"
)

type Response struct {
	response.Response
	Count int            `json:"count"`
	Items []models.Image `json:"items"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageUploader
type ImageUploader interface {
	Upload(ctx context.Context, ownerID string, files []ingest.File, opts processor.Options) ([]models.Image, error)
}

// New uploads a batch of images for moderation.
// @Summary      Uploads a batch of images
// @Description  Transforms 2 to 12 jpeg/png/webp files and stores them as pending records of the user
// @Tags         images
// @Accept       multipart/form-data
// @Produce      json
// @Param        images  formData  file    true   "Image files"
// @Param        userId  formData  string  true   "Owner user ID"
// @Param        format  query     string  false  "Output format (jpg, jpeg, png)"
// @Param        w       query     int     false  "Max width in pixels (default 1280, max 4096)"
// @Param        q       query     int     false  "JPEG quality (default 80, max 100)"
// @Success      201  {object}  uploadImages.Response
// @Failure      400  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /image/upload [post]
func New(log *slog.Logger, uploader ImageUploader, limits ingest.Limits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.uploadImages.New"

		log := log.With(
			slog.String("op", op),
		)

		query := r.URL.Query()

		opts, err := processor.ParseOptions(query.Get("format"), query.Get("w"), query.Get("q"))
		if err != nil {
			log.Warn("invalid upload options", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("unsupported format"))
			return
		}

		form, err := ingest.Parse(w, r, filesField, limits)
		if err != nil {
			log.Warn("failed to read upload", sl.Err(err))
			render.Status(r, apperr.HTTPStatus(err))
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		ownerID := form.Value(ownerField)
		if ownerID == "" {
			ownerID = query.Get(ownerField)
		}

		images, err := uploader.Upload(r.Context(), ownerID, form.Files, opts)
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				log.Error("failed to upload images", sl.Err(err))
			} else {
				log.Warn("upload rejected", sl.Err(err))
			}

			render.Status(r, status)
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		log.Info("images uploaded", slog.String("owner_id", ownerID), slog.Int("count", len(images)))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: response.OK(),
			Count:    len(images),
			Items:    images,
		})
	}
}
