package getImage

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"imageModeration/internal/lib/api/response"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/logger/sl"
	"imageModeration/internal/services/fileserver"
	"log/slog"
	"net/http"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageOpener
type ImageOpener interface {
	OpenImage(ctx context.Context, id uuid.UUID) (*fileserver.File, error)
}

// New streams the stored bytes of an image.
// @Summary      Downloads an image
// @Description  Streams the transformed file of an image record
// @Tags         images
// @Produce      image/jpeg
// @Produce      image/png
// @Param        id   path      string  true  "Image ID"
// @Success      200  {file}    binary
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /image/get-images/{id} [get]
func New(log *slog.Logger, imageOpener ImageOpener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.getImage.New"

		log := log.With(slog.String("op", op))

		idStr := chi.URLParam(r, "id")
		imageID, err := uuid.Parse(idStr)
		if err != nil {
			log.Warn("failed to parse image ID", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid image ID"))
			return
		}

		log = log.With(slog.String("image_id", imageID.String()))

		file, err := imageOpener.OpenImage(r.Context(), imageID)
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				log.Error("failed to open image", sl.Err(err))
			} else {
				log.Warn("image not served", sl.Err(err))
			}

			render.Status(r, status)
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}
		defer file.Close()

		n, err := fileserver.Stream(w, file)
		if err != nil {
			log.Error("image stream interrupted", slog.Int64("bytes", n), sl.Err(err))
			return
		}

		log.Debug("image served", slog.Int64("bytes", n))
	}
}
