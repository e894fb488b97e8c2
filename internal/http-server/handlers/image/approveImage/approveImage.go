package approveImage

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"imageModeration/internal/lib/api/response"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/logger/sl"
	"imageModeration/internal/services/moderator"
	"io"
	"log/slog"
	"net/http"
)

type Request struct {
	Approve *bool `json:"approve" validate:"required"`
}

type Response struct {
	response.Response
	Message  string `json:"message"`
	Approved bool   `json:"approved"`
	Purged   int64  `json:"purged"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageModerator
type ImageModerator interface {
	Moderate(ctx context.Context, imageID uuid.UUID, approve bool) (moderator.Result, error)
}

// New applies a moderation decision.
// @Summary      Approves or rejects an image
// @Description  approve=true marks the image approved. approve=false purges every image of the image's owner, files and records alike.
// @Tags         images
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Image ID"
// @Param        request  body  approveImage.Request  true  "Decision"
// @Success      200  {object}  approveImage.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /image/approve/{id} [post]
func New(log *slog.Logger, imageModerator ImageModerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.approveImage.New"

		log := log.With(slog.String("op", op))

		imageID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			log.Warn("failed to parse image ID", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid image ID"))
			return
		}

		var req Request

		err = render.DecodeJSON(r.Body, &req)
		if errors.Is(err, io.EOF) {
			log.Warn("request body is empty")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("empty request"))
			return
		}
		if err != nil {
			log.Warn("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Warn("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		log = log.With(slog.String("image_id", imageID.String()), slog.Bool("approve", *req.Approve))

		res, err := imageModerator.Moderate(r.Context(), imageID, *req.Approve)
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				log.Error("failed to moderate image", sl.Err(err))
			} else {
				log.Warn("moderation refused", sl.Err(err))
			}

			render.Status(r, status)
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		message := "image approved"
		if !*req.Approve {
			message = "owner images purged"
		}

		log.Info(message, slog.Int64("purged", res.Purged))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Message:  message,
			Approved: res.Approved,
			Purged:   res.Purged,
		})
	}
}
