package updateAvatar

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"imageModeration/internal/ingest"
	"imageModeration/internal/lib/api/response"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/logger/sl"
	"log/slog"
	"net/http"
)

const avatarField = "avatar"

type Response struct {
	response.Response
	AvatarPath string `json:"avatarPath"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=AvatarReplacer
type AvatarReplacer interface {
	Replace(ctx context.Context, username string, file ingest.File) (string, error)
}

// New replaces a user's avatar.
// @Summary      Uploads a new avatar
// @Description  Stores the file as is under the user's avatar directory and removes the previous one
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Param        avatar    formData  file    true  "Avatar (.png, .jpg, .jpeg, .webp)"
// @Success      200       {object}  updateAvatar.Response
// @Failure      400       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Failure      500       {object}  response.Response
// @Router       /user/update-avatar/{username} [post]
func New(log *slog.Logger, replacer AvatarReplacer, maxFileSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.updateAvatar.New"

		username := chi.URLParam(r, "username")

		log := log.With(slog.String("op", op), slog.String("username", username))

		if username == "" {
			log.Warn("username is empty")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid username"))
			return
		}

		form, err := ingest.Parse(w, r, avatarField, ingest.Limits{MaxFiles: 1, MaxFileSize: maxFileSize})
		if err != nil {
			log.Warn("failed to read avatar", sl.Err(err))
			render.Status(r, apperr.HTTPStatus(err))
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		if len(form.Files) == 0 {
			log.Warn("avatar file is missing")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("avatar file is required"))
			return
		}

		avatarPath, err := replacer.Replace(r.Context(), username, form.Files[0])
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				log.Error("failed to replace avatar", sl.Err(err))
			} else {
				log.Warn("avatar rejected", sl.Err(err))
			}

			render.Status(r, status)
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}

		log.Info("avatar updated", slog.String("avatar_path", avatarPath))

		render.JSON(w, r, Response{
			Response:   response.OK(),
			AvatarPath: avatarPath,
		})
	}
}
