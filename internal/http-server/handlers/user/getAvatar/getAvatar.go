package getAvatar

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"imageModeration/internal/lib/api/response"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/logger/sl"
	"imageModeration/internal/services/fileserver"
	"log/slog"
	"net/http"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=AvatarOpener
type AvatarOpener interface {
	OpenAvatar(ctx context.Context, username string) (*fileserver.File, error)
}

// New streams a user's avatar.
// @Summary      Downloads an avatar
// @Tags         users
// @Produce      image/jpeg
// @Produce      image/png
// @Produce      image/webp
// @Param        username  path      string  true  "Username"
// @Success      200       {file}    binary
// @Failure      400       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Failure      500       {object}  response.Response
// @Router       /user/get-avatar/{username} [get]
func New(log *slog.Logger, avatarOpener AvatarOpener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.getAvatar.New"

		username := chi.URLParam(r, "username")

		log := log.With(slog.String("op", op), slog.String("username", username))

		if username == "" {
			log.Warn("username is empty")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid username"))
			return
		}

		file, err := avatarOpener.OpenAvatar(r.Context(), username)
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				log.Error("failed to open avatar", sl.Err(err))
			} else {
				log.Warn("avatar not served", sl.Err(err))
			}

			render.Status(r, status)
			render.JSON(w, r, response.Error(apperr.Message(err)))
			return
		}
		defer file.Close()

		if n, err := fileserver.Stream(w, file); err != nil {
			log.Error("avatar stream interrupted", slog.Int64("bytes", n), sl.Err(err))
		}
	}
}
