package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "imageModeration/docs"
	"imageModeration/internal/http-server/handlers/image/approveImage"
	"imageModeration/internal/http-server/handlers/image/getImage"
	"imageModeration/internal/http-server/handlers/image/uploadImages"
	"imageModeration/internal/http-server/handlers/user/getAvatar"
	"imageModeration/internal/http-server/handlers/user/updateAvatar"
	"imageModeration/internal/http-server/middleware/mwlogger"
	"imageModeration/internal/ingest"
	"imageModeration/internal/lib/api/response"
	"imageModeration/internal/lib/metrics"
	"log/slog"
	"net/http"
)

type FileOpener interface {
	getImage.ImageOpener
	getAvatar.AvatarOpener
}

type Deps struct {
	Uploader  uploadImages.ImageUploader
	Moderator approveImage.ImageModerator
	Files     FileOpener
	Avatars   updateAvatar.AvatarReplacer
	Limits    ingest.Limits
}

func New(log *slog.Logger, deps Deps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	})
	router.Handle("/metrics", metrics.Handler())
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/image", func(r chi.Router) {
		r.Post("/upload", uploadImages.New(log, deps.Uploader, deps.Limits))
		r.Post("/approve/{id}", approveImage.New(log, deps.Moderator))
		r.Get("/get-images/{id}", getImage.New(log, deps.Files))
	})

	router.Route("/user", func(r chi.Router) {
		r.Get("/get-avatar/{username}", getAvatar.New(log, deps.Files))
		r.Post("/update-avatar/{username}", updateAvatar.New(log, deps.Avatars, deps.Limits.MaxFileSize))
	})

	return router
}
