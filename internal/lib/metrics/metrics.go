package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var (
	UploadBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "image_upload_batches_total",
		Help: "Upload batches by result.",
	}, []string{"result"})

	FilesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "image_files_stored_total",
		Help: "Transformed image files written to disk.",
	})

	TransformDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "image_transform_duration_seconds",
		Help:    "Time spent decoding, resizing and encoding one image.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"format"})

	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "image_moderation_decisions_total",
		Help: "Moderation decisions applied, by decision.",
	}, []string{"decision"})

	BytesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "image_bytes_served_total",
		Help: "Bytes streamed to clients, by reference kind.",
	}, []string{"kind"})
)

// Handler serves the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
