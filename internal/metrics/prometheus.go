package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subextract_frames_sampled_total",
		Help: "Total number of sampled frames sent through recognition",
	})

	RecognitionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subextract_recognition_calls_total",
		Help: "Recognizer calls, by outcome (text, empty, error)",
	}, []string{"outcome"})

	RecognitionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "subextract_recognition_duration_seconds",
		Help:    "Latency of a single recognizer call",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
	})

	FilteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subextract_filtered_replies_total",
		Help: "Recognizer replies suppressed as non-subtitle descriptions",
	})

	EntriesEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subextract_entries_emitted_total",
		Help: "Subtitle entries produced by the segmenter",
	})

	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subextract_jobs_total",
		Help: "Extraction jobs by terminal status",
	}, []string{"status"})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "subextract_active_jobs",
		Help: "Extraction jobs currently running",
	})
)
