package metrics

import (
	"context"
	"net/http"

	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fileworks"

// Observer exposes task lifecycle metrics. It is meant to be registered as
// an orchestrator observer.
type Observer struct {
	gatherer prometheus.Gatherer

	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
	running  *prometheus.GaugeVec
	paths    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewObserver(registry *prometheus.Registry) (*Observer, error) {
	o := &Observer{
		gatherer: registry,
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_started_total",
			Help:      "Number of started tasks",
		}, []string{"type", "function"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_finished_total",
			Help:      "Number of finished tasks, by result status",
		}, []string{"type", "function", "status"}),
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_running",
			Help:      "Number of running tasks",
		}, []string{"type", "function"}),
		paths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_results_total",
			Help:      "Number of processed paths, by status",
		}, []string{"function", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of finished tasks",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"type", "function"}),
	}

	collectors := []prometheus.Collector{o.started, o.finished, o.running, o.paths, o.duration}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "could not register collector")
		}
	}

	return o, nil
}

// TaskStarted implements orchestrator.Observer.
func (o *Observer) TaskStarted(ctx context.Context, t *task.Task) {
	snapshot := t.Snapshot()

	o.started.WithLabelValues(string(snapshot.Type), snapshot.Function).Inc()
	o.running.WithLabelValues(string(snapshot.Type), snapshot.Function).Inc()
}

// TaskFinished implements orchestrator.Observer.
func (o *Observer) TaskFinished(ctx context.Context, t *task.Task) {
	snapshot := t.Snapshot()

	status := string(snapshot.Result.Status)
	if display := snapshot.Result.Display; display != nil {
		status = string(task.StatusError)
		if display.IsOK {
			status = string(task.StatusOK)
		}
	}

	o.finished.WithLabelValues(string(snapshot.Type), snapshot.Function, status).Inc()

	// Tasks failing before start never incremented the gauge
	if !snapshot.StartedAt.IsZero() {
		o.running.WithLabelValues(string(snapshot.Type), snapshot.Function).Dec()
	}

	for _, r := range snapshot.Result.PathResults {
		o.paths.WithLabelValues(snapshot.Function, string(r.Status)).Inc()
	}

	if !snapshot.StartedAt.IsZero() && !snapshot.FinishedAt.IsZero() {
		o.duration.WithLabelValues(string(snapshot.Type), snapshot.Function).Observe(snapshot.FinishedAt.Sub(snapshot.StartedAt).Seconds())
	}
}

func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})
}
