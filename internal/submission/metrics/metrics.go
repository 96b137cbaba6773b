package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sangham/internal/submission/models"
)

// Metrics provides observability for the submission module.
type Metrics struct {
	Created  *prometheus.CounterVec
	Reviewed *prometheus.CounterVec
}

// New creates the submission metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Created: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sangham_submissions_created_total",
			Help: "Total number of submissions created, by initial status",
		}, []string{"status"}),
		Reviewed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sangham_submissions_reviewed_total",
			Help: "Total number of admin review decisions",
		}, []string{"decision"}),
	}
}

func (m *Metrics) IncrementCreated(status models.Status) {
	m.Created.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) IncrementApproved() {
	m.Reviewed.WithLabelValues("approved").Inc()
}

func (m *Metrics) IncrementRejected() {
	m.Reviewed.WithLabelValues("rejected").Inc()
}
