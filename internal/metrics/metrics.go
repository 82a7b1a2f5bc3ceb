package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics содержит Prometheus-метрики сервиса
type Metrics struct {
	IncidentsCreated   *prometheus.CounterVec
	ClaimAttempts      *prometheus.CounterVec
	StatusTransitions  *prometheus.CounterVec
	UpdatesAppended    *prometheus.CounterVec
	AccountsRegistered *prometheus.CounterVec
	WebhookDeliveries  *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New создает и регистрирует метрики в указанном реестре
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IncidentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "incident_reporting_incidents_created_total",
			Help: "Total number of incidents reported by citizens",
		}, []string{"category", "severity"}),

		ClaimAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "incident_reporting_claim_attempts_total",
			Help: "Department claim attempts by outcome",
		}, []string{"outcome"}), // outcome: "claimed", "already_assigned", "not_found", "error"

		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "incident_reporting_status_transitions_total",
			Help: "Incident status transitions by target status",
		}, []string{"status"}),

		UpdatesAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "incident_reporting_updates_appended_total",
			Help: "Update log entries appended by author kind",
		}, []string{"author_kind"}),

		AccountsRegistered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "incident_reporting_accounts_registered_total",
			Help: "Accounts signed up by role",
		}, []string{"role"}),

		WebhookDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "incident_reporting_webhook_deliveries_total",
			Help: "Webhook delivery attempts by outcome",
		}, []string{"outcome"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "incident_reporting_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "code"}),
	}
}

func (m *Metrics) IncIncidentCreated(category, severity string) {
	if m != nil {
		m.IncidentsCreated.WithLabelValues(category, severity).Inc()
	}
}

func (m *Metrics) IncClaimAttempt(outcome string) {
	if m != nil {
		m.ClaimAttempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncStatusTransition(status string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncUpdateAppended(authorKind string) {
	if m != nil {
		m.UpdatesAppended.WithLabelValues(authorKind).Inc()
	}
}

func (m *Metrics) IncAccountRegistered(role string) {
	if m != nil {
		m.AccountsRegistered.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) IncWebhookDelivery(outcome string) {
	if m != nil {
		m.WebhookDeliveries.WithLabelValues(outcome).Inc()
	}
}

// ObserveRequest записывает длительность обработки HTTP-запроса
func (m *Metrics) ObserveRequest(method, route, code string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
	}
}
