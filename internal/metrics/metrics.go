// Package metrics holds the prometheus collectors for the API, the planner and the text generator.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planora"

// Metrics groups every collector the application records into
type Metrics struct {
	PlanGenerations  *prometheus.CounterVec
	PlanTasksCreated prometheus.Counter
	LLMRequests      *prometheus.CounterVec
	LLMDuration      *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	ChatActions      *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		PlanGenerations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_generations_total",
			Help:      "Plan generation requests by outcome.",
		}, []string{"outcome"}),
		PlanTasksCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_tasks_created_total",
			Help:      "Tasks created from generated plans.",
		}),
		LLMRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Text-generation calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		LLMDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Text-generation call latency including retries.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		}, []string{"provider"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ChatActions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_actions_total",
			Help:      "Roadmap agent decisions by action.",
		}, []string{"action"}),
	}
}

// ObserveLLMRequest records one text-generation call
func (m *Metrics) ObserveLLMRequest(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LLMRequests.WithLabelValues(provider, outcome).Inc()
	m.LLMDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// ObservePlanGeneration records the outcome of one plan ingestion
func (m *Metrics) ObservePlanGeneration(outcome string, tasks int) {
	if m == nil {
		return
	}
	m.PlanGenerations.WithLabelValues(outcome).Inc()
	if tasks > 0 {
		m.PlanTasksCreated.Add(float64(tasks))
	}
}

// ObserveChatAction records the action the agent chose
func (m *Metrics) ObserveChatAction(action string) {
	if m == nil {
		return
	}
	m.ChatActions.WithLabelValues(action).Inc()
}

// ObserveHTTPRequest records one served request
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
