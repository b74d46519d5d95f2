// Package metrics holds the Prometheus collectors shared by the API and the
// deploy worker.
package metrics

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Completions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecraft",
		Name:      "completions_total",
		Help:      "Completion proxy requests by result.",
	}, []string{"result"})

	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecraft",
		Name:      "generations_total",
		Help:      "Code generation requests by result.",
	}, []string{"result"})

	DeploysQueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codecraft",
		Name:      "deploys_queued_total",
		Help:      "Deploy jobs published to Kafka.",
	})

	Deploys = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecraft",
		Name:      "deploys_total",
		Help:      "Deploy jobs processed by the worker, by final project status.",
	}, []string{"status"})

	DeployDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "codecraft",
		Name:      "deploy_duration_seconds",
		Help:      "Time spent processing one deploy job, retries included.",
		Buckets:   prometheus.DefBuckets,
	})
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultInvalid = "invalid"
)

// Deploys status labels.
const (
	StatusDeployed = "deployed"
	StatusFailed   = "failed"
)

// Handler serves the default registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
