// Package metrics exposes Prometheus counters for the alert pipeline.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AlertsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bearbites_alerts_created_total",
		Help: "Number of food alerts durably created.",
	})
	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bearbites_emails_sent_total",
		Help: "Number of notification emails accepted by the mail transport.",
	})
	EmailSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bearbites_email_send_failures_total",
		Help: "Number of per-recipient delivery failures (not retried).",
	})
	FanoutFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bearbites_fanout_failures_total",
		Help: "Number of fanout calls that failed before any delivery.",
	})
	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bearbites_stream_clients",
		Help: "Currently connected alert-stream clients.",
	})
	SignInsDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bearbites_signins_denied_total",
		Help: "Sign-ins rejected by the email-domain gate.",
	})
)

// Handler serves the default Prometheus registry over Fiber.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
