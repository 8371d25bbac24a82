// Package metrics exposes Prometheus counters for the bot.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// commandsTotal counts bot commands by name and outcome ("ok", "rejected", "error").
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sowing_bot_commands_total",
			Help: "Total number of bot commands handled",
		},
		[]string{"command", "outcome"},
	)

	// classificationsTotal counts window status verdicts served to users.
	classificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sowing_window_classifications_total",
			Help: "Total number of sowing window status verdicts by state",
		},
		[]string{"state"},
	)

	// remindersTotal counts reminder deliveries by kind ("early", "open") and outcome ("sent", "failed").
	remindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sowing_reminders_total",
			Help: "Total number of monthly sowing reminders",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(commandsTotal)
	prometheus.MustRegister(classificationsTotal)
	prometheus.MustRegister(remindersTotal)
}

func RecordCommand(command, outcome string) {
	commandsTotal.WithLabelValues(command, outcome).Inc()
}

func RecordClassification(state string) {
	classificationsTotal.WithLabelValues(state).Inc()
}

func RecordReminder(kind, outcome string) {
	remindersTotal.WithLabelValues(kind, outcome).Inc()
}

// Server serves /metrics until Shutdown is called.
type Server struct {
	srv    *http.Server
	logger *logrus.Entry
}

func NewServer(addr string, logger *logrus.Entry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

// Start listens in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.srv.Addr).Info("Metrics server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Metrics server stopped unexpectedly")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
