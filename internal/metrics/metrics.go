// Package metrics exposes Prometheus counters for registrations, logins, matches and leaderboard reads.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services report to
type Recorder interface {
	RecordRegistration()
	RecordLogin(success bool)
	RecordMatch(draw bool)
	RecordLeaderboardSkip(reason string)
	RecordSimulation(users, matches int)
}

// Collector is the Prometheus-backed Recorder
type Collector struct {
	registrations    prometheus.Counter
	logins           *prometheus.CounterVec
	matches          *prometheus.CounterVec
	leaderboardSkips *prometheus.CounterVec
	simulatedUsers   prometheus.Counter
	simulatedMatches prometheus.Counter
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchboard_registrations_total",
			Help: "Players registered",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchboard_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchboard_matches_processed_total",
			Help: "Match results applied to the ranking",
		}, []string{"outcome"}),
		leaderboardSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchboard_leaderboard_skipped_entries_total",
			Help: "Leaderboard entries dropped because the player record could not be resolved",
		}, []string{"reason"}),
		simulatedUsers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchboard_simulated_users_total",
			Help: "Players registered by simulation runs",
		}),
		simulatedMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchboard_simulated_matches_total",
			Help: "Matches played by simulation runs",
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.matches,
		c.leaderboardSkips,
		c.simulatedUsers,
		c.simulatedMatches,
	)

	return c
}

func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordMatch(draw bool) {
	outcome := "win"
	if draw {
		outcome = "draw"
	}
	c.matches.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLeaderboardSkip(reason string) {
	c.leaderboardSkips.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordSimulation(users, matches int) {
	c.simulatedUsers.Add(float64(users))
	c.simulatedMatches.Add(float64(matches))
}

// Nop discards everything
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordRegistration()          {}
func (Nop) RecordLogin(bool)             {}
func (Nop) RecordMatch(bool)             {}
func (Nop) RecordLeaderboardSkip(string) {}
func (Nop) RecordSimulation(int, int)    {}

// Handler returns the scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
