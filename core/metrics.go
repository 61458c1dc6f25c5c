package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_logins_total",
		Help: "Login pipeline completions by provider and outcome.",
	}, []string{"provider", "outcome"})

	verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_token_verifications_total",
		Help: "Session token verifications by outcome.",
	}, []string{"outcome"})
)
