package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	forecastsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "granaflow_forecasts_generated_total",
		Help: "Number of forecast expenses generated from recurring templates.",
	})
	forecastsMaturedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "granaflow_forecasts_matured_total",
		Help: "Number of forecast expenses flipped to actual by the maturation sweep.",
	})
	forecastSweepErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "granaflow_forecast_sweep_errors_total",
		Help: "Number of per-template failures during the window extension sweep.",
	})
	forecastMergesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "granaflow_forecast_merges_total",
		Help: "Number of imported transactions merged into a forecast.",
	})
	expensesImportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "granaflow_expenses_imported_total",
		Help: "Number of expenses created from statement imports.",
	})
)
