// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus counters for mirror operations.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tdcs_mirror"

// Outcome labels for HTTP requests.
const (
	OutcomeOK        = "ok"
	OutcomeNotOK     = "status"
	OutcomeTransport = "transport"
	OutcomeMalformed = "malformed"
)

// Walker labels.
const (
	WalkerMinute = "minute"
	WalkerHour   = "hour"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Requests sent to the archive by outcome",
	}, []string{"outcome"})
	bytesDownloaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bytes_downloaded_total",
		Help:      "Bytes written to disk from archive responses",
	})
	artifacts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "artifacts_total",
		Help:      "Artifacts produced by operation",
	}, []string{"operation"})
	walkerSteps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "walker_steps_total",
		Help:      "Backward steps taken by the retry walkers",
	}, []string{"walker"})
	operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Histogram of facade call durations in seconds by operation",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"operation"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, bytesDownloaded, artifacts, walkerSteps, operationDuration)
	})
}

func IncHTTPRequest(outcome string) { httpRequests.WithLabelValues(outcome).Inc() }
func AddBytesDownloaded(n int64)    { bytesDownloaded.Add(float64(n)) }
func IncArtifact(operation string)  { artifacts.WithLabelValues(operation).Inc() }
func IncWalkerStep(walker string)   { walkerSteps.WithLabelValues(walker).Inc() }
func ObserveOperationDuration(operation string, d time.Duration) {
	operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// WriteTextfile dumps the default registry in text exposition format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
