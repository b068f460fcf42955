/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	recordResultCreated   = "created"
	recordResultDuplicate = "duplicate"
	recordResultError     = "error"

	verifySourceLocal      = "local"
	verifySourceChain      = "chain"
	verifySourceUnverified = "unverified"

	updateOutcomeApplied     = "applied"
	updateOutcomeMissing     = "missing"
	updateOutcomeOverwritten = "terminal_overwrite"
)

type ledgerMetrics struct {
	paymentsRecorded     *prometheus.CounterVec
	paymentVerifications *prometheus.CounterVec
	paymentStatusUpdates *prometheus.CounterVec
}

var (
	ledgerMetricsOnce sync.Once
	ledgerMetricsInst *ledgerMetrics
)

// metrics returns the process-wide ledger counters registered on the default registry
func metrics() *ledgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerMetricsInst = newLedgerMetrics(prometheus.DefaultRegisterer)
	})
	return ledgerMetricsInst
}

func newLedgerMetrics(registerer prometheus.Registerer) *ledgerMetrics {
	m := &ledgerMetrics{
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "x402_payments_recorded_total",
			Help: "Payment record attempts by result.",
		}, []string{"result"}),
		paymentVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "x402_payment_verifications_total",
			Help: "Payment verifications by the source that decided them.",
		}, []string{"source"}),
		paymentStatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "x402_payment_status_updates_total",
			Help: "Payment status updates by target status and outcome.",
		}, []string{"status", "outcome"}),
	}

	registerer.MustRegister(m.paymentsRecorded, m.paymentVerifications, m.paymentStatusUpdates)
	return m
}
