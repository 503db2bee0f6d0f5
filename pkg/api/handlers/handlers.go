// Package handlers exposes the lead lifecycle over HTTP.
package handlers

import (
	"github.com/go-playground/validator/v10"
)

// Metrics is the subset of counters the HTTP layer records
type Metrics interface {
	RecordSignatureFailure(provider string)
	RecordWebhookDuplicate()
	RecordExportCreated(format string)
}

type nopMetrics struct{}

func (nopMetrics) RecordSignatureFailure(string) {}
func (nopMetrics) RecordWebhookDuplicate()       {}
func (nopMetrics) RecordExportCreated(string)    {}

func orNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
