// Package server exposes reports and feedback submission over HTTP with gin,
// plus health and Prometheus endpoints.
//
//	GET  /health
//	GET  /metrics
//	GET  /api/wikis/:wiki/reports/:date
//	POST /api/wikis/:wiki/reports/:date/feedbacks
//
// A missing report page answers 404 with {"error":"missing"}. Failures of
// the wiki API answer 502.
package server
