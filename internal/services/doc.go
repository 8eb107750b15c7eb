// Package services contains the business orchestration between the HTTP
// transport and the storage, extraction and report layers.
//
// DataService owns the upload lifecycle (validation, period discovery,
// persistence, flush) and ReportService owns everything computed from stored
// workbooks (KPI summaries, diary emails, .eml downloads), with per-blob and
// per-request caching in front of extraction.
package services
