// Package http contains the chi handlers of the API surface. Handlers
// depend on narrow service interfaces so tests can drive them with fakes,
// and every failure path renders through the shared error handler.
package http
