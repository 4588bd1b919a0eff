// Package api contains the HTTP layer: handlers, request/response models,
// and the error-to-status mapping. Handlers decode and validate JSON,
// delegate to the service layer, and translate service errors into
// sanitized responses.
package api
