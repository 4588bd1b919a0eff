// Package events decouples the request path from background job creation.
// Services emit TaskRequestEvents; handlers registered on the emitter turn
// them into queued jobs without the services knowing about the job runner.
package events
