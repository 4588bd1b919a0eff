// Package jobs provides the background job infrastructure: a persistent
// in-memory job queue backed by database rows, a worker pool with crash
// recovery for unfinished jobs, and the notification job that delivers
// task email notifications at least once.
package jobs
