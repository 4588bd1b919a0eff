// Package service provides application-level services for managing tasks,
// users, tags, and templates. Services own transaction boundaries, change
// tracking, and notification event emission; storage details live in the
// store implementations and HTTP concerns live in the api package.
package service
