// Package config defines the application configuration model and loads it
// from environment variables with the TASKTRAIL_ prefix.
package config
