// Package domain defines the core entities of the task tracker: tasks,
// comments, assignments, change records, tags, templates, users, and teams,
// together with their validation rules. It has no dependency on storage,
// transport, or any other infrastructure concern.
package domain
