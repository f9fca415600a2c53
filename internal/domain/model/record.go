package model

import "time"

// Record is a persisted name/email entry. ID, CreatedAt, and UpdatedAt are
// assigned by the record store.
type Record struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RepoListOptions carries the query parameters forwarded to the GitHub
// "list repositories for the authenticated user" endpoint. Values are passed
// through verbatim.
type RepoListOptions struct {
	Page      string
	PerPage   string
	Sort      string
	Direction string
}
