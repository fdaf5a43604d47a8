package api

import (
	"github.com/JaimeStill/brief/internal/runs"
	"github.com/JaimeStill/brief/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Runs     runs.System
	Sessions sessions.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	runsSystem := runs.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	sessionsSystem := sessions.New(
		runtime.Engine,
		runtime.Storage,
		runsSystem,
		runtime.Logger,
	)

	return &Domain{
		Runs:     runsSystem,
		Sessions: sessionsSystem,
	}
}
