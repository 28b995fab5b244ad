// Package director runs a remediation pass from fetch to audit.
package director

import (
	"time"

	"github.com/google/uuid"
	"github.com/mdmdirector/devicesweep/mdm"
)

// Session is the per run context handed to every stage
type Session struct {
	Client    mdm.Client
	TenantID  string
	DryRun    bool
	RunID     string
	StartedAt time.Time

	clock func() time.Time
}

// NewSession starts a run. A nil clock uses time.Now.
func NewSession(client mdm.Client, tenantID string, dryRun bool, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		Client:    client,
		TenantID:  tenantID,
		DryRun:    dryRun,
		RunID:     uuid.NewString(),
		StartedAt: clock(),
		clock:     clock,
	}
}

func (s *Session) Now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock()
}
