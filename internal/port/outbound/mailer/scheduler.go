package mailer

import (
	"context"

	"github.com/0xsj/overwatch-pkg/types"
)

// EnrollmentScheduler defines the interface to the mail subsystem.
// Scheduling is fire-and-forget: the core never observes delivery.
type EnrollmentScheduler interface {
	// ScheduleEnrollmentEmail asks the mail subsystem to send the
	// first-time-setup email to the user.
	ScheduleEnrollmentEmail(ctx context.Context, userID types.ID) error
}
