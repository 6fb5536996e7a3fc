package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/port/outbound/mailer"
)

// mailScheduler implements mailer.EnrollmentScheduler by handing the
// send off to the mailer service. Publish is fire-and-forget: once the
// message is on the wire the core is done with it.
type mailScheduler struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewMailScheduler creates a new EnrollmentScheduler.
func NewMailScheduler(conn *nats.Conn, subjectPrefix string) mailer.EnrollmentScheduler {
	if subjectPrefix == "" {
		subjectPrefix = "overwatch"
	}
	return &mailScheduler{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}
}

func (s *mailScheduler) ScheduleEnrollmentEmail(ctx context.Context, userID types.ID) error {
	request := enrollmentEmailRequest{UserID: userID.String()}

	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal enrollment email request: %w", err)
	}

	subject := fmt.Sprintf("%s.mailer.enrollment", s.subjectPrefix)
	if err := s.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to schedule enrollment email: %w", err)
	}

	return nil
}

type enrollmentEmailRequest struct {
	UserID string `json:"user_id"`
}
