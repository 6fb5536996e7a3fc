package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/port/outbound/authz"
)

// permissionChecker implements authz.PermissionChecker over
// request-reply to the policy service.
type permissionChecker struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewPermissionChecker creates a new PermissionChecker.
func NewPermissionChecker(conn *nats.Conn, subjectPrefix string) authz.PermissionChecker {
	if subjectPrefix == "" {
		subjectPrefix = "overwatch"
	}
	return &permissionChecker{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}
}

func (c *permissionChecker) HasPermission(ctx context.Context, callerID types.ID, permission string) (bool, error) {
	request := checkPermissionRequest{
		CallerID:   callerID.String(),
		Permission: permission,
	}

	data, err := json.Marshal(request)
	if err != nil {
		return false, fmt.Errorf("failed to marshal permission check: %w", err)
	}

	subject := fmt.Sprintf("%s.authz.check", c.subjectPrefix)
	msg, err := c.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return false, fmt.Errorf("failed to call policy service: %w", err)
	}

	var reply checkPermissionReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return false, fmt.Errorf("failed to unmarshal policy reply: %w", err)
	}

	return reply.Allowed, nil
}

type checkPermissionRequest struct {
	CallerID   string `json:"caller_id"`
	Permission string `json:"permission"`
}

type checkPermissionReply struct {
	Allowed bool `json:"allowed"`
}
