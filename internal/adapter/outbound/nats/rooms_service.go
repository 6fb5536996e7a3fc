package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/rooms"
)

// membershipService implements rooms.MembershipService over request-reply
// to the rooms service.
type membershipService struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(conn *nats.Conn, subjectPrefix string) rooms.MembershipService {
	if subjectPrefix == "" {
		subjectPrefix = "overwatch"
	}
	return &membershipService{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}
}

func (s *membershipService) AddUserToRoom(ctx context.Context, roomID types.ID, user *model.User) error {
	request := addMemberRequest{
		RoomID: roomID.String(),
		UserID: user.ID().String(),
	}
	if user.Username().IsPresent() {
		request.Username = user.Username().MustGet()
	}

	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal add member request: %w", err)
	}

	subject := fmt.Sprintf("%s.rooms.add_member", s.subjectPrefix)
	msg, err := s.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to call rooms service: %w", err)
	}

	var reply addMemberReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return fmt.Errorf("failed to unmarshal rooms reply: %w", err)
	}
	if !reply.OK {
		return fmt.Errorf("rooms service rejected member: %s", reply.Error)
	}

	return nil
}

type addMemberRequest struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}

type addMemberReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
