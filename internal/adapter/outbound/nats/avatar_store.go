package nats

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/avatar"
)

// avatarStore implements avatar.Store over request-reply to the avatar
// service, which owns image processing and blob storage.
type avatarStore struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewAvatarStore creates a new avatar Store.
func NewAvatarStore(conn *nats.Conn, subjectPrefix string) avatar.Store {
	if subjectPrefix == "" {
		subjectPrefix = "overwatch"
	}
	return &avatarStore{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}
}

func (s *avatarStore) SetAvatar(ctx context.Context, user *model.User, candidate model.AvatarCandidate) error {
	request := setAvatarRequest{
		UserID:      user.ID().String(),
		SourceName:  candidate.SourceName,
		ContentType: candidate.ContentType,
		ImageBase64: base64.StdEncoding.EncodeToString(candidate.ImageBlob),
	}

	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal set avatar request: %w", err)
	}

	subject := fmt.Sprintf("%s.avatars.set", s.subjectPrefix)
	msg, err := s.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to call avatar service: %w", err)
	}

	var reply setAvatarReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return fmt.Errorf("failed to unmarshal avatar reply: %w", err)
	}
	if !reply.OK {
		return fmt.Errorf("avatar service rejected image: %s", reply.Error)
	}

	return nil
}

type setAvatarRequest struct {
	UserID      string `json:"user_id"`
	SourceName  string `json:"source_name"`
	ContentType string `json:"content_type"`
	ImageBase64 string `json:"image_base64"`
}

type setAvatarReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
