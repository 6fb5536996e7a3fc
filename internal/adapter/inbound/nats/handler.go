// Package nats exposes the username workflow over NATS request-reply.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/0xsj/overwatch-pkg/log"
	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/inbound/command"
)

const (
	setUsernameSubject = "profile.set_username"
	queueGroup         = "profile"

	// handleTimeout bounds one request end to end. Collaborator calls
	// inherit it through the context.
	handleTimeout = 15 * time.Second
)

// Handler serves SetUsername requests from the message bus.
type Handler struct {
	conn          *nats.Conn
	subjectPrefix string
	setUsername   command.SetUsernameHandler
	logger        log.Logger

	sub *nats.Subscription
}

// NewHandler creates a new inbound Handler.
func NewHandler(
	conn *nats.Conn,
	subjectPrefix string,
	setUsername command.SetUsernameHandler,
	logger log.Logger,
) *Handler {
	if subjectPrefix == "" {
		subjectPrefix = "overwatch"
	}
	return &Handler{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		setUsername:   setUsername,
		logger:        logger,
	}
}

// Start subscribes to the request subject. Requests are load-balanced
// across service instances through the queue group.
func (h *Handler) Start() error {
	subject := fmt.Sprintf("%s.%s", h.subjectPrefix, setUsernameSubject)
	sub, err := h.conn.QueueSubscribe(subject, queueGroup, h.handleSetUsername)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	h.sub = sub

	h.logger.Info("profile handler started", log.String("subject", subject))
	return nil
}

// Stop drains the subscription.
func (h *Handler) Stop() error {
	if h.sub == nil {
		return nil
	}
	return h.sub.Drain()
}

func (h *Handler) handleSetUsername(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	var req setUsernameRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		h.reply(msg, setUsernameReply{Succeeded: false, Error: "malformed request"})
		return
	}

	cmd := command.SetUsername{
		Username: req.Username,
	}
	if id, err := types.ParseID(req.CallerID); err == nil {
		cmd.CallerID = id
	}
	if id, err := types.ParseID(req.UserID); err == nil {
		cmd.UserID = id
	}

	result, err := h.setUsername.Handle(ctx, cmd)
	if err != nil {
		h.logger.Error("set username failed",
			log.String("user_id", req.UserID),
			log.String("error", err.Error()),
		)
		h.reply(msg, setUsernameReply{Succeeded: false, Error: err.Error()})
		return
	}

	reply := setUsernameReply{
		Succeeded: result.Succeeded,
		Error:     result.Error,
	}
	if result.User != nil {
		reply.User = toUserView(result.User)
	}
	h.reply(msg, reply)
}

func (h *Handler) reply(msg *nats.Msg, reply setUsernameReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		h.logger.Error("failed to marshal reply", log.String("error", err.Error()))
		return
	}
	if err := msg.Respond(data); err != nil {
		h.logger.Error("failed to respond", log.String("error", err.Error()))
	}
}

type setUsernameRequest struct {
	CallerID string `json:"caller_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type setUsernameReply struct {
	Succeeded bool      `json:"succeeded"`
	Error     string    `json:"error,omitempty"`
	User      *userView `json:"user,omitempty"`
}

type userView struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name"`
}

func toUserView(user *model.User) *userView {
	view := &userView{
		ID:          user.ID().String(),
		DisplayName: user.DisplayName(),
	}
	if user.Username().IsPresent() {
		view.Username = user.Username().MustGet()
	}
	return view
}
