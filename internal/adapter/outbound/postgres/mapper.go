package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// userRow is the scan target for the users table.
type userRow struct {
	ID          string
	Username    pgtype.Text
	DisplayName string
	Emails      []string
	InviteToken pgtype.Text
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func toUserRow(user *model.User) userRow {
	emails := make([]string, 0, len(user.Emails()))
	for _, email := range user.Emails() {
		emails = append(emails, email.String())
	}
	return userRow{
		ID:          user.ID().String(),
		Username:    optionalStringToPgText(user.Username()),
		DisplayName: user.DisplayName(),
		Emails:      emails,
		InviteToken: optionalStringToPgText(user.InviteToken()),
		CreatedAt:   user.CreatedAt().Time(),
		UpdatedAt:   user.UpdatedAt().Time(),
	}
}

func toUserModel(row userRow) (*model.User, error) {
	id, err := types.ParseID(row.ID)
	if err != nil {
		return nil, err
	}

	emails := make([]types.Email, 0, len(row.Emails))
	for _, raw := range row.Emails {
		email, err := types.NewEmail(raw)
		if err != nil {
			// Skip addresses that no longer parse; the workflow only
			// cares whether any address exists.
			continue
		}
		emails = append(emails, email)
	}

	return model.ReconstructUser(
		id,
		textToOptionalString(row.Username),
		row.DisplayName,
		emails,
		textToOptionalString(row.InviteToken),
		types.FromTime(row.CreatedAt),
		types.FromTime(row.UpdatedAt),
	), nil
}

// inviteRow is the scan target for the invites table.
type inviteRow struct {
	Token  string
	RoomID pgtype.Text
}

func toInviteModel(row inviteRow) *model.Invite {
	return model.ReconstructInvite(row.Token, textToOptionalID(row.RoomID))
}

// pgtype helpers

func textToOptionalString(t pgtype.Text) types.Optional[string] {
	if t.Valid {
		return types.Some(t.String)
	}
	return types.None[string]()
}

func textToOptionalID(t pgtype.Text) types.Optional[types.ID] {
	if t.Valid {
		id, err := types.ParseID(t.String)
		if err == nil {
			return types.Some(id)
		}
	}
	return types.None[types.ID]()
}

func optionalStringToPgText(o types.Optional[string]) pgtype.Text {
	if o.IsPresent() {
		return pgtype.Text{String: o.MustGet(), Valid: true}
	}
	return pgtype.Text{Valid: false}
}
