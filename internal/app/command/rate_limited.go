package command

import (
	"context"
	"fmt"

	"github.com/0xsj/overwatch-pkg/log"
	"github.com/0xsj/overwatch-pkg/types"

	domainerror "github.com/0xsj/overwatch-profile/internal/domain/error"
	"github.com/0xsj/overwatch-profile/internal/port/inbound/command"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/authz"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/ratelimit"
)

// rateLimitedSetUsername gates a SetUsernameHandler behind the
// edit-other-user-info permission and a sliding-window call budget.
// The permission check runs first: a denied caller never consumes
// budget. The budget is scoped per caller id.
type rateLimitedSetUsername struct {
	next        command.SetUsernameHandler
	permissions authz.PermissionChecker
	limiter     ratelimit.Limiter
	logger      log.Logger
}

// NewRateLimitedSetUsername wraps a SetUsernameHandler with the
// authorization and rate-limit gate.
func NewRateLimitedSetUsername(
	next command.SetUsernameHandler,
	permissions authz.PermissionChecker,
	limiter ratelimit.Limiter,
	logger log.Logger,
) command.SetUsernameHandler {
	return &rateLimitedSetUsername{
		next:        next,
		permissions: permissions,
		limiter:     limiter,
		logger:      logger,
	}
}

func (g *rateLimitedSetUsername) Handle(ctx context.Context, cmd command.SetUsername) (command.SetUsernameResult, error) {
	if cmd.CallerID.IsEmpty() {
		return failure(domainerror.ErrPermissionDenied), nil
	}

	allowed, err := g.permissions.HasPermission(ctx, cmd.CallerID, authz.PermissionEditOtherUserInfo)
	if err != nil {
		g.logger.Warn("permission check failed",
			log.String("caller_id", cmd.CallerID.String()),
			log.String("error", err.Error()),
		)
		return failure(domainerror.ErrPermissionDenied), nil
	}
	if !allowed {
		return failure(domainerror.ErrPermissionDenied), nil
	}

	admitted, err := g.limiter.Allow(ctx, limiterKey(cmd.CallerID))
	if err != nil {
		// A limiter backend outage must not take the workflow down
		// with it; the call proceeds unbudgeted.
		g.logger.Warn("rate limiter unavailable",
			log.String("caller_id", cmd.CallerID.String()),
			log.String("error", err.Error()),
		)
	} else if !admitted {
		return failure(domainerror.ErrRateLimited), nil
	}

	return g.next.Handle(ctx, cmd)
}

func limiterKey(callerID types.ID) string {
	return fmt.Sprintf("username_change:%s", callerID.String())
}
