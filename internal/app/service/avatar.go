package service

import (
	"context"
	"sort"

	"github.com/0xsj/overwatch-pkg/log"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/avatar"
)

// AvatarService proposes avatar candidates from the configured
// providers and applies one deterministically. It is a default-avatar
// convenience: nothing here is allowed to fail the caller.
type AvatarService struct {
	providers []avatar.Provider
	store     avatar.Store
	logger    log.Logger
}

// NewAvatarService creates a new AvatarService.
func NewAvatarService(providers []avatar.Provider, store avatar.Store, logger log.Logger) *AvatarService {
	return &AvatarService{
		providers: providers,
		store:     store,
		logger:    logger,
	}
}

// Suggest gathers candidates from every provider, keyed by source name.
// Provider failures are logged and the provider is skipped.
func (s *AvatarService) Suggest(ctx context.Context, user *model.User) map[string]model.AvatarCandidate {
	candidates := make(map[string]model.AvatarCandidate)
	for _, provider := range s.providers {
		suggested, err := provider.SuggestAvatars(ctx, user)
		if err != nil {
			s.logger.Warn("avatar provider failed",
				log.String("user_id", user.ID().String()),
				log.String("error", err.Error()),
			)
			continue
		}
		for source, candidate := range suggested {
			candidates[source] = candidate
		}
	}
	return candidates
}

// ApplyDefaultAvatar picks one candidate and stores it. Sources are
// walked in sorted order so a given candidate set always yields the
// same winner; the first non-fallback candidate wins, otherwise the
// fallback is used, otherwise no avatar is set.
func (s *AvatarService) ApplyDefaultAvatar(ctx context.Context, user *model.User) {
	candidates := s.Suggest(ctx, user)
	if len(candidates) == 0 {
		return
	}

	sources := make([]string, 0, len(candidates))
	for source := range candidates {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	var fallback *model.AvatarCandidate
	for _, source := range sources {
		candidate := candidates[source]
		if !candidate.IsFallback() {
			s.apply(ctx, user, candidate)
			return
		}
		fallback = &candidate
	}
	if fallback != nil {
		s.apply(ctx, user, *fallback)
	}
}

func (s *AvatarService) apply(ctx context.Context, user *model.User, candidate model.AvatarCandidate) {
	if err := s.store.SetAvatar(ctx, user, candidate); err != nil {
		s.logger.Warn("failed to set default avatar",
			log.String("user_id", user.ID().String()),
			log.String("source", candidate.SourceName),
			log.String("error", err.Error()),
		)
	}
}
