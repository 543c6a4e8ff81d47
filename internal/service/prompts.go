package service

import (
	"context"
	"strconv"
	"time"

	"github.com/geocoder89/journal/internal/cache"
	"github.com/geocoder89/journal/internal/domain/prompt"
)

const poolCacheTTL = time.Minute

type PromptSelector struct {
	prompts PromptsRepo
	rnd     Rand
	pools   *cache.Cache[[]prompt.Prompt]
}

func NewPromptSelector(prompts PromptsRepo) *PromptSelector {
	return &PromptSelector{
		prompts: prompts,
		rnd:     CryptoRand{},
		pools:   cache.New[[]prompt.Prompt](poolCacheTTL),
	}
}

func (s *PromptSelector) WithRand(rnd Rand) *PromptSelector {
	s.rnd = rnd
	return s
}

// Pick returns a uniformly random prompt among the global prompts and those
// owned by userID.
func (s *PromptSelector) Pick(ctx context.Context, userID int64) (prompt.Prompt, error) {
	pool, err := s.pool(ctx, userID)
	if err != nil {
		return prompt.Prompt{}, err
	}
	if len(pool) == 0 {
		return prompt.Prompt{}, prompt.ErrNoPromptAvailable
	}

	return pool[s.rnd.Intn(len(pool))], nil
}

func (s *PromptSelector) pool(ctx context.Context, userID int64) ([]prompt.Prompt, error) {
	key := strconv.FormatInt(userID, 10)

	if pool, ok := s.pools.Get(key); ok {
		return pool, nil
	}

	pool, err := s.prompts.ListEligible(ctx, userID)
	if err != nil {
		return nil, err
	}

	// an empty pool is not cached so a later seed is picked up
	if len(pool) > 0 {
		s.pools.Set(key, pool)
	}
	return pool, nil
}
