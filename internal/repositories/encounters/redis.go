package encounters

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/questforge/session-engine/internal/domain/combat"
	apperr "github.com/questforge/session-engine/internal/errors"
)

const (
	encounterKeyPrefix       = "encounter:"
	sessionEncountersKeyFmt  = "session:%s:encounters"
	sessionActiveEncKeyFmt   = "session:%s:active_encounter"
	defaultEncounterTTL      = 7 * 24 * time.Hour
	getBySessionFetchWorkers = 4
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

type redisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRepository creates a new Redis-backed encounter repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultEncounterTTL
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    ttl,
	}
}

func encounterKey(id string) string {
	return encounterKeyPrefix + id
}

func sessionEncountersKey(sessionID string) string {
	return fmt.Sprintf(sessionEncountersKeyFmt, sessionID)
}

func sessionActiveKey(sessionID string) string {
	return fmt.Sprintf(sessionActiveEncKeyFmt, sessionID)
}

// Create stores a new encounter. An active encounter also claims the
// session's active pointer.
func (r *redisRepository) Create(ctx context.Context, encounter *combat.Encounter) error {
	if encounter == nil {
		return apperr.InvalidArgument("encounter cannot be nil")
	}
	if encounter.ID == "" {
		return apperr.InvalidArgument("encounter ID cannot be empty")
	}

	data, err := json.Marshal(encounter)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize encounter")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, encounterKey(encounter.ID), data, r.ttl)
	pipe.SAdd(ctx, sessionEncountersKey(encounter.SessionID), encounter.ID)
	if encounter.Status == combat.EncounterStatusActive {
		pipe.Set(ctx, sessionActiveKey(encounter.SessionID), encounter.ID, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to create encounter %s", encounter.ID)
	}

	return nil
}

// Get retrieves an encounter by ID
func (r *redisRepository) Get(ctx context.Context, id string) (*combat.Encounter, error) {
	data, err := r.client.Get(ctx, encounterKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("encounter not found: %s", id).
				WithMeta("encounter_id", id)
		}
		return nil, apperr.Wrapf(err, "failed to get encounter %s", id)
	}

	var encounter combat.Encounter
	if err := json.Unmarshal(data, &encounter); err != nil {
		return nil, apperr.Wrapf(err, "failed to deserialize encounter %s", id)
	}

	return &encounter, nil
}

// Update overwrites an encounter and keeps the session's active pointer
// consistent with its status
func (r *redisRepository) Update(ctx context.Context, encounter *combat.Encounter) error {
	if encounter == nil {
		return apperr.InvalidArgument("encounter cannot be nil")
	}
	if encounter.ID == "" {
		return apperr.InvalidArgument("encounter ID cannot be empty")
	}

	data, err := json.Marshal(encounter)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize encounter")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, encounterKey(encounter.ID), data, r.ttl)
	if encounter.Status == combat.EncounterStatusActive {
		pipe.Set(ctx, sessionActiveKey(encounter.SessionID), encounter.ID, r.ttl)
	} else {
		pipe.Del(ctx, sessionActiveKey(encounter.SessionID))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to update encounter %s", encounter.ID)
	}

	return nil
}

// Delete removes an encounter and its index entries
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	encounter, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, encounterKey(id))
	pipe.SRem(ctx, sessionEncountersKey(encounter.SessionID), id)
	if encounter.Status == combat.EncounterStatusActive {
		pipe.Del(ctx, sessionActiveKey(encounter.SessionID))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to delete encounter %s", id)
	}

	return nil
}

// GetBySession retrieves every encounter for a session, fetching them
// concurrently. Index entries whose encounter key has expired are
// skipped. Results come back in ID order for stable output.
func (r *redisRepository) GetBySession(ctx context.Context, sessionID string) ([]*combat.Encounter, error) {
	ids, err := r.client.SMembers(ctx, sessionEncountersKey(sessionID)).Result()
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to list encounters for session %s", sessionID)
	}

	if len(ids) == 0 {
		return []*combat.Encounter{}, nil
	}

	var (
		mu         sync.Mutex
		encounters []*combat.Encounter
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(getBySessionFetchWorkers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			encounter, err := r.Get(gctx, id)
			if err != nil {
				if apperr.IsNotFound(err) {
					return nil
				}
				return err
			}

			mu.Lock()
			encounters = append(encounters, encounter)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(encounters, func(i, j int) bool {
		return encounters[i].ID < encounters[j].ID
	})

	return encounters, nil
}

// GetActiveBySession follows the session's active pointer. A session
// with no active encounter returns nil without error.
func (r *redisRepository) GetActiveBySession(ctx context.Context, sessionID string) (*combat.Encounter, error) {
	id, err := r.client.Get(ctx, sessionActiveKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, apperr.Wrapf(err, "failed to get active encounter for session %s", sessionID)
	}

	encounter, err := r.Get(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			// Stale pointer to an expired encounter
			return nil, nil
		}
		return nil, err
	}

	return encounter, nil
}
