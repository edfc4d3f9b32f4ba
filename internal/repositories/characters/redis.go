package characters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/questforge/session-engine/internal/domain/character"
	apperr "github.com/questforge/session-engine/internal/errors"
)

const (
	characterKeyPrefix      = "character:"
	sessionCharactersKeyFmt = "session:%s:characters"

	defaultCharacterTTL = 30 * 24 * time.Hour
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

// NewRedisRepository creates a new Redis-backed character repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCharacterTTL
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    ttl,
	}
}

func characterKey(id string) string {
	return characterKeyPrefix + id
}

func sessionCharactersKey(sessionID string) string {
	return fmt.Sprintf(sessionCharactersKeyFmt, sessionID)
}

// Create stores a new character and indexes it by session
func (r *redisRepository) Create(ctx context.Context, char *character.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperr.InvalidArgument("character ID cannot be empty")
	}

	data, err := json.Marshal(char)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, characterKey(char.ID), data, r.ttl)
	if char.SessionID != "" {
		pipe.SAdd(ctx, sessionCharactersKey(char.SessionID), char.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to create character %s", char.ID)
	}

	return nil
}

// Get retrieves a character by ID, normalizing feature effects on load
func (r *redisRepository) Get(ctx context.Context, id string) (*character.Character, error) {
	data, err := r.client.Get(ctx, characterKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("character not found: %s", id).
				WithMeta("character_id", id)
		}
		return nil, apperr.Wrapf(err, "failed to get character %s", id)
	}

	var char character.Character
	if err := json.Unmarshal(data, &char); err != nil {
		return nil, apperr.Wrapf(err, "failed to deserialize character %s", id)
	}

	normalizeFeatures(&char)

	return &char, nil
}

// GetBySession retrieves all characters indexed under a session
func (r *redisRepository) GetBySession(ctx context.Context, sessionID string) ([]*character.Character, error) {
	ids, err := r.client.SMembers(ctx, sessionCharactersKey(sessionID)).Result()
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to list characters for session %s", sessionID)
	}

	if len(ids) == 0 {
		return []*character.Character{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = characterKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to get characters for session %s", sessionID)
	}

	chars := make([]*character.Character, 0, len(values))
	for _, val := range values {
		data, ok := val.(string)
		if !ok {
			// Index entry whose character key expired; skipped and
			// cleaned up on the next write
			continue
		}

		var char character.Character
		if err := json.Unmarshal([]byte(data), &char); err != nil {
			continue
		}

		normalizeFeatures(&char)
		chars = append(chars, &char)
	}

	return chars, nil
}

// Update overwrites an existing character
func (r *redisRepository) Update(ctx context.Context, char *character.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperr.InvalidArgument("character ID cannot be empty")
	}

	exists, err := r.client.Exists(ctx, characterKey(char.ID)).Result()
	if err != nil {
		return apperr.Wrapf(err, "failed to check character %s", char.ID)
	}
	if exists == 0 {
		return apperr.NotFoundf("character not found: %s", char.ID).
			WithMeta("character_id", char.ID)
	}

	data, err := json.Marshal(char)
	if err != nil {
		return apperr.Wrap(err, "failed to serialize character")
	}

	if err := r.client.Set(ctx, characterKey(char.ID), data, r.ttl).Err(); err != nil {
		return apperr.Wrapf(err, "failed to update character %s", char.ID)
	}

	return nil
}

// Delete removes a character and its session index entry
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	char, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, characterKey(id))
	if char.SessionID != "" {
		pipe.SRem(ctx, sessionCharactersKey(char.SessionID), id)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to delete character %s", id)
	}

	return nil
}

// normalizeFeatures validates effect payloads at the storage boundary so
// the aggregation pass can trust what it reads
func normalizeFeatures(char *character.Character) {
	for _, f := range char.Features {
		if f != nil && f.Effect != nil {
			f.Effect.Normalize()
		}
	}
}
