package reference

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	apiEntities "github.com/fadedpez/dnd5e-api/entities"

	"github.com/questforge/session-engine/internal/dice"
	"github.com/questforge/session-engine/internal/domain/combat"
	"github.com/questforge/session-engine/internal/domain/shared"
	apperr "github.com/questforge/session-engine/internal/errors"
)

// monsterGetter is the slice of the upstream API the client actually uses
type monsterGetter interface {
	GetMonster(key string) (*apiEntities.Monster, error)
}

type client struct {
	api monsterGetter

	mu    sync.RWMutex
	cache map[string]*combat.StatBlock
}

// Config holds configuration for the reference client
type Config struct {
	HTTPClient *http.Client
}

// New creates a reference client backed by the public 5e API
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("cfg is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	api, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client: httpClient,
	})
	if err != nil {
		return nil, apperr.Wrap(err, "failed to create reference API client")
	}

	return &client{
		api:   api,
		cache: make(map[string]*combat.StatBlock),
	}, nil
}

// GetStatBlock fetches a monster stat block by slug, caching hits. An
// unknown slug returns nil without error.
func (c *client) GetStatBlock(ctx context.Context, slug string) (*combat.StatBlock, error) {
	if slug == "" {
		return nil, apperr.InvalidArgument("slug is required")
	}

	c.mu.RLock()
	if block, ok := c.cache[slug]; ok {
		c.mu.RUnlock()
		return block, nil
	}
	c.mu.RUnlock()

	monster, err := c.api.GetMonster(slug)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Wrapf(err, "failed to fetch monster %s", slug)
	}
	if monster == nil {
		return nil, nil
	}

	block := statBlockFromMonster(monster)

	c.mu.Lock()
	c.cache[slug] = block
	c.mu.Unlock()

	return block, nil
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}

// statBlockFromMonster flattens an API monster into the single-attack
// stat block the pre-roll engine works with. The first action carrying
// damage dice wins; monsters without one fall back to an unarmed strike.
func statBlockFromMonster(monster *apiEntities.Monster) *combat.StatBlock {
	block := &combat.StatBlock{
		Slug:            monster.Key,
		Name:            monster.Name,
		Type:            monster.Type,
		ArmorClass:      monster.ArmorClass,
		HitPoints:       monster.HitPoints,
		ChallengeRating: float64(monster.ChallengeRating),
		XP:              xpForChallengeRating(float64(monster.ChallengeRating)),
		DamageDice:      "1d4",
		DamageType:      shared.DamageTypeBludgeoning,
	}

	for _, action := range monster.MonsterActions {
		if action == nil || len(action.Damage) == 0 || action.Damage[0] == nil {
			continue
		}

		notation, err := dice.ParseNotation(action.Damage[0].DamageDice)
		if err != nil {
			continue
		}

		block.AttackBonus = action.AttackBonus
		block.DamageDice = dice.Notation{Count: notation.Count, Sides: notation.Sides}.String()
		block.DamageBonus = notation.Bonus
		block.DamageType = damageTypeForAction(action.Name)
		break
	}

	return block
}

// damageTypeForAction guesses a damage type from the attack's name; the
// upstream payload does not carry one
func damageTypeForAction(name string) shared.DamageType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "bite"), strings.Contains(lower, "sting"),
		strings.Contains(lower, "spear"), strings.Contains(lower, "arrow"),
		strings.Contains(lower, "bow"):
		return shared.DamageTypePiercing
	case strings.Contains(lower, "claw"), strings.Contains(lower, "sword"),
		strings.Contains(lower, "axe"), strings.Contains(lower, "scimitar"):
		return shared.DamageTypeSlashing
	default:
		return shared.DamageTypeBludgeoning
	}
}

// xpForChallengeRating maps challenge rating to the XP awarded on a kill
func xpForChallengeRating(cr float64) int {
	switch {
	case cr <= 0:
		return 10
	case cr <= 0.125:
		return 25
	case cr <= 0.25:
		return 50
	case cr <= 0.5:
		return 100
	case cr <= 1:
		return 200
	case cr <= 2:
		return 450
	case cr <= 3:
		return 700
	case cr <= 4:
		return 1100
	case cr <= 5:
		return 1800
	default:
		return 2300
	}
}
