package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const configCacheKey = "helpdesk:general_config"

// ConfigRepository reads and writes the singleton general_config row. Get
// returns (nil, nil) when no row exists yet; every workflow feature is off
// in that state.
type ConfigRepository interface {
	Get(ctx context.Context) (*domain.GeneralConfig, error)
	Upsert(ctx context.Context, cfg *domain.GeneralConfig) error
}

type configRepository struct {
	pool  *pgxpool.Pool
	cache *redis.Client
	ttl   time.Duration
}

// NewConfigRepository instantiates the repository. When a redis client and
// positive TTL are supplied, reads go through a read-through cache: the
// config is consulted by every escalation cycle and most guarded updates,
// while changing rarely.
func NewConfigRepository(pool *pgxpool.Pool, cache *redis.Client, ttl time.Duration) ConfigRepository {
	if ttl <= 0 {
		cache = nil
	}
	return &configRepository{pool: pool, cache: cache, ttl: ttl}
}

func (r *configRepository) Get(ctx context.Context) (*domain.GeneralConfig, error) {
	if r.cache != nil {
		raw, err := r.cache.Get(ctx, configCacheKey).Bytes()
		if err == nil {
			var cfg domain.GeneralConfig
			if err := json.Unmarshal(raw, &cfg); err == nil {
				return &cfg, nil
			}
		}
	}

	cfg, err := r.fetch(ctx)
	if err != nil || cfg == nil {
		return cfg, err
	}

	if r.cache != nil {
		if raw, err := json.Marshal(cfg); err == nil {
			r.cache.Set(ctx, configCacheKey, raw, r.ttl)
		}
	}
	return cfg, nil
}

func (r *configRepository) fetch(ctx context.Context) (*domain.GeneralConfig, error) {
	const query = `
        SELECT id, workflow_enabled, triage_user_id, triage_department_id,
               escalation_enabled, escalation_target_user_id, escalation_target_department_id,
               timeout_critical, timeout_high, timeout_medium, timeout_low, updated_at
        FROM general_config LIMIT 1`
	var cfg domain.GeneralConfig
	err := r.pool.QueryRow(ctx, query).Scan(
		&cfg.ID,
		&cfg.WorkflowEnabled,
		&cfg.TriageUserID,
		&cfg.TriageDepartmentID,
		&cfg.EscalationEnabled,
		&cfg.EscalationTargetUserID,
		&cfg.EscalationTargetDepartmentID,
		&cfg.TimeoutCritical,
		&cfg.TimeoutHigh,
		&cfg.TimeoutMedium,
		&cfg.TimeoutLow,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *configRepository) Upsert(ctx context.Context, cfg *domain.GeneralConfig) error {
	const query = `
        INSERT INTO general_config (id, workflow_enabled, triage_user_id, triage_department_id,
            escalation_enabled, escalation_target_user_id, escalation_target_department_id,
            timeout_critical, timeout_high, timeout_medium, timeout_low, updated_at)
        VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text),$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())
        ON CONFLICT (id) DO UPDATE SET
            workflow_enabled=EXCLUDED.workflow_enabled,
            triage_user_id=EXCLUDED.triage_user_id,
            triage_department_id=EXCLUDED.triage_department_id,
            escalation_enabled=EXCLUDED.escalation_enabled,
            escalation_target_user_id=EXCLUDED.escalation_target_user_id,
            escalation_target_department_id=EXCLUDED.escalation_target_department_id,
            timeout_critical=EXCLUDED.timeout_critical,
            timeout_high=EXCLUDED.timeout_high,
            timeout_medium=EXCLUDED.timeout_medium,
            timeout_low=EXCLUDED.timeout_low,
            updated_at=NOW()
        RETURNING id, updated_at`
	err := r.pool.QueryRow(ctx, query,
		cfg.ID,
		cfg.WorkflowEnabled,
		cfg.TriageUserID,
		cfg.TriageDepartmentID,
		cfg.EscalationEnabled,
		cfg.EscalationTargetUserID,
		cfg.EscalationTargetDepartmentID,
		cfg.TimeoutCritical,
		cfg.TimeoutHigh,
		cfg.TimeoutMedium,
		cfg.TimeoutLow,
	).Scan(&cfg.ID, &cfg.UpdatedAt)
	if err != nil {
		return err
	}

	if r.cache != nil {
		r.cache.Del(ctx, configCacheKey)
	}
	return nil
}
