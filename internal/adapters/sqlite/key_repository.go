package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atvirokodosprendimai/mutanox/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

type apiKeyModel struct {
	Key        string     `gorm:"column:api_key;primaryKey"`
	Owner      string     `gorm:"column:owner;not null"`
	Role       string     `gorm:"column:role;not null"`
	Active     bool       `gorm:"column:active;not null"`
	UsageCount int64      `gorm:"column:usage_count;not null"`
	LastUsed   *time.Time `gorm:"column:last_used"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
}

func (apiKeyModel) TableName() string {
	return "api_keys"
}

func toModel(k domain.APIKey) apiKeyModel {
	role := k.Role
	if role == "" {
		role = domain.RoleUser
	}
	return apiKeyModel{
		Key:        k.Key,
		Owner:      k.Owner,
		Role:       string(role),
		Active:     k.Active,
		UsageCount: k.UsageCount,
		LastUsed:   k.LastUsed,
		CreatedAt:  k.CreatedAt.UTC(),
	}
}

func (m apiKeyModel) toDomain() domain.APIKey {
	k := domain.APIKey{
		Key:        m.Key,
		Owner:      m.Owner,
		Role:       domain.Role(m.Role),
		Active:     m.Active,
		UsageCount: m.UsageCount,
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if m.LastUsed != nil {
		used := m.LastUsed.UTC()
		k.LastUsed = &used
	}
	return k
}

// KeyRepository is the sqlite engine of ports.KeyStore. All mutations run on
// the single writer connection; Track increments in SQL.
type KeyRepository struct {
	db   *gormsqlite.DB
	seed func() []domain.APIKey
}

func NewKeyRepository(db *gormsqlite.DB, seed func() []domain.APIKey) *KeyRepository {
	return &KeyRepository{db: db, seed: seed}
}

func (r *KeyRepository) Load(ctx context.Context) (map[string]domain.APIKey, error) {
	models, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 && r.seed != nil {
		if err := r.seedEmpty(ctx); err != nil {
			return nil, err
		}
		if models, err = r.list(ctx); err != nil {
			return nil, err
		}
	}

	out := make(map[string]domain.APIKey, len(models))
	for _, m := range models {
		out[m.Key] = m.toDomain()
	}
	return out, nil
}

func (r *KeyRepository) Get(ctx context.Context, key string) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("api_key = ?", key).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.APIKey{}, domain.ErrNotFound
		}
		return domain.APIKey{}, fmt.Errorf("get api key: %w", err)
	}
	return model.toDomain(), nil
}

func (r *KeyRepository) Track(ctx context.Context, key string, at time.Time) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Where("api_key = ?", key).First(&model).Error; err != nil {
			return err
		}
		if !model.Active {
			return domain.ErrInactive
		}
		err := tx.Model(&apiKeyModel{}).
			Where("api_key = ? AND active = ?", key, true).
			Updates(map[string]any{
				"usage_count": gorm.Expr("usage_count + 1"),
				"last_used":   at.UTC(),
			}).Error
		if err != nil {
			return err
		}
		return tx.Where("api_key = ?", key).First(&model).Error
	})
	if err != nil {
		return domain.APIKey{}, mapErr("track api key", err)
	}
	return model.toDomain(), nil
}

func (r *KeyRepository) Insert(ctx context.Context, key domain.APIKey) error {
	model := toModel(key)
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}
		return nil
	})
	if err != nil {
		return mapErr("insert api key", err)
	}
	return nil
}

func (r *KeyRepository) Toggle(ctx context.Context, key string) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Where("api_key = ?", key).First(&model).Error; err != nil {
			return err
		}
		model.Active = !model.Active
		return tx.Model(&apiKeyModel{}).Where("api_key = ?", key).Update("active", model.Active).Error
	})
	if err != nil {
		return domain.APIKey{}, mapErr("toggle api key", err)
	}
	return model.toDomain(), nil
}

func (r *KeyRepository) Delete(ctx context.Context, key string) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("api_key = ?", key).Delete(&apiKeyModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return mapErr("delete api key", err)
	}
	return nil
}

func (r *KeyRepository) list(ctx context.Context) ([]apiKeyModel, error) {
	var models []apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("created_at ASC, api_key ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return models, nil
}

// seedEmpty re-checks emptiness under the writer so concurrent first loads
// seed once.
func (r *KeyRepository) seedEmpty(ctx context.Context) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var n int64
		if err := tx.Model(&apiKeyModel{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, k := range r.seed() {
			model := toModel(k)
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed api keys: %w", err)
	}
	return nil
}

func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, domain.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, domain.ErrInactive), errors.Is(err, domain.ErrConflict):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
