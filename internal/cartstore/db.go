package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pawmart/storefront-backend/internal/cart"
	"github.com/pawmart/storefront-backend/pkg/db"
	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartEntry is the relational shape of a durable cart: one row per identity
// scope holding the JSON-encoded line list.
type CartEntry struct {
	Scope     string    `gorm:"column:scope;primaryKey"`
	Payload   string    `gorm:"column:payload"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (CartEntry) TableName() string {
	return "cart_entries"
}

// DBStore persists carts through the shared GORM connection. It is the
// deployed alternative to RedisStore when no Redis is available.
type DBStore struct {
	client *db.Client
}

func NewDBStore(client *db.Client) *DBStore {
	return &DBStore{client: client}
}

func (s *DBStore) Load(ctx context.Context, scope string) ([]cart.Line, bool, error) {
	var entry CartEntry
	err := s.client.DB().WithContext(ctx).First(&entry, "scope = ?", scope).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading cart entry")
	}

	var lines []cart.Line
	if err := json.Unmarshal([]byte(entry.Payload), &lines); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart entry")
	}
	return lines, true, nil
}

func (s *DBStore) Save(ctx context.Context, scope string, lines []cart.Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart entry")
	}

	entry := CartEntry{Scope: scope, Payload: string(payload), UpdatedAt: time.Now().UTC()}
	err = s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing cart entry")
	}
	return nil
}

func (s *DBStore) Delete(ctx context.Context, scope string) error {
	err := s.client.DB().WithContext(ctx).Delete(&CartEntry{}, "scope = ?", scope).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting cart entry")
	}
	return nil
}
