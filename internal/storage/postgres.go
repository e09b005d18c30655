package storage

import (
	"context"

	"github.com/Dang-Huynh/FoodOrderingService/internal/database"
)

// Postgres stores values in the kv_store table. Used when several shells
// share one device profile through a server-side database.
type Postgres struct {
	db *database.DB
}

func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	return p.db.GetValue(ctx, key)
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	return p.db.PutValue(ctx, key, value)
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	return p.db.DeleteValue(ctx, key)
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
