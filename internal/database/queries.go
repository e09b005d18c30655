package database

// Migration bookkeeping
const (
	CreateMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	SelectAppliedMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	InsertMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Key-value queries
const (
	GetValueSQL = `SELECT value FROM kv_store WHERE key = $1`

	PutValueSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()`

	DeleteValueSQL = `DELETE FROM kv_store WHERE key = $1`
)

// Order event queries
const (
	InsertOrderEventSQL = `
		INSERT INTO order_events (order_id, restaurant_id, status, item_count, total, placed_at)
		VALUES ($1, $2, $3, $4, ($5::text)::numeric, $6)`

	GetOrderEventsSQL = `
		SELECT order_id, restaurant_id, status, item_count, total::text, placed_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY received_at ASC`
)
