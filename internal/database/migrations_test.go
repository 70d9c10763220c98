package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("all tables exist", func(t *testing.T) {
		for _, tableName := range []string{"snapshots", "snapshot_records"} {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("snapshot_records table has correct columns", func(t *testing.T) {
		expectedColumns := map[string]string{
			"id":                 "bigint",
			"snapshot_id":        "bigint",
			"ticker":             "character varying",
			"price":              "numeric",
			"iv_rank":            "double precision",
			"skew":               "double precision",
			"put_call_ratio":     "double precision",
			"strategy":           "character varying",
			"rationale":          "text",
			"days_to_expiration": "integer",
			"recommendations":    "jsonb",
		}

		for colName, expectedType := range expectedColumns {
			var actualType string
			err := testDB.GetRawConn().QueryRow(`
				SELECT data_type
				FROM information_schema.columns
				WHERE table_name = 'snapshot_records' AND column_name = $1
			`, colName).Scan(&actualType)

			require.NoError(t, err, "column %s should exist in snapshot_records table", colName)
			assert.Equal(t, expectedType, actualType, "column %s should have type %s", colName, expectedType)
		}
	})

	t.Run("indexes exist", func(t *testing.T) {
		expectedIndexes := []struct {
			table string
			index string
		}{
			{"snapshots", "idx_snapshots_loaded_at"},
			{"snapshot_records", "idx_snapshot_records_ticker"},
		}

		for _, idx := range expectedIndexes {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM pg_indexes
					WHERE tablename = $1 AND indexname = $2
				)
			`, idx.table, idx.index).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "index %s should exist on table %s", idx.index, idx.table)
		}
	})

	t.Run("constraints exist", func(t *testing.T) {
		for _, contype := range []string{"u", "f"} {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM pg_constraint c
					JOIN pg_class t ON c.conrelid = t.oid
					WHERE t.relname = 'snapshot_records'
					AND c.contype = $1
				)
			`, contype).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "snapshot_records should have constraint of type %s", contype)
		}
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		assert.NoError(t, testDB.RunMigrations(migrationsDir()))
	})
}
