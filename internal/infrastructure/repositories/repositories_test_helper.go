package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createTenantTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE tenants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		api_key_hash TEXT NOT NULL UNIQUE,
		webhook_url TEXT,
		webhook_secret TEXT,
		receiver_evm TEXT,
		receiver_tron TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createPlanTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE plans (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		plan_key TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		price TEXT NOT NULL,
		currency TEXT NOT NULL,
		period_days INTEGER,
		features TEXT DEFAULT '[]',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE(tenant_id, plan_key)
	);`)
}

func createPaymentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		external_user_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		token TEXT NOT NULL,
		network TEXT NOT NULL,
		sender_address_encrypted TEXT NOT NULL,
		sender_address_hmac TEXT NOT NULL,
		receiver_address TEXT NOT NULL,
		status TEXT NOT NULL,
		tx_hash TEXT UNIQUE,
		confirmations INTEGER NOT NULL DEFAULT 0,
		tx_confirmed_at DATETIME,
		error_message TEXT,
		retry_count INTEGER NOT NULL DEFAULT 0,
		expires_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX ux_payments_one_inflight
		ON payments (tenant_id, external_user_id)
		WHERE status IN ('pending', 'awaiting_confirmation');`)
}

func createSubscriptionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE subscriptions (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		external_user_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		payment_id TEXT,
		status TEXT NOT NULL,
		starts_at DATETIME,
		ends_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWebhookLogTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE webhook_logs (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		event TEXT NOT NULL,
		payload TEXT NOT NULL,
		target_url TEXT NOT NULL,
		response_status INTEGER,
		response_body TEXT,
		success BOOLEAN NOT NULL DEFAULT 0,
		retry_count INTEGER NOT NULL DEFAULT 0,
		next_retry_at DATETIME,
		created_at DATETIME
	);`)
}

func createOfacTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE ofac_sanctioned_addresses (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		address_lower TEXT NOT NULL,
		address_type TEXT NOT NULL,
		sdn_name TEXT,
		sdn_id TEXT,
		source TEXT NOT NULL,
		last_seen_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE ofac_update_logs (
		id TEXT PRIMARY KEY,
		total_addresses INTEGER NOT NULL,
		new_addresses INTEGER NOT NULL,
		removed INTEGER NOT NULL,
		success BOOLEAN NOT NULL,
		error TEXT,
		created_at DATETIME
	);`)
}
