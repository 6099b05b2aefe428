package database

const (
	// Snapshot queries. Two fixed slots exist: 'current' holds the live
	// snapshot, 'backup' the one-generation-back copy written just before
	// each overwrite.
	queryGetSnapshot = `
		SELECT payload
		FROM snapshots
		WHERE slot = ?`

	queryRotateBackup = `
		INSERT OR REPLACE INTO snapshots (slot, payload, saved_at)
		SELECT 'backup', payload, saved_at
		FROM snapshots
		WHERE slot = 'current'`

	queryUpsertSnapshot = `
		INSERT INTO snapshots (slot, payload, saved_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot) DO UPDATE SET
			payload = excluded.payload,
			saved_at = excluded.saved_at`
)
