// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	enqueueOperation = `
		INSERT INTO sync_queue (
			id,
			kind,
			collection,
			business_id,
			payload,
			created_at,
			retries,
			max_retries,
			last_error
		) VALUES (?, ?, ?, ?, ?, ?, 0, ?, '');`

	peekAllOperations = `
		SELECT
			id,
			kind,
			collection,
			business_id,
			payload,
			created_at,
			retries,
			max_retries,
			last_error
		FROM sync_queue
		ORDER BY seq;`

	getOperation = `
		SELECT
			id,
			kind,
			collection,
			business_id,
			payload,
			created_at,
			retries,
			max_retries,
			last_error
		FROM sync_queue
		WHERE id = ?;`

	removeOperation = `DELETE FROM sync_queue WHERE id = ?;`

	updateOperationRetries = `
		UPDATE sync_queue
		SET retries = ?, last_error = ?
		WHERE id = ?;`

	countOperations = `SELECT COUNT(*) FROM sync_queue;`

	insertDeadLetter = `
		INSERT OR REPLACE INTO dead_letters (id, operation, reason, failed_at)
		VALUES (?, ?, ?, ?);`

	listDeadLetters = `
		SELECT operation, reason, failed_at
		FROM dead_letters
		ORDER BY failed_at, id;`

	purgeDeadLetters = `DELETE FROM dead_letters;`

	getMetadata = `SELECT value FROM metadata WHERE key = ?;`

	setMetadata = `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;`
)

// collection tables share one layout
var collectionColumns = []string{"id", "business_id", "fields", "created_at"}
