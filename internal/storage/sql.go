package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (start_time,
                      receiver,
                      modulation,
                      sample_rate)
VALUES (?, ?, ?, ?)`

	insertBlockSQL = `
INSERT INTO blocks (session_id,
                    timestamp,
                    sample_rate,
                    iq)
VALUES (?, ?, ?, ?)`

	selectSessionSQL = `
SELECT id,
       start_time,
       receiver,
       modulation,
       sample_rate
FROM sessions
WHERE id = ?`

	selectSessionsSQL = `
SELECT id,
       start_time,
       receiver,
       modulation,
       sample_rate
FROM sessions
ORDER BY start_time`

	selectBlocksSQL = `
SELECT id,
       session_id,
       timestamp,
       sample_rate,
       iq
FROM blocks
WHERE session_id = ?
ORDER BY timestamp, id`
)

//go:embed schema.sql
var schemaSQL string
