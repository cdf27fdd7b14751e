// Package storage persists pre-demodulation channelized IQ blocks to
// SQLite, grouped into per-receiver recording sessions. The write side is
// fed by the channelizer's observer hook through a non-blocking Recorder;
// the read side serves offline tooling such as the waterfall renderer.
package storage

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Session describes one recording session.
type Session struct {
	ID         int64
	StartTime  time.Time
	Receiver   string
	Modulation string
	SampleRate int
}

// Block is one recorded channelized IQ block.
type Block struct {
	ID         int64
	SessionID  int64
	Timestamp  time.Time
	SampleRate int
	IQ         []complex64
}

// Store handles database operations. Writes are atomic per call.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store for the given database path. Connections are opened
// lazily on first use.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}
		s.writeDB = db
	})
	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})
	return s.readDB, s.readDBErr
}

// CreateSession starts a new recording session and returns its ID.
func (s *Store) CreateSession(receiver, modulation string, sampleRate int) (int64, error) {
	db, err := s.getWriteDB()
	if err != nil {
		return 0, err
	}

	result, err := db.Exec(insertSessionSQL, time.Now().UTC(), receiver, modulation, sampleRate)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting session ID: %w", err)
	}
	return id, nil
}

// InsertBlock appends one channelized block to a session.
func (s *Store) InsertBlock(sessionID int64, timestamp time.Time, sampleRate int, iq []complex64) error {
	db, err := s.getWriteDB()
	if err != nil {
		return err
	}
	if _, err = db.Exec(insertBlockSQL, sessionID, timestamp.UTC(), sampleRate, encodeIQ(iq)); err != nil {
		return fmt.Errorf("inserting block: %w", err)
	}
	return nil
}

// Session retrieves one session by ID.
func (s *Store) Session(id int64) (*Session, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	var sess Session
	err = db.QueryRow(selectSessionSQL, id).
		Scan(&sess.ID, &sess.StartTime, &sess.Receiver, &sess.Modulation, &sess.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &sess, nil
}

// Sessions returns all sessions ordered by start time.
func (s *Store) Sessions() ([]*Session, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(selectSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		if err = rows.Scan(&sess.ID, &sess.StartTime, &sess.Receiver, &sess.Modulation, &sess.SampleRate); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, &sess)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// Blocks streams a session's blocks in time order to fn. Iteration stops on
// the first error fn returns.
func (s *Store) Blocks(sessionID int64, fn func(*Block) error) error {
	db, err := s.getReadDB()
	if err != nil {
		return err
	}

	rows, err := db.Query(selectBlocksSQL, sessionID)
	if err != nil {
		return fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b Block
		var blob []byte
		if err = rows.Scan(&b.ID, &b.SessionID, &b.Timestamp, &b.SampleRate, &blob); err != nil {
			return fmt.Errorf("scanning block: %w", err)
		}
		if b.IQ, err = decodeIQ(blob); err != nil {
			return fmt.Errorf("decoding block %d: %w", b.ID, err)
		}
		if err = fn(&b); err != nil {
			return err
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterating blocks: %w", err)
	}
	return nil
}

// Close releases all database connections. Safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.writeDB != nil {
			s.closeErr = s.writeDB.Close()
		}
		if s.readDB != nil {
			if err := s.readDB.Close(); s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}

// encodeIQ packs complex samples as interleaved little-endian float32 pairs.
func encodeIQ(iq []complex64) []byte {
	buf := make([]byte, len(iq)*8)
	for i, s := range iq {
		binary.LittleEndian.PutUint32(buf[i*8:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(buf[i*8+4:], math.Float32bits(imag(s)))
	}
	return buf
}

func decodeIQ(blob []byte) ([]complex64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(blob))
	}
	iq := make([]complex64, len(blob)/8)
	for i := range iq {
		iq[i] = complex(
			math.Float32frombits(binary.LittleEndian.Uint32(blob[i*8:])),
			math.Float32frombits(binary.LittleEndian.Uint32(blob[i*8+4:])),
		)
	}
	return iq, nil
}
