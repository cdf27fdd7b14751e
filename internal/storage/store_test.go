package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(filepath.Join(t.TempDir(), "test.sqlite"))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreateSession("marine16", "FM", 32000)
	if err != nil {
		t.Fatal(err)
	}
	if id <= 0 {
		t.Fatalf("CreateSession returned id %d", id)
	}

	sess, err := store.Session(id)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Receiver != "marine16" {
		t.Errorf("Receiver = %q, want marine16", sess.Receiver)
	}
	if sess.Modulation != "FM" {
		t.Errorf("Modulation = %q, want FM", sess.Modulation)
	}
	if sess.SampleRate != 32000 {
		t.Errorf("SampleRate = %d, want 32000", sess.SampleRate)
	}
}

func TestSessionsOrderedByStartTime(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.CreateSession(name, "AM", 16000); err != nil {
			t.Fatal(err)
		}
	}

	sessions, err := store.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 3 {
		t.Fatalf("Sessions() returned %d sessions, want 3", len(sessions))
	}
}

func TestBlocksRoundTrip(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreateSession("marine16", "FM", 32000)
	if err != nil {
		t.Fatal(err)
	}

	want := [][]complex64{
		{1, complex(0, 1)},
		{complex(-0.5, 0.25), complex(0.125, -1)},
	}
	base := time.Now().UTC().Truncate(time.Second)
	for i, iq := range want {
		if err = store.InsertBlock(id, base.Add(time.Duration(i)*time.Second), 32000, iq); err != nil {
			t.Fatal(err)
		}
	}

	var got [][]complex64
	err = store.Blocks(id, func(b *Block) error {
		got = append(got, b.IQ)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(want) {
		t.Fatalf("read %d blocks, want %d", len(got), len(want))
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("block %d has %d samples, want %d", i, len(got[i]), len(want[i]))
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("block %d sample %d = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestDecodeIQRejectsTruncatedBlob(t *testing.T) {
	if _, err := decodeIQ(make([]byte, 13)); err == nil {
		t.Fatal("decodeIQ accepted a truncated blob")
	}
}

func TestRecorderPersistsBlocks(t *testing.T) {
	store := newTestStore(t)

	rec, err := NewRecorder(store, "marine16", "FM", 32000)
	if err != nil {
		t.Fatal(err)
	}

	rec.Observe([]complex64{1, 2, 3})
	rec.Observe([]complex64{4, 5})
	rec.Close() // drains the queue

	var blocks int
	var samples int
	err = store.Blocks(rec.SessionID(), func(b *Block) error {
		blocks++
		samples += len(b.IQ)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if blocks != 2 || samples != 5 {
		t.Errorf("persisted %d blocks with %d samples, want 2 blocks with 5", blocks, samples)
	}
	if rec.Dropped() != 0 {
		t.Errorf("Dropped() = %d, want 0", rec.Dropped())
	}
}

func TestRecorderObserveCopiesBlock(t *testing.T) {
	store := newTestStore(t)

	rec, err := NewRecorder(store, "marine16", "FM", 32000)
	if err != nil {
		t.Fatal(err)
	}

	// The pipeline reuses its block buffer, so the recorder must snapshot it.
	block := []complex64{1, 1, 1}
	rec.Observe(block)
	block[0] = 99
	rec.Close()

	err = store.Blocks(rec.SessionID(), func(b *Block) error {
		if b.IQ[0] != 1 {
			t.Errorf("stored sample = %v, want 1", b.IQ[0])
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
