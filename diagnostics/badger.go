package diagnostics

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/notargets/gopolar/field"
)

// BadgerSink stores every field of every event in a badger database under
// run/event/iteration/field
type BadgerSink struct {
	DB *badger.DB
}

type badgerLogger struct{ logger *slog.Logger }

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}
func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// NewBadgerSink opens the database in dir, or in memory when dir is empty
func NewBadgerSink(dir string, logger *slog.Logger) (bs *BadgerSink, err error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err = os.MkdirAll(dir, 0750); err != nil {
			err = fmt.Errorf("create snapshot directory %s: %w", dir, err)
			return
		}
		opts = badger.DefaultOptions(dir)
	}
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	var db *badger.DB
	if db, err = badger.Open(opts); err != nil {
		err = fmt.Errorf("open snapshot database: %w", err)
		return
	}
	bs = &BadgerSink{DB: db}
	return
}

// SnapshotKey is the key a field of an event is stored under. Iterations are
// big endian so keys of one event sort by iteration.
func SnapshotKey(run uuid.UUID, event string, iter int, name string) []byte {
	var b bytes.Buffer
	b.Write(run[:])
	b.WriteString("/" + event + "/")
	_ = binary.Write(&b, binary.BigEndian, uint64(iter))
	b.WriteString("/" + name)
	return b.Bytes()
}

func encodeScalar(f *field.Scalar, t float64) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, [2]uint32{uint32(f.G.Nr), uint32(f.G.Nt)})
	_ = binary.Write(&b, binary.LittleEndian, t)
	_ = binary.Write(&b, binary.LittleEndian, f.V)
	return b.Bytes()
}

func (bs *BadgerSink) Emit(_ context.Context, ev Event) error {
	return bs.DB.Update(func(txn *badger.Txn) error {
		for _, name := range ev.FieldNames() {
			key := SnapshotKey(ev.RunID, ev.Name, ev.Iter, name)
			if err := txn.Set(key, encodeScalar(ev.Fields[name], ev.Time)); err != nil {
				return fmt.Errorf("store %s of %s/%d: %w", name, ev.Name, ev.Iter, err)
			}
		}
		return nil
	})
}

// Snapshot is a stored field
type Snapshot struct {
	Nr, Nt int
	Time   float64
	V      []float64
}

// Load reads back a stored field
func (bs *BadgerSink) Load(run uuid.UUID, event string, iter int, name string) (s Snapshot, err error) {
	var raw []byte
	err = bs.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(SnapshotKey(run, event, iter, name))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		err = fmt.Errorf("load %s of %s/%d: %w", name, event, iter, err)
		return
	}
	var (
		r    = bytes.NewReader(raw)
		dims [2]uint32
	)
	if err = binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return
	}
	if err = binary.Read(r, binary.LittleEndian, &s.Time); err != nil {
		return
	}
	s.Nr, s.Nt = int(dims[0]), int(dims[1])
	s.V = make([]float64, s.Nr*s.Nt)
	err = binary.Read(r, binary.LittleEndian, s.V)
	return
}

// Iterations lists the stored iterations of an event field in order
func (bs *BadgerSink) Iterations(run uuid.UUID, event, name string) (iters []int, err error) {
	prefix := append(append([]byte{}, run[:]...), []byte("/"+event+"/")...)
	err = bs.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()[len(prefix):]
			if len(key) < 9 || string(key[9:]) != name {
				continue
			}
			iters = append(iters, int(binary.BigEndian.Uint64(key[:8])))
		}
		return nil
	})
	return
}

func (bs *BadgerSink) Close() error { return bs.DB.Close() }
