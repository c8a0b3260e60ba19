package model

import (
	"bytes"
	"encoding/gob"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"
)

const keyPrefix = "model/"

// Store persists trained models in Badger, keyed by model name.
type Store struct {
	ttl time.Duration
	db  *badger.DB
	log *slog.Logger
}

// badgerLogger adapts slog for Badger's logger interface.
type badgerLogger struct {
	log *slog.Logger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.log.Error(f, "args", v)
}

func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.log.Warn(f, "args", v)
}

func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.log.Debug(f, "args", v)
}

func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.log.Debug(f, "args", v)
}

// OpenStore opens (or creates) a model store at path. A zero ttl keeps
// models until they are overwritten.
func OpenStore(path string, ttl time.Duration) (*Store, error) {
	log := slog.With("component", "model-store")

	opts := badger.DefaultOptions(path).
		WithLogger(&badgerLogger{log: log}).
		WithValueLogFileSize(1<<26 - 1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	err = db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		db.Close()
		return nil, err
	}

	return &Store{db: db, ttl: ttl, log: log}, nil
}

// Save stores a model under name, replacing any previous version.
func (s *Store) Save(name string, m *NaiveBayes) error {
	var value bytes.Buffer
	if err := gob.NewEncoder(&value).Encode(m); err != nil {
		return err
	}

	return s.db.Update(func(tx *badger.Txn) error {
		e := badger.NewEntry([]byte(keyPrefix+name), value.Bytes())
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return tx.SetEntry(e)
	})
}

// Load retrieves the model stored under name.
func (s *Store) Load(name string) (*NaiveBayes, error) {
	var m *NaiveBayes
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(keyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrModelNotFound
		}
		if err != nil {
			return err
		}

		valb, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return gob.NewDecoder(bytes.NewReader(valb)).Decode(&m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes the model stored under name. Missing models are ignored.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Delete([]byte(keyPrefix + name))
	})
}

// Close shuts down the Badger database.
func (s *Store) Close() error {
	return s.db.Close()
}
