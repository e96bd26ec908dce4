package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/timshannon/badgerhold/v4"

	"go-linkedin-extractor/pkg/logging"
)

type kvBlob struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// BadgerKV stores blobs in an embedded Badger database.
type BadgerKV struct {
	store *badgerhold.Store
	log   *logging.Logger
}

var _ KV = (*BadgerKV)(nil)

// OpenBadger opens (or creates) the database at path. An empty path opens an
// in-memory database.
func OpenBadger(path string, log *logging.Logger) (*BadgerKV, error) {
	options := badgerhold.DefaultOptions
	options.Logger = nil

	if path == "" {
		options.InMemory = true
		options.Dir = ""
		options.ValueDir = ""
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
		options.Dir = path
		options.ValueDir = path
	}

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger database at %q", path)
	}
	log.Debug("badger database opened", "path", path, "in_memory", path == "")

	return &BadgerKV{store: store, log: log}, nil
}

func (b *BadgerKV) Get(ctx context.Context, key string) ([]byte, error) {
	var blob kvBlob
	err := b.store.Get(key, &blob)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %q", key)
	}
	return blob.Value, nil
}

func (b *BadgerKV) Set(ctx context.Context, key string, value []byte) error {
	blob := kvBlob{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := b.store.Upsert(key, &blob); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

func (b *BadgerKV) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
