package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"go-linkedin-extractor/pkg/logging"
)

// FileKV keeps every key in a single pretty-printed JSON file, the same
// shape the browser extension's local storage had. Handy for inspecting
// results by hand.
type FileKV struct {
	mu       sync.Mutex
	filePath string
	data     map[string]json.RawMessage
	log      *logging.Logger
}

var _ KV = (*FileKV)(nil)

// OpenFile creates or loads the store file inside dir.
func OpenFile(dir string, log *logging.Logger) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}
	kv := &FileKV{
		filePath: filepath.Join(dir, "storage.json"),
		data:     make(map[string]json.RawMessage),
		log:      log,
	}
	if err := kv.load(); err != nil {
		return nil, err
	}
	return kv, nil
}

func (f *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (f *FileKV) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return errors.Newf("value for %q is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = append(json.RawMessage(nil), value...)
	return f.save()
}

func (f *FileKV) Close() error { return nil }

// load reads the file into memory. A missing file is an empty store.
func (f *FileKV) load() error {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read %s", f.filePath)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &f.data); err != nil {
		return errors.Wrapf(err, "parse %s", f.filePath)
	}
	f.log.Debug("📋 loaded storage file", "path", f.filePath, "keys", len(f.data))
	return nil
}

// save replaces the file through a temp file and rename.
func (f *FileKV) save() error {
	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal storage")
	}
	tmp := f.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, f.filePath); err != nil {
		return errors.Wrapf(err, "replace %s", f.filePath)
	}
	return nil
}
