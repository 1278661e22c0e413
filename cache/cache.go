package cache

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"gw2_isac/share"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

type cacheKey struct {
	h64  uint64
	h64a uint64
}

// Storage keeps JSON documents on disk, keyed by an arbitrary string.
type Storage struct {
	dir string

	savingLock sync.RWMutex
	saving     map[cacheKey]struct{}
}

// New opens the cache under dir. When the stored version differs from version
// the directory is wiped, so a schema change never decodes stale documents.
func New(dir string, version string) (*Storage, error) {
	err := cleanUpWithVersion(dir, version)
	if err != nil {
		return nil, err
	}

	return &Storage{
		dir:    dir,
		saving: make(map[cacheKey]struct{}, 32),
	}, nil
}

func (s *Storage) lock(h cacheKey) bool {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	_, ok := s.saving[h]
	if !ok {
		s.saving[h] = struct{}{}
	}
	return !ok
}
func (s *Storage) unlock(h cacheKey) {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	delete(s.saving, h)
}
func (s *Storage) checkSkip(h cacheKey) bool {
	s.savingLock.RLock()
	defer s.savingLock.RUnlock()

	_, ok := s.saving[h]
	return ok
}

func (s *Storage) path(key string) (cacheKey, string) {
	h := fnv.New64a()
	fmt.Fprint(h, key)

	ha := fnv.New64()
	fmt.Fprint(ha, key)

	hash := cacheKey{
		h64:  h.Sum64(),
		h64a: ha.Sum64(),
	}

	return hash, filepath.Join(s.dir, fmt.Sprintf("%016x-%016x.json", hash.h64, hash.h64a))
}

// Load decodes the document stored under key into r.
// It reports false on a miss, or while the same key is being written.
func (s *Storage) Load(key string, r interface{}) bool {
	hash, fsPath := s.path(key)

	if s.checkSkip(hash) {
		return false
	}

	fs, err := os.Open(fsPath)
	if err != nil {
		return false
	}
	defer fs.Close()

	err = jsoniter.NewDecoder(fs).Decode(r)
	if err != nil {
		share.Report(errors.Wrap(err, fsPath))
		return false
	}
	return true
}

func (s *Storage) Save(key string, r interface{}) bool {
	hash, fsPath := s.path(key)

	if !s.lock(hash) {
		return false
	}
	defer s.unlock(hash)

	fs, err := os.Create(fsPath)
	if err != nil {
		share.Report(err)
		return false
	}

	err = jsoniter.NewEncoder(fs).Encode(r)
	if err != nil {
		share.Report(err)
		fs.Close()
		os.Remove(fsPath)
		return false
	}

	err = fs.Close()
	if err != nil {
		share.Report(err)
		os.Remove(fsPath)
		return false
	}

	return true
}

func cleanUpWithVersion(dir string, version string) error {
	versionFile := filepath.Join(dir, "version")

	old, err := os.ReadFile(versionFile)
	if err == nil && string(old) == version {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}

	err = os.RemoveAll(dir)
	if err != nil {
		return errors.WithStack(err)
	}

	err = os.MkdirAll(dir, 0700)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(os.WriteFile(versionFile, []byte(version), 0600))
}
