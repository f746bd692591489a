package pathmap

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ValentinKolb/fsSync/lib/fserr"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var log = logger.GetLogger("pathmap")

const (
	// HashLength is the length of the hex encoded key digest
	HashLength = 2 * md5.Size

	dirPerm = 0o755
)

type pathMapperImpl struct {
	mu     sync.RWMutex
	root   string
	hashes *xsync.MapOf[string, string]
}

// NewPathMapper creates a path mapper for the given root directory.
// The root does not need to exist yet, it is created on the first EnsureDirectories call.
func NewPathMapper(root string) IPathMapper {
	return &pathMapperImpl{
		root:   root,
		hashes: xsync.NewMapOf[string, string](),
	}
}

// Hash returns the hex encoded digest used for key.
func Hash(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// --------------------------------------------------------------------------
// Interface Methods (docu see pathmap/interface.go)
// --------------------------------------------------------------------------

func (m *pathMapperImpl) Resolve(key, category string) string {
	h, _ := m.hashes.LoadOrCompute(key, func() string {
		return Hash(key)
	})

	return filepath.Join(m.Root(), strings.ToLower(category), h[0:2], h[2:4], h)
}

func (m *pathMapperImpl) EnsureDirectories(path string) error {
	root := filepath.Clean(m.Root())

	// the root itself may be nested arbitrarily deep, everything below it has a fixed depth
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not create root directory "+root)
	}

	rel, err := filepath.Rel(root, filepath.Dir(filepath.Clean(path)))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fserr.NewError(fserr.RetCStorageUnavailable, "path "+path+" is not below root "+root)
	}
	if rel == "." {
		return nil
	}

	current := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		if err := os.Mkdir(current, dirPerm); err != nil && !errors.Is(err, os.ErrExist) {
			log.Errorf("could not create directory %s: %v", current, err)
			return fserr.Wrap(fserr.RetCStorageUnavailable, err, "could not create directory "+current)
		}
	}
	return nil
}

func (m *pathMapperImpl) Root() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

func (m *pathMapperImpl) SetRoot(root string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.Debugf("root changed from %s to %s", m.root, root)
	m.root = root
}
