package embedded

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/hashicorp/raft"
	raftbadger "github.com/rfyiamcool/raft-badger"
)

const storageComponent = "adapters.embedded.Storage"

// Storage holds the raft log, stable and snapshot stores plus the document DB.
type Storage struct {
	logStore      raft.LogStore
	stableStore   raft.StableStore
	snapshotStore raft.SnapshotStore
	stateDB       *badger.DB
	closer        io.Closer
}

type StorageConfig struct {
	// DataDir is <path.home>/data/<cluster>/<node>. Ignored when InMemory is set.
	DataDir  string
	InMemory bool
	// WithState opens the document DB; false for nodes with node.data=false.
	WithState bool
}

func newStorageError(message string, cause error, opts ...domain.ErrorOption) *domain.DomainError {
	merged := append([]domain.ErrorOption{domain.WithComponent(storageComponent)}, opts...)
	return domain.NewStorageError(message, cause, merged...)
}

func storageConfigFrom(settings domain.NodeSettings) StorageConfig {
	home := settings.GetDefault(domain.SettingPathHome, "")
	cluster := settings.GetDefault(domain.SettingClusterName, domain.DefaultClusterName)
	node := settings.GetDefault(domain.SettingNodeName, "node")

	return StorageConfig{
		DataDir:   filepath.Join(home, "data", cluster, node),
		InMemory:  strings.EqualFold(settings.GetDefault(domain.SettingStoreType, ""), "memory"),
		WithState: settings.GetBool(domain.SettingNodeData, true),
	}
}

func NewStorage(cfg StorageConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.InMemory {
		return newMemoryStorage(cfg, logger)
	}

	if cfg.DataDir == "" {
		return nil, newStorageError("data directory is required", nil)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, newStorageError("failed to create data directory", err,
			domain.WithContextDetail("data_dir", cfg.DataDir))
	}

	logPath := filepath.Join(cfg.DataDir, "raft-log")
	snapshotPath := filepath.Join(cfg.DataDir, "snapshots")
	statePath := filepath.Join(cfg.DataDir, "state")

	if err := os.MkdirAll(snapshotPath, 0o755); err != nil {
		return nil, newStorageError("failed to create snapshot directory", err,
			domain.WithContextDetail("snapshot_dir", snapshotPath))
	}

	logOpts := tunedOptions(badger.DefaultOptions(logPath))
	logOpts.Logger = newBadgerLogger(logger, "raft-log")

	store, err := raftbadger.New(raftbadger.Config{DataPath: logPath}, &logOpts)
	if err != nil {
		return nil, newStorageError("failed to open raft log store", err,
			domain.WithContextDetail("log_path", logPath))
	}

	snapshotStore, err := raft.NewFileSnapshotStore(snapshotPath, 2, io.Discard)
	if err != nil {
		_ = store.Close()
		return nil, newStorageError("failed to open snapshot store", err,
			domain.WithContextDetail("snapshot_dir", snapshotPath))
	}

	s := &Storage{
		logStore:      logCompat{LogStore: store},
		stableStore:   stableCompat{StableStore: store},
		snapshotStore: snapshotStore,
		closer:        store,
	}

	if cfg.WithState {
		stateOpts := tunedOptions(badger.DefaultOptions(statePath))
		stateOpts.Logger = newBadgerLogger(logger, "state")

		stateDB, err := badger.Open(stateOpts)
		if err != nil {
			_ = store.Close()
			return nil, newStorageError("failed to open state database", err,
				domain.WithContextDetail("state_path", statePath))
		}
		s.stateDB = stateDB
	}

	return s, nil
}

func newMemoryStorage(cfg StorageConfig, logger *slog.Logger) (*Storage, error) {
	inmem := raft.NewInmemStore()
	s := &Storage{
		logStore:      inmem,
		stableStore:   inmem,
		snapshotStore: raft.NewInmemSnapshotStore(),
	}

	if cfg.WithState {
		opts := tunedOptions(badger.DefaultOptions("").WithInMemory(true))
		opts.Logger = newBadgerLogger(logger, "state")

		db, err := badger.Open(opts)
		if err != nil {
			return nil, newStorageError("failed to open in-memory state database", err)
		}
		s.stateDB = db
	}
	return s, nil
}

func tunedOptions(opts badger.Options) badger.Options {
	opts.MemTableSize = 16 << 20
	opts.NumMemtables = 2
	opts.NumLevelZeroTables = 2
	opts.NumLevelZeroTablesStall = 4
	opts.BlockCacheSize = 8 << 20
	opts.IndexCacheSize = 8 << 20
	if !opts.InMemory {
		opts.ValueLogFileSize = 16 << 20
	}
	return opts
}

func (s *Storage) StateDB() *badger.DB {
	return s.stateDB
}

// HasExistingState reports whether a previous run left raft state behind.
func (s *Storage) HasExistingState() bool {
	if s == nil {
		return false
	}
	if s.logStore != nil {
		if lastIndex, err := s.logStore.LastIndex(); err == nil && lastIndex > 0 {
			return true
		}
	}
	if s.snapshotStore != nil {
		if snapshots, err := s.snapshotStore.List(); err == nil && len(snapshots) > 0 {
			return true
		}
	}
	return false
}

// Close releases the stores. The log and stable stores share one badger
// instance, which is closed once.
func (s *Storage) Close() error {
	var errs error

	if s.stateDB != nil {
		if err := s.stateDB.Close(); err != nil {
			errs = errors.Join(errs, newStorageError("failed to close state database", err))
		}
		s.stateDB = nil
	}

	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			errs = errors.Join(errs, newStorageError("failed to close raft log store", err))
		}
		s.closer = nil
	}

	s.logStore = nil
	s.stableStore = nil
	s.snapshotStore = nil
	return errs
}

type stableCompat struct {
	raft.StableStore
}

func (s stableCompat) Get(key []byte) ([]byte, error) {
	value, err := s.StableStore.Get(key)
	if isNotFound(err) {
		return nil, nil
	}
	return value, err
}

func (s stableCompat) GetUint64(key []byte) (uint64, error) {
	value, err := s.StableStore.GetUint64(key)
	if isNotFound(err) {
		return 0, nil
	}
	return value, err
}

type logCompat struct {
	raft.LogStore
}

func (l logCompat) GetLog(index uint64, out *raft.Log) error {
	err := l.LogStore.GetLog(index, out)
	if isNotFound(err) {
		return raft.ErrLogNotFound
	}
	return err
}

func (l logCompat) FirstIndex() (uint64, error) {
	idx, err := l.LogStore.FirstIndex()
	if isNotFound(err) {
		return 0, nil
	}
	return idx, err
}

func (l logCompat) LastIndex() (uint64, error) {
	idx, err := l.LogStore.LastIndex()
	if isNotFound(err) {
		return 0, nil
	}
	return idx, err
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, badger.ErrKeyNotFound) ||
		strings.Contains(err.Error(), "not found") ||
		strings.Contains(err.Error(), "no such key")
}
