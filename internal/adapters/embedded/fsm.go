package embedded

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/script"
	"github.com/eleven-am/searchnode/internal/xjson"
	"github.com/hashicorp/raft"
)

type commandType string

const (
	commandIndex  commandType = "index"
	commandDelete commandType = "delete"
	commandUpdate commandType = "update"
)

const (
	docPrefix  = "doc/"
	clusterKey = "_cluster/name"
	appliedKey = "_raft/applied"
)

type command struct {
	Type   commandType      `json:"type"`
	Index  string           `json:"index"`
	ID     string           `json:"id"`
	Source xjson.RawMessage `json:"source,omitempty"`
	Script string           `json:"script,omitempty"`
	Params script.Params    `json:"params,omitempty"`
}

type commandResult struct {
	Version int64
	Found   bool
	Err     error
}

type storedDocument struct {
	Version int64            `json:"version"`
	Source  xjson.RawMessage `json:"source"`
}

// Document is a stored source with its version.
type Document struct {
	Index   string           `json:"_index"`
	ID      string           `json:"_id"`
	Version int64            `json:"_version"`
	Found   bool             `json:"found"`
	Source  xjson.RawMessage `json:"_source,omitempty"`
}

func docKey(index, id string) []byte {
	return []byte(docPrefix + index + "/" + id)
}

// validateRef keeps document keys unambiguous: an index name containing "/"
// would address another index's document.
func validateRef(index, id string) error {
	if index == "" || id == "" {
		return domain.NewValidationError("index and id are required", domain.ErrInvalidInput)
	}
	if strings.Contains(index, "/") {
		return domain.NewValidationError(fmt.Sprintf("invalid index name %q: must not contain '/'", index),
			domain.ErrInvalidInput, domain.WithContextDetail("index", index))
	}
	return nil
}

// FSM applies document commands to the state DB. A nil DB means the node
// holds no data and every command is rejected.
//
// The last applied raft index is stored with each write, so entries replayed
// from the raft log after a restart are skipped.
type FSM struct {
	db          *badger.DB
	scripts     script.Bindings
	clusterName string
	logger      *slog.Logger

	mu      sync.Mutex
	applied uint64
}

func NewFSM(db *badger.DB, scripts script.Bindings, clusterName string, logger *slog.Logger) (*FSM, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := &FSM{
		db:          db,
		scripts:     scripts,
		clusterName: clusterName,
		logger:      logger.With("component", "embedded.fsm"),
	}

	if db != nil {
		if err := f.validateCluster(); err != nil {
			return nil, err
		}
		if err := f.loadApplied(); err != nil {
			return nil, domain.NewStorageError("failed to read applied index", err)
		}
	}
	return f, nil
}

func (f *FSM) Apply(log *raft.Log) interface{} {
	var cmd command
	if err := xjson.Unmarshal(log.Data, &cmd); err != nil {
		f.logger.Error("failed to unmarshal command", "error", err)
		return &commandResult{Err: domain.NewStorageError("failed to unmarshal command", err)}
	}

	if f.db == nil {
		return &commandResult{Err: domain.ErrDataDisabled}
	}
	if err := validateRef(cmd.Index, cmd.ID); err != nil {
		return &commandResult{Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if log.Index <= f.applied {
		return &commandResult{}
	}

	var result *commandResult
	switch cmd.Type {
	case commandIndex:
		result = f.applyIndex(cmd, log.Index)
	case commandDelete:
		result = f.applyDelete(cmd, log.Index)
	case commandUpdate:
		result = f.applyUpdate(cmd, log.Index)
	default:
		f.logger.Error("unknown command type", "command_type", cmd.Type)
		return &commandResult{Err: domain.NewValidationError(fmt.Sprintf("unknown command type: %s", cmd.Type), domain.ErrInvalidInput)}
	}

	if result.Err == nil {
		f.applied = log.Index
	}
	return result
}

func (f *FSM) applyIndex(cmd command, index uint64) *commandResult {
	var result commandResult
	err := f.db.Update(func(txn *badger.Txn) error {
		current, found, err := readDocument(txn, cmd.Index, cmd.ID)
		if err != nil {
			return err
		}
		next := storedDocument{Version: 1, Source: cmd.Source}
		if found {
			next.Version = current.Version + 1
		}
		result = commandResult{Version: next.Version, Found: found}
		if err := writeDocument(txn, cmd.Index, cmd.ID, next); err != nil {
			return err
		}
		return markApplied(txn, index)
	})
	if err != nil {
		result.Err = domain.NewStorageError("failed to index document", err,
			domain.WithContextDetail("index", cmd.Index), domain.WithContextDetail("id", cmd.ID))
	}
	return &result
}

func (f *FSM) applyDelete(cmd command, index uint64) *commandResult {
	var result commandResult
	err := f.db.Update(func(txn *badger.Txn) error {
		current, found, err := readDocument(txn, cmd.Index, cmd.ID)
		if err != nil {
			return err
		}
		if found {
			result = commandResult{Version: current.Version + 1, Found: true}
			if err := txn.Delete(docKey(cmd.Index, cmd.ID)); err != nil {
				return err
			}
		}
		return markApplied(txn, index)
	})
	if err != nil {
		result.Err = domain.NewStorageError("failed to delete document", err)
	}
	return &result
}

func (f *FSM) applyUpdate(cmd command, index uint64) *commandResult {
	native, err := f.scripts.New(cmd.Script, cmd.Params)
	if err != nil {
		return &commandResult{Err: err}
	}

	var result commandResult
	err = f.db.Update(func(txn *badger.Txn) error {
		current, found, err := readDocument(txn, cmd.Index, cmd.ID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotFound
		}

		source := script.Source{}
		if len(current.Source) > 0 {
			if err := xjson.Unmarshal(current.Source, &source); err != nil {
				return fmt.Errorf("failed to decode document source: %w", err)
			}
		}
		if err := native.Run(source); err != nil {
			return err
		}

		encoded, err := xjson.Marshal(source)
		if err != nil {
			return fmt.Errorf("failed to encode document source: %w", err)
		}

		next := storedDocument{Version: current.Version + 1, Source: encoded}
		result = commandResult{Version: next.Version, Found: true}
		if err := writeDocument(txn, cmd.Index, cmd.ID, next); err != nil {
			return err
		}
		return markApplied(txn, index)
	})
	if err != nil {
		result.Err = err
	}
	return &result
}

func (f *FSM) Get(index, id string) (Document, error) {
	doc := Document{Index: index, ID: id}
	if err := validateRef(index, id); err != nil {
		return doc, err
	}
	if f.db == nil {
		return doc, domain.ErrDataDisabled
	}

	err := f.db.View(func(txn *badger.Txn) error {
		stored, found, err := readDocument(txn, index, id)
		if err != nil || !found {
			return err
		}
		doc.Found = true
		doc.Version = stored.Version
		doc.Source = stored.Source
		return nil
	})
	return doc, err
}

func (f *FSM) Count() (int, error) {
	if f.db == nil {
		return 0, nil
	}

	count := 0
	err := f.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(docPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func readDocument(txn *badger.Txn, index, id string) (storedDocument, bool, error) {
	var doc storedDocument
	item, err := txn.Get(docKey(index, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return doc, false, nil
	}
	if err != nil {
		return doc, false, err
	}
	err = item.Value(func(val []byte) error {
		return xjson.Unmarshal(val, &doc)
	})
	return doc, err == nil, err
}

func markApplied(txn *badger.Txn, index uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, index)
	return txn.Set([]byte(appliedKey), buf)
}

func (f *FSM) loadApplied() error {
	return f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(appliedKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			f.applied = 0
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt applied index: %d bytes", len(val))
			}
			f.applied = binary.BigEndian.Uint64(val)
			return nil
		})
	})
}

func writeDocument(txn *badger.Txn, index, id string, doc storedDocument) error {
	encoded, err := xjson.Marshal(doc)
	if err != nil {
		return err
	}
	return txn.Set(docKey(index, id), encoded)
}

func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	snapshot := &fsmSnapshot{Data: make(map[string][]byte)}
	if f.db == nil {
		return snapshot, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			snapshot.Data[string(item.Key())] = value
		}
		return nil
	})
	if err != nil {
		f.logger.Error("failed to create snapshot", "error", err)
	} else {
		f.logger.Debug("snapshot created", "keys", len(snapshot.Data))
	}
	return snapshot, err
}

func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snapshot fsmSnapshot
	if err := xjson.NewDecoder(rc).Decode(&snapshot); err != nil {
		f.logger.Error("failed to decode snapshot", "error", err)
		return err
	}
	if f.db == nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.db.DropAll(); err != nil {
		return err
	}
	err := f.db.Update(func(txn *badger.Txn) error {
		for key, value := range snapshot.Data {
			if err := txn.Set([]byte(key), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := f.loadApplied(); err != nil {
		return err
	}
	f.logger.Debug("snapshot restored", "keys", len(snapshot.Data), "applied", f.applied)
	return nil
}

type fsmSnapshot struct {
	Data map[string][]byte `json:"data"`
}

func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		b, err := xjson.Marshal(s)
		if err != nil {
			return err
		}
		if _, err := sink.Write(b); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		_ = sink.Cancel()
	}
	return err
}

func (s *fsmSnapshot) Release() {}

// validateCluster refuses a data directory written by another cluster.
func (f *FSM) validateCluster() error {
	return f.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(clusterKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return txn.Set([]byte(clusterKey), []byte(f.clusterName))
		}
		if err != nil {
			return err
		}

		stored, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if !strings.EqualFold(string(stored), f.clusterName) {
			return domain.NewStorageError(
				fmt.Sprintf("data directory belongs to cluster %q", string(stored)),
				domain.ErrInvalidInput,
				domain.WithContextDetail("cluster", f.clusterName))
		}
		return nil
	})
}
