package embedded

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/script"
	"github.com/eleven-am/searchnode/internal/xjson"
	"github.com/hashicorp/raft"
)

const (
	nodeComponent       = "adapters.embedded.Node"
	defaultApplyTimeout = 5 * time.Second
	healthPollInterval  = 25 * time.Millisecond
	crashCheckInterval  = 250 * time.Millisecond
)

// Info describes a running node.
type Info struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ClusterName string    `json:"cluster_name"`
	Address     string    `json:"transport_address"`
	Data        bool      `json:"data"`
	Local       bool      `json:"local"`
	StoreType   string    `json:"store_type"`
	Throttle    string    `json:"throttle"`
	StartedAt   time.Time `json:"started_at"`
}

// Node is a single-member raft cluster storing JSON documents in badger.
type Node struct {
	info     Info
	settings domain.NodeSettings
	logger   *slog.Logger

	raft      *raft.Raft
	transport io.Closer
	storage   *Storage
	fsm       *FSM
	throttle  *throttle
	http      *debugServer

	applyTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
	done      chan struct{}
}

func (n *Node) Info() Info {
	return n.info
}

func (n *Node) Settings() domain.NodeSettings {
	return n.settings
}

func (n *Node) IsClosed() bool {
	return n.closed.Load()
}

func (n *Node) Done() <-chan struct{} {
	return n.done
}

// Close shuts down the debug HTTP server, raft, the transport and the stores,
// in that order. Subsequent calls return the first call's result.
func (n *Node) Close() error {
	n.closeOnce.Do(func() {
		n.closed.Store(true)
		n.logger.Info("closing node")

		var errs error
		if n.http != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := n.http.Shutdown(ctx); err != nil {
				errs = errors.Join(errs, err)
			}
			cancel()
		}
		if n.raft != nil {
			if err := n.raft.Shutdown().Error(); err != nil {
				errs = errors.Join(errs, domain.NewRaftError("failed to shut down raft", err, domain.WithComponent(nodeComponent)))
			}
		}
		if n.transport != nil {
			if err := n.transport.Close(); err != nil {
				errs = errors.Join(errs, domain.NewNetworkError("failed to close transport", err, domain.WithComponent(nodeComponent)))
			}
		}
		if n.storage != nil {
			if err := n.storage.Close(); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		n.closeErr = errs
		close(n.done)
		if errs != nil {
			n.logger.Warn("node closed with errors", "error", errs)
		} else {
			n.logger.Info("node closed")
		}
	})
	return n.closeErr
}

// watch closes the node if raft stops on its own.
func (n *Node) watch() {
	ticker := time.NewTicker(crashCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.done:
			return
		case <-ticker.C:
			if n.raft.State() == raft.Shutdown && !n.IsClosed() {
				n.logger.Error("raft stopped unexpectedly, closing node")
				_ = n.Close()
				return
			}
		}
	}
}

func (n *Node) status() domain.HealthStatus {
	if n.IsClosed() {
		return domain.HealthRed
	}
	if n.raft.State() == raft.Leader {
		return domain.HealthGreen
	}
	if addr, _ := n.raft.LeaderWithID(); addr != "" {
		return domain.HealthYellow
	}
	return domain.HealthRed
}

func (n *Node) healthResponse(status domain.HealthStatus, timedOut bool) domain.HealthResponse {
	nodes := 1
	if future := n.raft.GetConfiguration(); future.Error() == nil {
		nodes = len(future.Configuration().Servers)
	}
	dataNodes := 0
	if n.info.Data {
		dataNodes = nodes
	}
	return domain.HealthResponse{
		ClusterName:       n.info.ClusterName,
		Status:            status,
		TimedOut:          timedOut,
		NumberOfNodes:     nodes,
		NumberOfDataNodes: dataNodes,
	}
}

// ClusterHealth waits up to req.Timeout for the cluster to reach
// req.WaitForStatus and reports the status observed last.
func (n *Node) ClusterHealth(ctx context.Context, req domain.HealthRequest) (domain.HealthResponse, error) {
	if n.IsClosed() {
		return domain.HealthResponse{}, domain.ErrNodeClosed
	}

	status := n.status()
	if status.AtLeast(req.WaitForStatus) || req.Timeout <= 0 {
		return n.healthResponse(status, !status.AtLeast(req.WaitForStatus)), nil
	}

	timer := time.NewTimer(req.Timeout)
	defer timer.Stop()
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return domain.HealthResponse{}, domain.NewTimeoutError("cluster health request cancelled", ctx.Err(),
				domain.WithComponent(nodeComponent), domain.WithOperation("ClusterHealth"))
		case <-n.done:
			return domain.HealthResponse{}, domain.ErrNodeClosed
		case <-timer.C:
			return n.healthResponse(n.status(), true), nil
		case <-ticker.C:
			if status = n.status(); status.AtLeast(req.WaitForStatus) {
				return n.healthResponse(status, false), nil
			}
		}
	}
}

// IndexResult reports the outcome of a write.
type IndexResult struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Version int64  `json:"_version"`
	Created bool   `json:"created,omitempty"`
	Found   bool   `json:"found"`
}

func (n *Node) Index(ctx context.Context, index, id string, source []byte) (IndexResult, error) {
	if !xjson.Valid(source) {
		return IndexResult{}, domain.NewValidationError("document source is not valid JSON", domain.ErrInvalidInput)
	}
	if err := n.throttle.wait(ctx, len(source)); err != nil {
		return IndexResult{}, domain.NewTimeoutError("store throttle wait aborted", err)
	}

	res, err := n.apply(command{Type: commandIndex, Index: index, ID: id, Source: source})
	if err != nil {
		return IndexResult{}, err
	}
	return IndexResult{Index: index, ID: id, Version: res.Version, Created: !res.Found, Found: res.Found}, nil
}

func (n *Node) Get(index, id string) (Document, error) {
	if n.IsClosed() {
		return Document{}, domain.ErrNodeClosed
	}
	return n.fsm.Get(index, id)
}

func (n *Node) Delete(ctx context.Context, index, id string) (IndexResult, error) {
	if err := ctx.Err(); err != nil {
		return IndexResult{}, err
	}
	res, err := n.apply(command{Type: commandDelete, Index: index, ID: id})
	if err != nil {
		return IndexResult{}, err
	}
	return IndexResult{Index: index, ID: id, Version: res.Version, Found: res.Found}, nil
}

// Update runs the named native script against a stored document.
func (n *Node) Update(ctx context.Context, index, id, scriptName string, params script.Params) (IndexResult, error) {
	if err := ctx.Err(); err != nil {
		return IndexResult{}, err
	}
	res, err := n.apply(command{Type: commandUpdate, Index: index, ID: id, Script: scriptName, Params: params})
	if err != nil {
		return IndexResult{}, err
	}
	return IndexResult{Index: index, ID: id, Version: res.Version, Found: true}, nil
}

func (n *Node) apply(cmd command) (*commandResult, error) {
	if n.IsClosed() {
		return nil, domain.ErrNodeClosed
	}
	if err := validateRef(cmd.Index, cmd.ID); err != nil {
		return nil, err
	}
	if n.raft.State() != raft.Leader {
		return nil, domain.NewRaftError("node is not the leader", nil,
			domain.WithComponent(nodeComponent), domain.WithOperation(string(cmd.Type)))
	}

	data, err := xjson.Marshal(cmd)
	if err != nil {
		return nil, domain.NewValidationError("failed to encode command", err)
	}

	future := n.raft.Apply(data, n.applyTimeout)
	if err := future.Error(); err != nil {
		return nil, domain.NewRaftError("failed to apply command", err,
			domain.WithComponent(nodeComponent), domain.WithOperation(string(cmd.Type)))
	}

	res, ok := future.Response().(*commandResult)
	if !ok {
		return nil, domain.NewRaftError("unexpected apply response", nil, domain.WithComponent(nodeComponent))
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return res, nil
}
