package embedded

import (
	"context"
	"testing"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/script"
	"github.com/eleven-am/searchnode/internal/script/listupdate"
	"github.com/eleven-am/searchnode/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T, overrides map[string]string) domain.NodeSettings {
	t.Helper()

	values := settings.Build(domain.NodeConfig{
		ClusterName:   "test",
		HomeDirectory: t.TempDir(),
		TransportPort: 0,
	}).Map()
	values[domain.SettingNodeLocal] = "true"
	values[domain.SettingStoreType] = "memory"
	for k, v := range overrides {
		values[k] = v
	}
	return domain.NewNodeSettings(values)
}

func launch(t *testing.T, s domain.NodeSettings) *Node {
	t.Helper()

	handle, err := NewLauncher(nil).Launch(context.Background(), s)
	require.NoError(t, err)
	n, ok := handle.(*Node)
	require.True(t, ok)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func waitGreen(t *testing.T, n *Node) {
	t.Helper()

	health, err := n.ClusterHealth(context.Background(), domain.HealthRequest{
		WaitForStatus: domain.HealthGreen,
		Timeout:       10 * time.Second,
	})
	require.NoError(t, err)
	require.False(t, health.TimedOut)
	require.Equal(t, domain.HealthGreen, health.Status)
}

func TestLocalNodeBecomesGreen(t *testing.T) {
	n := launch(t, testSettings(t, nil))
	waitGreen(t, n)

	health, err := n.ClusterHealth(context.Background(), domain.HealthRequest{WaitForStatus: domain.HealthYellow})
	require.NoError(t, err)
	assert.Equal(t, "test", health.ClusterName)
	assert.Equal(t, 1, health.NumberOfNodes)
	assert.Equal(t, 1, health.NumberOfDataNodes)
	assert.NotEmpty(t, n.Info().ID)
}

func TestDocumentLifecycle(t *testing.T) {
	n := launch(t, testSettings(t, nil))
	waitGreen(t, n)
	ctx := context.Background()

	res, err := n.Index(ctx, "issues", "1", []byte(`{"rule":"r1","comments":[{"key":"c1","text":"old"}]}`))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(1), res.Version)

	doc, err := n.Get("issues", "1")
	require.NoError(t, err)
	assert.True(t, doc.Found)
	assert.JSONEq(t, `{"rule":"r1","comments":[{"key":"c1","text":"old"}]}`, string(doc.Source))

	res, err = n.Update(ctx, "issues", "1", listupdate.Name, script.Params{
		listupdate.ParamField:   "comments",
		listupdate.ParamIDField: "key",
		listupdate.ParamIDValue: "c1",
		listupdate.ParamValue:   map[string]interface{}{"key": "c1", "text": "new"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Version)

	doc, err = n.Get("issues", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"rule":"r1","comments":[{"key":"c1","text":"new"}]}`, string(doc.Source))

	res, err = n.Delete(ctx, "issues", "1")
	require.NoError(t, err)
	assert.True(t, res.Found)

	doc, err = n.Get("issues", "1")
	require.NoError(t, err)
	assert.False(t, doc.Found)
}

func TestUpdateMissingDocument(t *testing.T) {
	n := launch(t, testSettings(t, nil))
	waitGreen(t, n)

	_, err := n.Update(context.Background(), "issues", "missing", listupdate.Name, script.Params{
		listupdate.ParamField:   "comments",
		listupdate.ParamIDField: "key",
		listupdate.ParamIDValue: "c1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = n.Update(context.Background(), "issues", "missing", "nope", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownScript)
}

func TestIndexRejectsInvalidJSON(t *testing.T) {
	n := launch(t, testSettings(t, nil))
	waitGreen(t, n)

	_, err := n.Index(context.Background(), "issues", "1", []byte(`{not json`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexNamesCannotAddressOtherIndices(t *testing.T) {
	n := launch(t, testSettings(t, nil))
	waitGreen(t, n)
	ctx := context.Background()

	_, err := n.Index(ctx, "a", "b/c", []byte(`{"owner":"a"}`))
	require.NoError(t, err)

	_, err = n.Index(ctx, "a/b", "c", []byte(`{"owner":"a/b"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = n.Delete(ctx, "a/b", "c")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = n.Update(ctx, "a/b", "c", "listUpdate", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = n.Get("a/b", "c")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	doc, err := n.Get("a", "b/c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
	assert.JSONEq(t, `{"owner":"a"}`, string(doc.Source))
}

func TestNonDataNodeRejectsWrites(t *testing.T) {
	n := launch(t, testSettings(t, map[string]string{domain.SettingNodeData: "false"}))
	waitGreen(t, n)

	_, err := n.Index(context.Background(), "issues", "1", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrDataDisabled)

	health, err := n.ClusterHealth(context.Background(), domain.HealthRequest{WaitForStatus: domain.HealthRed})
	require.NoError(t, err)
	assert.Equal(t, 0, health.NumberOfDataNodes)
}

func TestCloseIsIdempotent(t *testing.T) {
	n := launch(t, testSettings(t, nil))

	assert.False(t, n.IsClosed())
	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
	assert.True(t, n.IsClosed())

	select {
	case <-n.Done():
	default:
		t.Fatal("done channel should be closed")
	}

	_, err := n.ClusterHealth(context.Background(), domain.HealthRequest{WaitForStatus: domain.HealthYellow, Timeout: time.Second})
	assert.ErrorIs(t, err, domain.ErrNodeClosed)

	_, err = n.Get("issues", "1")
	assert.ErrorIs(t, err, domain.ErrNodeClosed)
}

func TestClusterHealthUnblocksOnClose(t *testing.T) {
	n := launch(t, testSettings(t, nil))
	waitGreen(t, n)

	// nothing satisfies a status below green; only Close ends the wait
	errs := make(chan error, 1)
	go func() {
		_, err := n.ClusterHealth(context.Background(), domain.HealthRequest{WaitForStatus: domain.HealthStatus(-1), Timeout: 10 * time.Second})
		errs <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, n.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, domain.ErrNodeClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("health request did not return after close")
	}
}

func TestLaunchRejectsMulticast(t *testing.T) {
	_, err := NewLauncher(nil).Launch(context.Background(),
		testSettings(t, map[string]string{domain.SettingMulticastEnabled: "true"}))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMulticastDenied)
	assert.ErrorIs(t, err, domain.ErrLaunchFailed)
	assert.True(t, domain.IsLaunchError(err))
}

func TestLaunchRejectsUnknownScriptType(t *testing.T) {
	_, err := NewLauncher(nil).Launch(context.Background(),
		testSettings(t, map[string]string{domain.NativeScriptTypeKey("other"): "com.example.Missing"}))

	assert.ErrorIs(t, err, domain.ErrUnknownScript)
	assert.ErrorIs(t, err, domain.ErrLaunchFailed)
}

func TestLaunchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLauncher(nil).Launch(ctx, testSettings(t, nil))
	assert.ErrorIs(t, err, domain.ErrLaunchFailed)
}

func TestOnDiskNodeKeepsDocumentsAcrossRestart(t *testing.T) {
	home := t.TempDir()
	s := testSettings(t, map[string]string{
		domain.SettingNodeLocal: "false",
		domain.SettingStoreType: "mmapfs",
		domain.SettingPathHome:  home,
		domain.SettingNodeName:  "sonarqube-1",
	})

	first := launch(t, s)
	waitGreen(t, first)
	_, err := first.Index(context.Background(), "rules", "r1", []byte(`{"name":"rule"}`))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := launch(t, s)
	waitGreen(t, second)

	doc, err := second.Get("rules", "r1")
	require.NoError(t, err)
	assert.True(t, doc.Found)
	assert.Equal(t, int64(1), doc.Version)
	assert.JSONEq(t, `{"name":"rule"}`, string(doc.Source))

	res, err := second.Index(context.Background(), "rules", "r1", []byte(`{"name":"renamed"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Version)
}

func TestOnDiskNodeRejectsForeignCluster(t *testing.T) {
	home := t.TempDir()
	base := map[string]string{
		domain.SettingStoreType: "mmapfs",
		domain.SettingPathHome:  home,
		domain.SettingNodeName:  "sonarqube-1",
	}

	first := launch(t, testSettings(t, base))
	require.NoError(t, first.Close())

	cfg := storageConfigFrom(testSettings(t, base))

	storage, err := NewStorage(StorageConfig{DataDir: cfg.DataDir, WithState: true}, nil)
	require.NoError(t, err)
	_, err = NewFSM(storage.StateDB(), nil, "other", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	require.NoError(t, storage.Close())
}
