package settings

import (
	"strings"
	"testing"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/script/listupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestBuildProductionDefaults(t *testing.T) {
	b := NewBuilder()
	b.Now = fixedClock(1_400_000_000_000)

	s := b.Build(domain.NodeConfig{
		ClusterName:   domain.DefaultClusterName,
		HomeDirectory: "/data/es",
		TransportPort: 9001,
	})

	assert.Equal(t, map[string]string{
		"es.foreground":                            "yes",
		"discovery.zen.ping.multicast.enabled":     "false",
		"index.merge.policy.max_merge_at_once":     "200",
		"index.merge.policy.segments_per_tier":     "200",
		"index.number_of_shards":                   "1",
		"index.number_of_replicas":                 "0",
		"index.store.type":                         "mmapfs",
		"indices.store.throttle.type":              "merge",
		"indices.store.throttle.max_bytes_per_sec": "200mb",
		"script.default_lang":                      "native",
		"script.native.listUpdate.type":            listupdate.FactoryType,
		"cluster.name":                             "sonarqube",
		"node.name":                                "sonarqube-1400000000000",
		"node.data":                                "true",
		"node.local":                               "false",
		"transport.tcp.port":                       "9001",
		"path.home":                                "/data/es",
		"http.enabled":                             "false",
	}, s.Map())

	_, hasPort := s.Get(domain.SettingHTTPPort)
	assert.False(t, hasPort)
}

func TestBuildDebugEnablesHTTP(t *testing.T) {
	s := Build(domain.NodeConfig{
		ClusterName:      "analysis",
		HomeDirectory:    "/data/es",
		TransportPort:    9001,
		HTTPDebugEnabled: true,
	})

	assert.True(t, s.GetBool(domain.SettingHTTPEnabled, false))
	assert.Equal(t, 9200, s.GetInt(domain.SettingHTTPPort, 0))
	assert.Equal(t, "analysis", s.GetDefault(domain.SettingClusterName, ""))
}

func TestBuildFixedPolicyIsDeterministic(t *testing.T) {
	cfg := domain.NodeConfig{ClusterName: "c", HomeDirectory: "/h", TransportPort: 1}

	first := Build(cfg)
	for i := 0; i < 5; i++ {
		next := Build(cfg)
		for _, key := range first.Keys() {
			if key == domain.SettingNodeName {
				continue
			}
			want, _ := first.Get(key)
			got, ok := next.Get(key)
			require.True(t, ok, key)
			assert.Equal(t, want, got, key)
		}
		assert.Equal(t, 1, next.GetInt(domain.SettingNumberOfShards, -1))
		assert.Equal(t, 0, next.GetInt(domain.SettingNumberOfReplicas, -1))
		assert.Equal(t, 200, next.GetInt(domain.SettingMaxMergeAtOnce, -1))
		assert.Equal(t, 200, next.GetInt(domain.SettingSegmentsPerTier, -1))
	}
}

func TestNodeNameIsPrefixedAndDistinguishing(t *testing.T) {
	cfg := domain.NodeConfig{ClusterName: "c", HomeDirectory: "/h", TransportPort: 1}

	b1 := NewBuilder()
	b1.Now = fixedClock(1000)
	b2 := NewBuilder()
	b2.Now = fixedClock(2000)

	n1 := b1.Build(cfg).GetDefault(domain.SettingNodeName, "")
	n2 := b2.Build(cfg).GetDefault(domain.SettingNodeName, "")

	assert.True(t, strings.HasPrefix(n1, NodeNamePrefix))
	assert.NotEqual(t, n1, n2)
}

func TestBuiltSettingsAreNotAffectedByLaterPuts(t *testing.T) {
	b := NewBuilder()
	s := b.Build(domain.NodeConfig{ClusterName: "c", HomeDirectory: "/h", TransportPort: 1})

	b.Put(domain.SettingClusterName, "changed")
	assert.Equal(t, "c", s.GetDefault(domain.SettingClusterName, ""))
}
