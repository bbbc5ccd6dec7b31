package domain

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Setting keys understood by the embedded node.
const (
	SettingForeground         = "es.foreground"
	SettingMulticastEnabled   = "discovery.zen.ping.multicast.enabled"
	SettingMaxMergeAtOnce     = "index.merge.policy.max_merge_at_once"
	SettingSegmentsPerTier    = "index.merge.policy.segments_per_tier"
	SettingNumberOfShards     = "index.number_of_shards"
	SettingNumberOfReplicas   = "index.number_of_replicas"
	SettingStoreType          = "index.store.type"
	SettingThrottleType       = "indices.store.throttle.type"
	SettingThrottleMaxBytes   = "indices.store.throttle.max_bytes_per_sec"
	SettingScriptDefaultLang  = "script.default_lang"
	SettingScriptNativePrefix = "script.native."
	SettingClusterName        = "cluster.name"
	SettingNodeName           = "node.name"
	SettingNodeData           = "node.data"
	SettingNodeLocal          = "node.local"
	SettingTransportPort      = "transport.tcp.port"
	SettingPathHome           = "path.home"
	SettingHTTPEnabled        = "http.enabled"
	SettingHTTPPort           = "http.port"
)

// NativeScriptTypeKey returns the settings key binding a native script name to its factory type.
func NativeScriptTypeKey(name string) string {
	return SettingScriptNativePrefix + name + ".type"
}

// NodeSettings is an immutable view over the node's startup settings.
type NodeSettings struct {
	values map[string]string
}

func NewNodeSettings(values map[string]string) NodeSettings {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return NodeSettings{values: copied}
}

func (s NodeSettings) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s NodeSettings) GetDefault(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

func (s NodeSettings) GetInt(key string, def int) int {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func (s NodeSettings) GetBool(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1":
		return true
	case "false", "no", "off", "0":
		return false
	}
	return def
}

// GetBytes parses sizes such as "200mb" or "1gb".
func (s NodeSettings) GetBytes(key string, def uint64) uint64 {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	n, err := humanize.ParseBytes(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// WithPrefix returns the sub-keys (prefix stripped) of every setting under prefix.
func (s NodeSettings) WithPrefix(prefix string) map[string]string {
	out := make(map[string]string)
	for k, v := range s.values {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return out
}

func (s NodeSettings) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s NodeSettings) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s NodeSettings) Len() int {
	return len(s.values)
}
