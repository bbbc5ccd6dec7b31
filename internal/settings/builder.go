// Package settings turns a resolved NodeConfig into the embedded node's
// startup settings, adding the operational policy that is not configurable.
package settings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/script/listupdate"
)

const (
	NodeNamePrefix = "sonarqube-"
	DebugHTTPPort  = 9200
)

// Builder accumulates settings before they are frozen into NodeSettings.
type Builder struct {
	values map[string]string

	// Now supplies the node name suffix. Defaults to time.Now.
	Now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{
		values: make(map[string]string),
		Now:    time.Now,
	}
}

func (b *Builder) Put(key string, value interface{}) *Builder {
	switch v := value.(type) {
	case string:
		b.values[key] = v
	case bool:
		b.values[key] = strconv.FormatBool(v)
	case int:
		b.values[key] = strconv.Itoa(v)
	default:
		b.values[key] = fmt.Sprint(v)
	}
	return b
}

// Build applies the fixed node policy on top of cfg.
func (b *Builder) Build(cfg domain.NodeConfig) domain.NodeSettings {
	now := b.Now
	if now == nil {
		now = time.Now
	}

	b.Put(domain.SettingForeground, "yes").
		Put(domain.SettingMulticastEnabled, "false").
		Put(domain.SettingMaxMergeAtOnce, "200").
		Put(domain.SettingSegmentsPerTier, "200").
		Put(domain.SettingNumberOfShards, "1").
		Put(domain.SettingNumberOfReplicas, "0").
		Put(domain.SettingStoreType, "mmapfs").
		Put(domain.SettingThrottleType, "merge").
		Put(domain.SettingThrottleMaxBytes, "200mb").
		Put(domain.SettingScriptDefaultLang, "native").
		Put(domain.NativeScriptTypeKey(listupdate.Name), listupdate.FactoryType).
		Put(domain.SettingClusterName, cfg.ClusterName).
		Put(domain.SettingNodeName, NodeNamePrefix+strconv.FormatInt(now().UnixMilli(), 10)).
		Put(domain.SettingNodeData, true).
		Put(domain.SettingNodeLocal, false).
		Put(domain.SettingTransportPort, cfg.TransportPort).
		Put(domain.SettingPathHome, cfg.HomeDirectory)

	// HTTP is for local diagnostics only.
	if cfg.HTTPDebugEnabled {
		b.Put(domain.SettingHTTPEnabled, true).
			Put(domain.SettingHTTPPort, DebugHTTPPort)
	} else {
		b.Put(domain.SettingHTTPEnabled, false)
		delete(b.values, domain.SettingHTTPPort)
	}

	return domain.NewNodeSettings(b.values)
}

// Build builds fresh settings for one start attempt.
func Build(cfg domain.NodeConfig) domain.NodeSettings {
	return NewBuilder().Build(cfg)
}
