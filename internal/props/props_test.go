package props

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLookup(t *testing.T) {
	m := Map{"esHome": "/data/es"}

	v, ok := m.Lookup("esHome")
	assert.True(t, ok)
	assert.Equal(t, "/data/es", v)

	_, ok = m.Lookup("esPort")
	assert.False(t, ok)
}

func TestEnvLookupUsesPrefixedUpperCaseNames(t *testing.T) {
	vars := map[string]string{"SEARCHNODE_ESPORT": "9001", "HOME": "/root", "SEARCHNODE_ESDEBUG": "true"}
	env := NewEnv("SEARCHNODE_")
	env.lookup = func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}

	v, ok := env.Lookup("esPort")
	require.True(t, ok)
	assert.Equal(t, "9001", v)

	_, ok = env.Lookup("esHome")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"esPort": "9001", "esDebug": "true"}, env.Properties())
}

func TestLayeredListingAgreesWithLookup(t *testing.T) {
	env := NewEnv("SEARCHNODE_")
	env.lookup = func(name string) (string, bool) {
		if name == "SEARCHNODE_ESHOME" {
			return "/from/env", true
		}
		return "", false
	}

	layered := NewLayered(Map{"esHome": "/from/file", "esPort": "9001"}, env)

	home, ok := layered.Lookup("esHome")
	require.True(t, ok)
	assert.Equal(t, "/from/env", home)

	listed := layered.Properties()
	assert.Equal(t, map[string]string{"esHome": "/from/env", "esPort": "9001"}, listed)
	for key, value := range listed {
		got, ok := layered.Lookup(key)
		require.True(t, ok, key)
		assert.Equal(t, value, got, key)
	}
}

func TestLayeredLaterLayersWin(t *testing.T) {
	base := Map{"esHome": "/opt/es", "esCluster": "base"}
	override := Map{"esCluster": "override"}

	layered := NewLayered(base, nil, override)

	v, ok := layered.Lookup("esCluster")
	require.True(t, ok)
	assert.Equal(t, "override", v)

	v, ok = layered.Lookup("esHome")
	require.True(t, ok)
	assert.Equal(t, "/opt/es", v)

	assert.Equal(t, map[string]string{"esHome": "/opt/es", "esCluster": "override"}, layered.Properties())
}

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		file    string
		content string
	}{
		{"properties", "node.properties", "# comment\nesHome=/data/es\nesPort: 9001\n! other comment\nesDebug = true\n"},
		{"yaml", "node.yaml", "esHome: /data/es\nesPort: 9001\nesDebug: true\n"},
		{"json", "node.json", `{"esHome": "/data/es", "esPort": 9001, "esDebug": true}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			m, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "/data/es", m["esHome"])
			assert.Equal(t, "9001", m["esPort"])
			assert.Equal(t, "true", m["esDebug"])
		})
	}
}

func TestParseYAMLFlattensNestedKeys(t *testing.T) {
	m, err := ParseYAML([]byte("sonar:\n  search:\n    port: 9001\n    host: localhost\n"))
	require.NoError(t, err)
	assert.Equal(t, Map{"sonar.search.port": "9001", "sonar.search.host": "localhost"}, m)
}

func TestParsePropertiesRejectsMalformedLines(t *testing.T) {
	_, err := ParseProperties([]byte("esHome=/data\njustakey\n"))
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.properties"))
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}
