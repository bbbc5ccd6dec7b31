package props

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/xjson"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a property file. The format follows the extension: YAML for
// .yaml/.yml, JSON for .json, and key=value properties otherwise. Nested YAML
// and JSON objects are flattened into dotted keys.
func LoadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewConfigurationError("failed to read property file", err,
			domain.WithComponent("props"),
			domain.WithContextDetail("path", path))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return ParseProperties(data)
	}
}

func ParseYAML(data []byte) (Map, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, domain.NewConfigurationError("failed to parse yaml properties", err, domain.WithComponent("props"))
	}
	out := make(Map)
	flatten("", raw, out)
	return out, nil
}

func ParseJSON(data []byte) (Map, error) {
	var raw map[string]interface{}
	if err := xjson.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, domain.NewConfigurationError("failed to parse json properties", err, domain.WithComponent("props"))
	}
	out := make(Map)
	flatten("", raw, out)
	return out, nil
}

// ParseProperties reads the classic key=value (or key: value) format. Lines
// starting with # or ! are comments.
func ParseProperties(data []byte) (Map, error) {
	out := make(Map)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		idx := strings.IndexAny(line, "=:")
		if idx <= 0 {
			return nil, domain.NewConfigurationError(
				fmt.Sprintf("malformed property on line %d", lineNo), domain.ErrInvalidInput,
				domain.WithComponent("props"))
		}
		out[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewConfigurationError("failed to scan properties", err, domain.WithComponent("props"))
	}
	return out, nil
}

func flatten(prefix string, value interface{}, out Map) {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(join(prefix, k), v[k], out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
