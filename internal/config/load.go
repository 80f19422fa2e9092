package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Load builds a Config: defaults, then the file at path (or the file named
// by CODEDROP_CONFIG when path is empty), then credentials from the
// environment. getenv defaults to os.Getenv. The result is not validated.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Default()

	if path == "" {
		path = getenv(EnvConfig)
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.GitHubToken = strings.TrimSpace(getenv(EnvGitHubToken))
	cfg.HFAPIKey = strings.TrimSpace(getenv(EnvHFAPIKey))
	return cfg, nil
}

// loadFile validates the file against #Config and overlays it onto cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config: compiling schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value, err := parseFile(ctx, path, data)
	if err != nil {
		return &ValidationError{Field: "file", Message: fmt.Sprintf("%s: %v", path, err)}
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Field: "file", Message: fmt.Sprintf("%s: %s", path, strings.TrimSpace(cueerrors.Details(err, nil)))}
	}

	encoded, err := unified.MarshalJSON()
	if err != nil {
		return &ValidationError{Field: "file", Message: fmt.Sprintf("%s: %v", path, err)}
	}
	if err := json.Unmarshal(encoded, cfg); err != nil {
		return fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return nil
}

// parseFile turns a configuration file into a CUE value according to its
// extension. JSON is a subset of CUE, so JSONC is compiled directly once
// comments and trailing commas are stripped.
func parseFile(ctx *cue.Context, path string, data []byte) (cue.Value, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return cue.Value{}, err
		}
		if doc == nil {
			doc = map[string]any{}
		}
		v := ctx.Encode(doc)
		return v, v.Err()

	case ".json", ".jsonc":
		stripped := jsonc.ToJSON(data)
		if strings.TrimSpace(string(stripped)) == "" {
			stripped = []byte("{}")
		}
		if !json.Valid(stripped) {
			return cue.Value{}, fmt.Errorf("invalid JSON")
		}
		v := ctx.CompileBytes(stripped, cue.Filename(path))
		return v, v.Err()

	case ".cue":
		v := ctx.CompileBytes(data, cue.Filename(path))
		return v, v.Err()

	default:
		return cue.Value{}, fmt.Errorf("unsupported config format %q (want .yaml, .yml, .json, .jsonc or .cue)", filepath.Ext(path))
	}
}
