package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	keycase "github.com/SimonDaKappa/go-keycase"
)

// execute runs the root command with args and stdin, returning stdout and
// stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMapCmd(t *testing.T) {
	t.Run("Stdin", func(t *testing.T) {
		stdout, stderr, err := execute(t, `{"first_name": "Ann", "Bad_Key": 1}`,
			"map", "--to", "camel", "--from", "snake", "--indent", "0")
		require.NoError(t, err)

		assert.Equal(t, `{"firstName":"Ann","badKey":1}`+"\n", stdout)
		assert.Contains(t, stderr, `MALFORMATTED_KEY at $.Bad_Key: key "Bad_Key"`)
	})

	t.Run("Indented", func(t *testing.T) {
		stdout, _, err := execute(t, `{"user_id": 1}`, "map")
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"userId\": 1\n}\n", stdout)
	})

	t.Run("File", func(t *testing.T) {
		path := writeFile(t, "in.json", `[{"zip_code": "1000"}]`)
		stdout, _, err := execute(t, "", "map", path, "--to", "kebab", "--indent", "0")
		require.NoError(t, err)
		assert.Equal(t, `[{"zip-code":"1000"}]`+"\n", stdout)
	})

	t.Run("YAMLOutput", func(t *testing.T) {
		stdout, _, err := execute(t, `{"firstName": "Ann", "tagList": ["a"]}`, "map", "--to", "snake", "-o", "yaml")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(stdout, "first_name: Ann\n"), stdout)
		var back map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &back))
		assert.Equal(t, map[string]any{"first_name": "Ann", "tag_list": []any{"a"}}, back)
	})

	t.Run("Strict", func(t *testing.T) {
		_, _, err := execute(t, `{"firstName": 1}`, "map", "--from", "snake", "--strict")
		assert.Error(t, err)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, _, err := execute(t, `{}`, "map", "--to", "shouting")
		assert.ErrorIs(t, err, keycase.ErrUnknownCaseFormat)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		_, _, err := execute(t, `{"a": `, "map")
		assert.ErrorIs(t, err, keycase.ErrInvalidJSON)
	})

	t.Run("UnsupportedOutput", func(t *testing.T) {
		_, _, err := execute(t, `{}`, "map", "-o", "xml")
		assert.Error(t, err)
	})

	t.Run("MaxDepthVerbose", func(t *testing.T) {
		path := writeFile(t, "keycase.yaml", "max_depth: 1\nindent: 0\n")

		stdout, stderr, err := execute(t, `{"outer_key": {"inner_key": {"deep": 1}}}`, "map", "-c", path, "-v")
		require.NoError(t, err)
		assert.Equal(t, `{"outerKey":{"innerKey":null}}`+"\n", stdout)
		assert.Contains(t, stderr, "UNPARSEABLE_VALUE at $.outer_key.inner_key")
	})

	t.Run("ConfigFile", func(t *testing.T) {
		path := writeFile(t, "keycase.yaml", "to: snake\nindent: 0\n")

		stdout, _, err := execute(t, `{"firstName": "Ann"}`, "map", "--config", path)
		require.NoError(t, err)
		assert.Equal(t, `{"first_name":"Ann"}`+"\n", stdout)

		stdout, _, err = execute(t, `{"firstName": "Ann"}`, "map", "--config", path, "--to", "kebab")
		require.NoError(t, err)
		assert.Equal(t, `{"first-name":"Ann"}`+"\n", stdout)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("Overrides", func(t *testing.T) {
		path := writeFile(t, "keycase.yaml", `
to: pascal
from: camel
output: yaml
serve:
  listen: ":9090"
  reject_invalid_request_body: true
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "pascal", cfg.To)
		assert.Equal(t, "camel", cfg.From)
		assert.Equal(t, outputYAML, cfg.Output)
		assert.Equal(t, 2, cfg.Indent)
		assert.Equal(t, ":9090", cfg.Serve.Listen)
		assert.True(t, cfg.Serve.RejectInvalidRequestBody)
		assert.Equal(t, keycase.DefaultCaseFormatHeader, cfg.Serve.Header)

		opts, err := cfg.MapperOptions()
		require.NoError(t, err)
		assert.Equal(t, keycase.PascalCase, opts.ToCase)
		assert.Equal(t, keycase.CamelCase, opts.FromCase)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := LoadConfig(writeFile(t, "bad.yaml", "to: [camel"))
		assert.Error(t, err)
	})
}

func TestFormatsCmd(t *testing.T) {
	stdout, _, err := execute(t, "", "formats")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"FORMAT", "VALIDATES"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"CAMEL_CASE", "true"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"LOWER_CASE", "false"}, strings.Fields(lines[3]))
}

func TestDetectCmd(t *testing.T) {
	stdout, _, err := execute(t, "", "detect", "userName", "user_name", "x!")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"userName", "CAMEL_CASE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"user_name", "SNAKE_CASE"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"x!", "-"}, strings.Fields(lines[2]))
}

func TestServeHandler(t *testing.T) {
	handler, err := newServeHandler(DefaultConfig().Serve, zap.NewNop())
	require.NoError(t, err)

	t.Run("Echo", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"first_name": "Ann"}`))
		req.Header.Set(keycase.HeaderContentType, keycase.ContentTypeApplicationJSON)
		req.Header.Set(keycase.DefaultCaseFormatHeader, "snake")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"case_format": "SNAKE_CASE", "body": {"first_name": "Ann"}}`, rec.Body.String())
	})

	t.Run("Healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("InvalidInternal", func(t *testing.T) {
		cfg := DefaultConfig().Serve
		cfg.Internal = "shouting"
		_, err := newServeHandler(cfg, zap.NewNop())
		assert.ErrorIs(t, err, keycase.ErrUnknownCaseFormat)
	})
}
