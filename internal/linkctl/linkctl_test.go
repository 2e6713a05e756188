package linkctl

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/links/sign", func(w http.ResponseWriter, r *http.Request) {
		var req SignRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req.SessionID == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"message":"sessionId is required"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token":     "tok-" + req.SessionID,
			"expiresIn": req.ExpSec,
		})
	})
	mux.HandleFunc("/api/experiments/external/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"Session not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"sessionId":"S1","smilePercentage":70.2}}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildViewerURL(t *testing.T) {
	signed, err := BuildViewerURL("http://viewer.local/", "http://api.local", "S1", "abc.def.ghi")
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/simple-experiment/index.html", u.Path)
	assert.Equal(t, "abc.def.ghi", u.Query().Get("token"))
	assert.Equal(t, "http://api.local", u.Query().Get("api"))
	assert.Empty(t, u.Query().Get("sessionId"), "signed links must not expose the session id")

	plain, err := BuildViewerURL("", "http://api.local", "S 1", "")
	require.NoError(t, err)
	u, err = url.Parse(plain)
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", u.Host)
	assert.Equal(t, "S 1", u.Query().Get("sessionId"))
}

func TestSignCommand(t *testing.T) {
	api := newTestAPI(t)

	out, err := runCLI(t, "sign", "--session", "S1", "--exp", "60", "--api", api.URL, "--frontend", "http://viewer.local", "-o", "json")
	require.NoError(t, err)

	var result LinkResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "tok-S1", result.Token)
	assert.Equal(t, int64(60), result.ExpiresIn)
	assert.Contains(t, result.URL, "token=tok-S1")
}

func TestSignCommandUnsigned(t *testing.T) {
	out, err := runCLI(t, "sign", "--session", "S1", "--sign=false", "--frontend", "http://viewer.local", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "sessionId=S1")
	assert.NotContains(t, out, "token")
}

func TestSignCommandRequiresSession(t *testing.T) {
	_, err := runCLI(t, "sign", "--sign=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--session")
}

func TestGetCommand(t *testing.T) {
	api := newTestAPI(t)

	out, err := runCLI(t, "get", "S1", "--token", "good", "--api", api.URL, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"smilePercentage": 70.2`)

	_, err = runCLI(t, "get", "S1", "--api", api.URL)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Session not found", apiErr.Message)
}

func TestConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkctl.yaml")
	require.NoError(t, Save(&Config{
		APIBase:      "http://from-file:4000/",
		FrontendBase: "http://viewer-file",
		ExpSec:       120,
		Output:       "json",
	}, path))

	t.Setenv("LINKCTL_FRONTEND_BASE", "http://viewer-env")

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://from-file:4000", cfg.APIBase)
	assert.Equal(t, "http://viewer-env", cfg.FrontendBase)
	assert.Equal(t, 120, cfg.ExpSec)
	assert.Equal(t, "json", cfg.Output)
}

func TestRenderUnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, "xml", &LinkResult{})
	assert.Error(t, err)
}
