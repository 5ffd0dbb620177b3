package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlan = `
max_per_batch: 2
stagger_delay: 0s
headers:
  X-Api-Key: secret
calls:
  - id: user-a
    call: {method: users.get, id: a}
  - call: {method: users.get, id: b}
  - call: ping
`

type batchRequest struct {
	Requests []struct {
		ID   string      `json:"id"`
		Call interface{} `json:"call"`
	} `json:"requests"`
}

// echoServer answers every call with the call itself. Requests whose first
// id is in reject get a 500.
func echoServer(t *testing.T, reject map[string]bool) (*httptest.Server, func() []http.Header) {
	t.Helper()

	var mu sync.Mutex
	var headers []http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = append(headers, r.Header.Clone())
		mu.Unlock()

		var req batchRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if len(req.Requests) > 0 && reject[req.Requests[0].ID] {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}

		results := make(map[string]interface{}, len(req.Requests))
		for _, c := range req.Requests {
			results[c.ID] = c.Call
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
	}))
	t.Cleanup(srv.Close)

	return srv, func() []http.Header {
		mu.Lock()
		defer mu.Unlock()
		return headers
	}
}

func writePlan(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, format := range []string{"text", "json"} {
		t.Run(format, func(t *testing.T) {
			srv, headers := echoServer(t, nil)
			path := writePlan(t, testPlan)

			out, _, err := executeRoot(t, "run", "--plan", path, "--url", srv.URL, "--format", format)
			require.NoError(t, err)

			g.Assert(t, "run_"+format, []byte(out))

			sent := headers()
			require.Len(t, sent, 2)
			for _, h := range sent {
				assert.Equal(t, "secret", h.Get("X-Api-Key"))
			}
		})
	}
}

func TestRunFlagsOverridePlan(t *testing.T) {
	srv, headers := echoServer(t, nil)
	path := writePlan(t, testPlan)

	out, _, err := executeRoot(t, "run", "--plan", path, "--url", srv.URL, "--max-per-batch", "1", "--stagger", "1ms")
	require.NoError(t, err)

	assert.Len(t, headers(), 3)
	assert.Contains(t, out, "3 of 3 results from 3 chunks")
}

func TestRunChunkFailure(t *testing.T) {
	srv, _ := echoServer(t, map[string]bool{"3": true})
	path := writePlan(t, testPlan)

	out, logs, err := executeRoot(t, "run", "--plan", path, "--url", srv.URL)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "returned 500")

	// Results from the chunk that succeeded are still reported.
	assert.Contains(t, out, "user-a = ")
	assert.Contains(t, out, "2 of 3 results from 2 chunks (1 failed)")
	assert.Contains(t, logs, "[ERROR]")
}

func TestRunChunkFailureJSON(t *testing.T) {
	srv, _ := echoServer(t, map[string]bool{"user-a": true})
	path := writePlan(t, testPlan)

	out, _, err := executeRoot(t, "--format", "json", "run", "--plan", path, "--url", srv.URL)
	require.Error(t, err)

	var resp struct {
		Status string    `json:"status"`
		Error  string    `json:"error"`
		Data   RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "chunk 0")
	assert.Equal(t, "ping", resp.Data.Results["3"])
	assert.EqualValues(t, 1, resp.Data.FailedChunks)
}

func TestRunVerboseLogsToStderr(t *testing.T) {
	srv, _ := echoServer(t, nil)
	path := writePlan(t, testPlan)

	out, logs, err := executeRoot(t, "run", "-v", "--plan", path, "--url", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, logs, "Loaded 3 call(s)")
	assert.Contains(t, logs, "[INFO] ThrottledBatch")
	assert.Contains(t, logs, "[DEBUG] Executor")
	assert.NotContains(t, out, "ThrottledBatch")
}

func TestRunCommandErrors(t *testing.T) {
	t.Run("plan flag required", func(t *testing.T) {
		_, _, err := executeRoot(t, "run")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"plan" not set`)
	})

	t.Run("missing plan file", func(t *testing.T) {
		_, _, err := executeRoot(t, "run", "--plan", filepath.Join(t.TempDir(), "nope.yaml"), "--url", "http://localhost")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("no url", func(t *testing.T) {
		_, _, err := executeRoot(t, "run", "--plan", writePlan(t, testPlan))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "no batch endpoint")
	})
}
