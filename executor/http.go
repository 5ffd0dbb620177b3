package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MasterOfBinary/throttledbatch/batch"
)

// maxErrorBody caps how much of a failed response body is kept in a
// StatusError.
const maxErrorBody = 512

// HTTP submits each chunk as one JSON POST to a batch endpoint.
//
// The request body is
//
//	{"requests": [{"id": "1", "call": <call>}, ...]}
//
// and the endpoint must answer 2xx with
//
//	{"results": {"1": <result>, ...}}
//
// Calls must be JSON-encodable. Any other status rejects the chunk with a
// *StatusError.
type HTTP struct {
	// URL is the batch endpoint. Required.
	URL string

	// Client is used to send requests. If nil, http.DefaultClient is used.
	Client *http.Client

	// Header is added to every request, for example for authorization.
	Header http.Header
}

type httpCall struct {
	ID   string      `json:"id"`
	Call interface{} `json:"call"`
}

type httpBatchRequest struct {
	Requests []httpCall `json:"requests"`
}

type httpBatchResponse struct {
	Results map[string]interface{} `json:"results"`
}

// StatusError is returned when the batch endpoint answers with a non-2xx
// status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("batch endpoint returned %d: %s", e.StatusCode, e.Body)
}

// ExecuteBatch implements the batch.Executor interface.
func (e *HTTP) ExecuteBatch(ctx context.Context, reqs []batch.Request) (map[string]interface{}, error) {
	if e.URL == "" {
		return nil, errors.New("executor: HTTP.URL is empty")
	}

	body := httpBatchRequest{Requests: make([]httpCall, len(reqs))}
	for i, r := range reqs {
		body.Requests[i] = httpCall{ID: r.ID, Call: r.Call}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode batch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	for k, vs := range e.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}

	var out httpBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}
	if out.Results == nil {
		out.Results = make(map[string]interface{})
	}
	return out.Results, nil
}
