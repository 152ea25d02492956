package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/flowcraft/engine/model"
)

var _ Executor = new(httpRequestExecutor)

type httpRequestConfig struct {
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
	Body     string `json:"body"`
}

var bodyBearingMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

type httpRequestExecutor struct {
	client *http.Client
}

func NewHTTPRequestExecutor() *httpRequestExecutor {
	return &httpRequestExecutor{client: http.DefaultClient}
}

func (e *httpRequestExecutor) Execute(ctx context.Context, p Params) (Context, error) {
	result, err := p.Step.Run(ctx, stepName(p, "http-request"), func() (any, error) {
		return e.doRequest(ctx, p.Data)
	})
	if err != nil {
		return nil, err
	}

	out := CopyContext(p.Context)
	out["httpResponse"] = result
	return out, nil
}

func (e *httpRequestExecutor) doRequest(ctx context.Context, data map[string]any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, model.ConfigError{Message: fmt.Sprintf("HTTP Request node: invalid configuration: %v", err)}
	}
	var cfg httpRequestConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, model.ConfigError{Message: fmt.Sprintf("HTTP Request node: invalid configuration: %v", err)}
	}

	if cfg.Endpoint == "" {
		return nil, model.ConfigError{Message: "HTTP Request node: No endpoint configured"}
	}
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, model.ConfigError{Message: fmt.Sprintf("HTTP Request node: unsupported method %q", cfg.Method)}
	}
	method = strings.ToUpper(method)

	var bodyReader io.Reader
	if bodyBearingMethods[method] {
		bodyReader = strings.NewReader(cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.Endpoint, bodyReader)
	if err != nil {
		return nil, model.TransientError{Message: "HTTP Request node: failed to build request", Cause: err}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, model.TransientError{Message: "HTTP Request node: request failed", Cause: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.TransientError{Message: "HTTP Request node: failed to read response body", Cause: err}
	}

	var parsed any
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
			return nil, model.TransientError{Message: "HTTP Request node: failed to parse JSON response", Cause: err}
		}
	} else {
		parsed = string(bodyBytes)
	}

	response := map[string]any{
		"status":     resp.StatusCode,
		"statusText": http.StatusText(resp.StatusCode),
		"data":       parsed,
	}
	if resp.StatusCode >= 400 {
		return nil, model.TransientError{Message: fmt.Sprintf("HTTP Request node: response status %d", resp.StatusCode)}
	}
	return response, nil
}
