package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider supplies the current employee roster.
type Provider interface {
	Employees(ctx context.Context) ([]Employee, error)
}

// DefaultTimeout bounds a roster fetch.
const DefaultTimeout = 5 * time.Second

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("roster %s %s: %d %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

// Employees fetches GET {base}/employees. The body may be a bare array or an
// object with a data array.
func (c *HTTPClient) Employees(ctx context.Context) ([]Employee, error) {
	data, err := c.doReq(ctx, http.MethodGet, "/employees")
	if err != nil {
		return nil, err
	}
	return decodeEmployees(data)
}

func decodeEmployees(data []byte) ([]Employee, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Employee
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode roster: %w", err)
		}
		return list, nil
	}
	var envelope struct {
		Data []Employee `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return envelope.Data, nil
}

// FileProvider serves a static roster from a YAML file, re-read per call.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

type rosterFile struct {
	Employees []Employee `yaml:"employees"`
}

func (p *FileProvider) Employees(ctx context.Context) ([]Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster file: %w", err)
	}
	return f.Employees, nil
}
