package docapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("document service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("document service returned status %d: %s", e.StatusCode, body)
}

// Client talks to the remote document service. Every method takes the bearer
// token to send; an empty token sends no Authorization header.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListDocuments(ctx context.Context, token string) ([]Document, error) {
	var docs []Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents", token, nil, &docs); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (c *Client) FetchChunks(ctx context.Context, token, documentID string) (ChunkSet, error) {
	var set ChunkSet
	path := "/documents/" + url.PathEscape(documentID) + "/chunks"
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &set); err != nil {
		return ChunkSet{}, fmt.Errorf("failed to fetch chunks: %w", err)
	}
	return set, nil
}

// SimilarTables returns the raw JSON body of POST /similar_tables.
func (c *Client) SimilarTables(ctx context.Context, token, tableID string, selectedDocs []string) (json.RawMessage, error) {
	if selectedDocs == nil {
		selectedDocs = []string{}
	}
	var raw json.RawMessage
	body := similarTablesRequest{TableID: tableID, SelectedDocs: selectedDocs}
	if err := c.doJSON(ctx, http.MethodPost, "/similar_tables", token, body, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch similar tables: %w", err)
	}
	return raw, nil
}

func (c *Client) Summarize(ctx context.Context, token, documentID string) (Summary, error) {
	var s Summary
	if err := c.doJSON(ctx, http.MethodPost, "/summary", token, summaryRequest{DocumentID: documentID}, &s); err != nil {
		return Summary{}, fmt.Errorf("failed to summarize document: %w", err)
	}
	if s.DocumentID == "" {
		s.DocumentID = documentID
	}
	return s, nil
}

func (c *Client) CreateProject(ctx context.Context, token string, req ProjectRequest) (Project, error) {
	var p Project
	if err := c.doJSON(ctx, http.MethodPost, "/projects", token, req, &p); err != nil {
		return Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// OpenPDF returns the PDF bytes of a document and their content type.
func (c *Client) OpenPDF(ctx context.Context, token, documentID string) ([]byte, string, error) {
	path := "/documents/" + url.PathEscape(documentID) + "/pdf"
	resp, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read pdf: %w", err)
	}
	if err := checkStatus(resp, data); err != nil {
		return nil, "", fmt.Errorf("failed to open pdf: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return data, contentType, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out interface{}) error {
	resp, err := c.do(ctx, method, path, token, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := checkStatus(resp, data); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in interface{}) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
