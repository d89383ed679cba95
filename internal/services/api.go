package services

import (
	"context"
	"encoding/json"
	"net/http"
)

// APIService makes raw requests against one of the backends, for debugging.
type APIService struct {
	client *Client
}

// NewAPIService creates a raw API service over client.
func NewAPIService(client *Client) *APIService {
	return &APIService{client: client}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.raw(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON body.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.raw(ctx, http.MethodPost, path, data)
}

// Put performs a PUT request with the given JSON body.
func (a *APIService) Put(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.raw(ctx, http.MethodPut, path, data)
}

// Delete performs a DELETE request.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.raw(ctx, http.MethodDelete, path, nil)
}

// raw never treats a status code as an error; callers inspect StatusCode.
func (a *APIService) raw(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body any
	if data != nil {
		body = json.RawMessage(data)
	}

	resp, payload, err := a.client.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       payload,
	}

	var jsonData any
	if err := json.Unmarshal(payload, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}
	return apiResp, nil
}
