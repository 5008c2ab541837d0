package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"user-search/internal/domain"
)

// ErrRequestFailed - сервер ответил не 200
var ErrRequestFailed = errors.New("search request failed")

// Searcher - отменяемый вызов поиска; отмена ctx прерывает вызов
type Searcher interface {
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.UserRecord, error)
}

// HTTPTransport - вызов POST /search сервера поиска
type HTTPTransport struct {
	searchURL  string
	httpClient *http.Client
}

// NewHTTPTransport создает транспорт для сервера baseURL
func NewHTTPTransport(baseURL string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPTransport{
		searchURL:  baseURL + "/search",
		httpClient: httpClient,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Search отправляет запрос и разбирает ответ
func (t *HTTPTransport) Search(ctx context.Context, query domain.SearchQuery) ([]domain.UserRecord, error) {
	body, err := json.Marshal(domain.SearchRequest{Email: query.Email, Number: query.Number})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send search request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var users []domain.UserRecord
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return users, nil
}
