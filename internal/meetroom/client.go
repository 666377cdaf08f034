// Package meetroom is the client for the external meeting-room HTTP API.
// Room creation is a single attempt with no retry; a reported API-level
// error is surfaced as a structured *APIError.
package meetroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Room is a created meeting room.
type Room struct {
	ID     string    `json:"meetingId"`
	URL    string    `json:"roomUrl"`
	RoomID string    `json:"roomName"`
	Start  time.Time `json:"startDate"`
	End    time.Time `json:"endDate"`
}

// APIError is the structured error body the room API returns on failure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("meeting room API: %s: %s", e.Code, e.Message)
}

// Client calls the meeting-room API with bearer-token auth.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger, baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type createRoomRequest struct {
	RoomNamePrefix string    `json:"roomNamePrefix"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Fields         []string  `json:"fields"`
}

// CreateRoom provisions a room for the given window. The name is used as
// a prefix for the provider-assigned room identifier.
func (c *Client) CreateRoom(ctx context.Context, name string, start, end time.Time) (*Room, error) {
	body := createRoomRequest{
		RoomNamePrefix: name,
		StartDate:      start.UTC(),
		EndDate:        end.UTC(),
		Fields:         []string{"hostRoomUrl"},
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/meetings"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr = &APIError{
				Code:    fmt.Sprintf("http_%d", resp.StatusCode),
				Message: string(respBody),
			}
		}
		c.logger.Warn("room creation rejected",
			zap.Int("status", resp.StatusCode), zap.String("code", apiErr.Code))
		return nil, apiErr
	}

	var room Room
	if err := json.Unmarshal(respBody, &room); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Info("created meeting room",
		zap.String("meetingId", room.ID), zap.Time("start", room.Start))
	return &room, nil
}
