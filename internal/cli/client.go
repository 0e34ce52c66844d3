package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charliek/mplog/internal/api"
	"github.com/charliek/mplog/internal/constants"
)

// Client is an HTTP client for the mplog inspection API
type Client struct {
	baseURL    string
	httpClient *http.Client
	// streamClient has no timeout so a follow can run indefinitely
	streamClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.DefaultRequestTimeout,
		},
		streamClient: &http.Client{},
	}
}

// GetStatus gets aggregator status
func (c *Client) GetStatus() (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProcesses gets all observed processes
func (c *Client) GetProcesses() (*api.ProcessListResponse, error) {
	var resp api.ProcessListResponse
	if err := c.get("/api/v1/processes", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetThreads gets the observed threads of one process
func (c *Client) GetThreads(pid int32) (*api.ThreadListResponse, error) {
	var resp api.ThreadListResponse
	if err := c.get(fmt.Sprintf("/api/v1/processes/%d/threads", pid), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLogs gets the tail of one thread's log lane
func (c *Client) GetLogs(pid int32, tid uint64, lines int) (*api.LogsResponse, error) {
	path := fmt.Sprintf("/api/v1/processes/%d/threads/%d/logs", pid, tid)
	if lines > 0 {
		path += "?lines=" + strconv.Itoa(lines)
	}

	var resp api.LogsResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown shuts down the aggregator
func (c *Client) Shutdown() error {
	var resp api.SuccessResponse
	return c.post("/api/v1/shutdown", &resp)
}

// StreamParams contains filter parameters for log streaming
type StreamParams struct {
	PIDs    []int32
	Level   string
	Pattern string
	Regex   bool
}

// StreamLogs streams live records and calls the callback for each event
func (c *Client) StreamLogs(params StreamParams, callback func(api.StreamEventResponse)) error {
	query := url.Values{}
	if len(params.PIDs) > 0 {
		pids := make([]string, len(params.PIDs))
		for i, pid := range params.PIDs {
			pids[i] = strconv.FormatInt(int64(pid), 10)
		}
		query.Set("pid", strings.Join(pids, ","))
	}
	if params.Level != "" {
		query.Set("level", params.Level)
	}
	if params.Pattern != "" {
		query.Set("pattern", params.Pattern)
	}
	if params.Regex {
		query.Set("regex", "true")
	}

	path := "/api/v1/logs/stream"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimPrefix(line, "data: ")
			var ev api.StreamEventResponse
			if err := json.Unmarshal([]byte(data), &ev); err == nil {
				callback(ev)
			}
		}
	}
}

func (c *Client) get(path string, v interface{}) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) post(path string, v interface{}) error {
	req, err := http.NewRequest("POST", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// decodeError turns an error response body into a Go error
func decodeError(resp *http.Response) error {
	var errResp api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("%s: %s", errResp.Code, errResp.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
