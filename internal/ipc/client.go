package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start begins a new recording session.
func (c *Client) Start(title, source string) (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Minute.Start", StartRequest{Title: title, Source: source}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop ends the active recording.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Minute.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Minute.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Current returns the session occupying the recording slot, if any.
func (c *Client) Current() (*CurrentResponse, error) {
	var resp CurrentResponse
	if err := c.client.Call("Minute.Current", CurrentRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns sessions optionally filtered by statuses.
func (c *Client) List(statuses []string) (*ListResponse, error) {
	var resp ListResponse
	if err := c.client.Call("Minute.List", ListRequest{Statuses: statuses}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Describe returns details for a single session.
func (c *Client) Describe(id string) (*DescribeResponse, error) {
	var resp DescribeResponse
	if err := c.client.Call("Minute.Describe", DescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Retry resubmits a session's audio for transcription.
func (c *Client) Retry(id string) (*RetryResponse, error) {
	var resp RetryResponse
	if err := c.client.Call("Minute.Retry", RetryRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetTitle renames a session.
func (c *Client) SetTitle(id, title string) (*SetTitleResponse, error) {
	var resp SetTitleResponse
	if err := c.client.Call("Minute.SetTitle", SetTitleRequest{ID: id, Title: title}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a session and its files.
func (c *Client) Delete(id string) (*DeleteResponse, error) {
	var resp DeleteResponse
	if err := c.client.Call("Minute.Delete", DeleteRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Minute.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
