package popup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"

	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/scraper"
)

// Client talks to the page context's server.
type Client struct {
	base   string
	http   *http.Client
	dialer *websocket.Dialer
}

func NewClient(base string) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: 30 * time.Second},
		dialer: websocket.DefaultDialer,
	}
}

func (c *Client) Extract(ctx context.Context) (messaging.ExtractResult, error) {
	var res messaging.ExtractResult
	err := c.send(ctx, messaging.ActionExtractJobs, &res)
	return res, err
}

func (c *Client) Start(ctx context.Context) (messaging.Ack, error) {
	var res messaging.Ack
	err := c.send(ctx, messaging.ActionStartAutomation, &res)
	return res, err
}

func (c *Client) Stop(ctx context.Context) (messaging.Ack, error) {
	var res messaging.Ack
	err := c.send(ctx, messaging.ActionStopAutomation, &res)
	return res, err
}

func (c *Client) Status(ctx context.Context) (messaging.Status, error) {
	var res messaging.Status
	err := c.send(ctx, messaging.ActionGetStatus, &res)
	return res, err
}

func (c *Client) Page(ctx context.Context) (messaging.PageInfo, error) {
	var res messaging.PageInfo
	err := c.get(ctx, "/api/page", &res)
	return res, err
}

func (c *Client) Jobs(ctx context.Context) ([]scraper.JobRecord, error) {
	var res []scraper.JobRecord
	err := c.get(ctx, "/api/jobs", &res)
	return res, err
}

func (c *Client) Details(ctx context.Context) (map[string]scraper.JobDetailRecord, error) {
	res := map[string]scraper.JobDetailRecord{}
	err := c.get(ctx, "/api/details", &res)
	return res, err
}

// Watch calls fn for every pushed event until ctx is done or the connection
// drops.
func (c *Client) Watch(ctx context.Context, fn func(messaging.Event)) error {
	u, err := url.Parse(c.base + "/ws")
	if err != nil {
		return errors.Wrap(err, "parse server url")
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "connect to event stream")
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var ev messaging.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Wrap(err, "read event")
		}
		fn(ev)
	}
}

func (c *Client) send(ctx context.Context, action messaging.Action, out any) error {
	body, err := json.Marshal(messaging.Request{Action: action})
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/message", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return errors.Wrapf(c.do(req, out), "%s", action)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	return errors.Wrapf(c.do(req, out), "GET %s", path)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "extractor server unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return errors.Newf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return errors.Newf("server returned %d", resp.StatusCode)
	}
	return errors.Wrap(json.Unmarshal(data, out), "decode response")
}
