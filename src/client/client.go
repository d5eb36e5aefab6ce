// Package client implements an HTTP client for the API of naivechain nodes.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/mosaicnetworks/naivechain/src/chain"
	"github.com/mosaicnetworks/naivechain/src/service"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the default timeout of HTTP requests.
const DefaultTimeout = 10 * time.Second

// Client talks to the HTTP API of naivechain nodes.
type Client struct {
	http   *http.Client
	logger *logrus.Entry
}

// NewClient creates a Client with the given request timeout.
func NewClient(timeout time.Duration, logger *logrus.Entry) *Client {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// TupleData returns the payload mined for a given tuple.
func TupleData(data string, tuple int) string {
	return fmt.Sprintf("data:%s tuple:%d", data, tuple)
}

// MineBlock asks node to mine a record carrying data.
func (c *Client) MineBlock(node string, data string) (service.MineResponse, error) {
	var res service.MineResponse

	body, err := json.Marshal(service.MineRequest{Data: data})
	if err != nil {
		return res, err
	}

	err = c.do(http.MethodPost, node, "/mineBlock", body, &res)

	return res, err
}

// AddPeer asks node to connect to peer.
func (c *Client) AddPeer(node string, peer string) (service.MsgResponse, error) {
	var res service.MsgResponse

	body, err := json.Marshal(service.AddPeerRequest{Peer: peer})
	if err != nil {
		return res, err
	}

	err = c.do(http.MethodPost, node, "/addPeer", body, &res)

	return res, err
}

// Blocks returns the chain of node.
func (c *Client) Blocks(node string) ([]chain.Record, error) {
	var res []chain.Record

	err := c.do(http.MethodGet, node, "/blocks", nil, &res)

	return res, err
}

// Peers returns the peers of node.
func (c *Client) Peers(node string) ([]string, error) {
	var res []string

	err := c.do(http.MethodGet, node, "/peers", nil, &res)

	return res, err
}

// Result is the outcome of one request of a batch.
type Result struct {
	Node     string
	Tuple    int
	Data     string
	Response service.MineResponse
	Err      error
}

// AddBlock mines tuples records on every node. Record t carries
// TupleData(data, t). Requests are sent sequentially, and every outcome is
// passed to report.
func (c *Client) AddBlock(nodes []string, data string, tuples int, report func(Result)) {
	if tuples < 1 {
		tuples = 1
	}

	for t := 0; t < tuples; t++ {
		for _, node := range nodes {
			payload := TupleData(data, t)

			res, err := c.MineBlock(node, payload)

			report(Result{
				Node:     node,
				Tuple:    t,
				Data:     payload,
				Response: res,
				Err:      err,
			})
		}
	}
}

func (c *Client) do(method string, node string, path string, body []byte, out interface{}) error {
	url := strings.TrimSuffix(node, "/") + path

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    url,
	}).Debug("Request")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := ioutil.ReadAll(resp.Body)
		return fmt.Errorf("%s: %d %s", url, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
