package custody

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const jsonrpcVersion = "2.0"

// A rpcClient speaks JSON RPC (over HTTP(s)) to the token contract host.
type rpcClient struct {
	url        string
	httpClient *retryablehttp.Client
	timeout    int
	debug      bool
}

type rpcRequest struct {
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Id      int64       `json:"id"`
	JsonRpc string      `json:"jsonrpc"`
}

// RPCErrorCode represents an error code to be used as a part of an RPCError
// which is in turn used in a JSON-RPC Response object.
type RPCErrorCode int

// RPCError represents an error returned inside a JSON-RPC response.
type RPCError struct {
	Code    RPCErrorCode `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
}

var _, _ error = RPCError{}, (*RPCError)(nil)

func (e RPCError) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

type rpcResponse struct {
	Id     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func NewClient(url string, timeout int, debug bool) (TokenContract, error) {
	if len(url) == 0 {
		return nil, errors.New("bad call missing argument host")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 3

	return &rpcClient{url, retryClient, timeout, debug}, nil
}

func newRequest(method string, params ...interface{}) *rpcRequest {
	return &rpcRequest{method, params, time.Now().UnixNano(), jsonrpcVersion}
}

func (c *rpcClient) IsContract(addr string) (bool, error) {
	result, err := c.call(newRequest("GetContractCode", addr))
	if err != nil {
		return false, err
	}

	var code string
	if err := json.Unmarshal(result, &code); err != nil {
		return false, err
	}

	return code != "", nil
}

func (c *rpcClient) OwnerOf(contract string, tokenId uint64) (string, error) {
	result, err := c.call(newRequest("GetTokenOwner", contract, fmt.Sprintf("%d", tokenId)))
	if err != nil {
		return "", err
	}

	var owner string
	if err := json.Unmarshal(result, &owner); err != nil {
		return "", err
	}

	return owner, nil
}

func (c *rpcClient) TransferFrom(contract, from, to string, tokenId uint64) error {
	_, err := c.call(newRequest("TransferFrom", contract, from, to, fmt.Sprintf("%d", tokenId)))

	return err
}

func (c *rpcClient) call(request *rpcRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	if c.debug {
		zap.S().Debugf("TokenRpc: %s", string(payload))
	}

	req, err := retryablehttp.NewRequest("POST", c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")

	c.httpClient.HTTPClient.Timeout = time.Duration(c.timeout) * time.Second

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		zap.S().Debugf("TokenRpc: %s", string(body))
	}

	var response rpcResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}

	if response.Error != nil {
		return nil, *response.Error
	}

	return response.Result, nil
}
