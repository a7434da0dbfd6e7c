// Package api exposes each agent's operation as JSON-RPC 2.0 over HTTP
// and serves the static agent card on a second listener.
package api

import "encoding/json"

// JSON-RPC 2.0 error codes used by the dispatch layer.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// NewError builds an RPCError with the given code and message.
func NewError(code int, message string) *RPCError {
	return &RPCError{Code: code, Message: message}
}

func resultResponse(id, result any) Response {
	return Response{JSONRPC: "2.0", Result: result, ID: id}
}

func errorResponse(id any, rpcErr *RPCError) Response {
	return Response{JSONRPC: "2.0", Error: rpcErr, ID: id}
}
