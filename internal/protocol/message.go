package protocol

import (
	"encoding/json"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/cczw2010/chromedevtools/internal/errors"
)

// Request is an outgoing command.
//
// Wire format:
//
//	{"id": 7, "method": "Runtime.evaluate", "params": {"expression": "1+1"}}
type Request struct {
	// ID correlates the response with this request. It is echoed unchanged.
	ID int64 `json:"id"`

	// Method is the fully qualified command name, e.g. "Debugger.resume".
	Method string `json:"method"`

	// Params carries the command parameters.
	Params any `json:"params,omitempty"`
}

// Response is the reply to a Request.
//
// Wire format for success:
//
//	{"id": 7, "result": {"result": {"type": "number", "value": 2}}}
//
// Wire format for error:
//
//	{"id": 7, "error": {"code": -32000, "message": "Cannot find context"}}
type Response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// IsError checks if the response is an error response.
func (r *Response) IsError() bool {
	return r.Error != nil
}

// ResponseError is the error object of a failed command.
type ResponseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// toProtocolError converts the wire error into the SDK error type.
func (e *ResponseError) toProtocolError() *errors.ProtocolError {
	pe := &errors.ProtocolError{
		Code:    e.Code,
		Message: e.Message,
	}

	if len(e.Data) > 0 {
		if s, err := strconv.Unquote(string(e.Data)); err == nil {
			pe.Data = s
		} else {
			pe.Data = string(e.Data)
		}
	}

	return pe
}

// Event is an id-less notification pushed by the remote VM.
//
// Wire format:
//
//	{"method": "Debugger.paused", "params": {"callFrames": [...], "reason": "other"}}
type Event struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Decode unmarshals the event parameters into v.
func (e *Event) Decode(v any) error {
	if len(e.Params) == 0 {
		return nil
	}

	return json.Unmarshal(e.Params, v)
}

type messageKind int

const (
	kindInvalid messageKind = iota
	kindResponse
	kindEvent
)

// classify peeks at the envelope without decoding the payload.
func classify(raw []byte) messageKind {
	if !gjson.ValidBytes(raw) {
		return kindInvalid
	}

	envelope := gjson.GetManyBytes(raw, "id", "method")

	switch {
	case envelope[0].Exists():
		return kindResponse
	case envelope[1].Exists():
		return kindEvent
	default:
		return kindInvalid
	}
}

// peekID extracts the correlation id of a response whose body failed to decode.
func peekID(raw []byte) (int64, bool) {
	id := gjson.GetBytes(raw, "id")
	if id.Type != gjson.Number {
		return 0, false
	}

	return id.Int(), true
}
