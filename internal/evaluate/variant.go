package evaluate

import (
	"encoding/json"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/wip"
)

// Variant builds the evaluate command for one kind of context and extracts the
// resulting value from its response.
type Variant interface {
	// BuildRequest returns the command name and parameters for expr. group is
	// the object group remote handles are allocated in; empty means default.
	BuildRequest(expr, group string) (method string, params any)

	// ExtractValue decodes the response payload.
	ExtractValue(raw json.RawMessage) (*wip.EvaluateResult, error)
}

// Validator is implemented by variants whose context can become unusable,
// such as a call frame after the VM resumed.
type Validator interface {
	Validate() error
}

// GlobalVariant evaluates in the global scope.
type GlobalVariant struct {
	ContextID             int
	IncludeCommandLineAPI bool
	ReturnByValue         bool
}

// BuildRequest implements Variant.
func (v GlobalVariant) BuildRequest(expr, group string) (string, any) {
	return wip.MethodRuntimeEvaluate, &wip.EvaluateParams{
		Expression:            expr,
		ObjectGroup:           group,
		IncludeCommandLineAPI: v.IncludeCommandLineAPI,
		ContextID:             v.ContextID,
		ReturnByValue:         v.ReturnByValue,
	}
}

// ExtractValue implements Variant.
func (GlobalVariant) ExtractValue(raw json.RawMessage) (*wip.EvaluateResult, error) {
	return decodeResult(wip.MethodRuntimeEvaluate, raw)
}

// CallFrameVariant evaluates in the scope of a suspended call frame.
type CallFrameVariant struct {
	CallFrameID   string
	ReturnByValue bool
}

// BuildRequest implements Variant.
func (v CallFrameVariant) BuildRequest(expr, group string) (string, any) {
	return wip.MethodDebuggerEvaluateOnCallFrame, &wip.EvaluateOnCallFrameParams{
		CallFrameID:   v.CallFrameID,
		Expression:    expr,
		ObjectGroup:   group,
		ReturnByValue: v.ReturnByValue,
	}
}

// ExtractValue implements Variant.
func (CallFrameVariant) ExtractValue(raw json.RawMessage) (*wip.EvaluateResult, error) {
	return decodeResult(wip.MethodDebuggerEvaluateOnCallFrame, raw)
}

func decodeResult(method string, raw json.RawMessage) (*wip.EvaluateResult, error) {
	var res wip.EvaluateResult

	if len(raw) == 0 {
		return nil, &errors.DecodeError{Method: method, Err: errMissingResult}
	}

	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &errors.DecodeError{Method: method, RawData: string(raw), Err: err}
	}

	if res.Result.Type == "" {
		return nil, &errors.DecodeError{Method: method, RawData: string(raw), Err: errMissingResult}
	}

	return &res, nil
}
