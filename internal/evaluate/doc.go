// Package evaluate runs JavaScript expressions in a remote VM.
//
// A Context pairs the command processor with a Variant that decides where the
// expression runs: the global scope (Runtime.evaluate) or a suspended call
// frame (Debugger.evaluateOnCallFrame). Both follow the asynchronous callback
// convention of the relay package; EvaluateSync is the blocking form.
//
// Requests that carry an additional-context map are rejected locally with
// errors.ErrAdditionalContextUnsupported; nothing is written to the transport.
package evaluate
