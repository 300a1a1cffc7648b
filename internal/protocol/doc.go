// Package protocol implements request/response correlation for the WebKit
// Inspector remote debugging protocol.
//
// The Processor owns a single Transport connection and a correlation Table.
// Callers issue typed commands with Send; each command is assigned a unique,
// monotonically increasing id, registered in the table, and written to the
// transport. A single dispatch goroutine reads inbound messages, completes the
// matching table entry, and forwards id-less notifications to Events().
//
// The Processor guarantees that every registered command completes exactly
// once: with the decoded result, with the server's error, with a decode
// failure, or with a disconnect error when the transport closes.
//
// Example usage:
//
//	processor := protocol.NewProcessor(log, transport)
//	processor.Start(ctx)
//
//	// Asynchronous send with a blocking wait
//	gate := relay.NewGate()
//	ok := protocol.Send(ctx, processor, "Runtime.evaluate", params,
//	    func(res wip.EvaluateResult, err error) { ... }, gate)
//	gate.AcquireDefault(ok)
//
//	// Or the blocking convenience wrapper
//	res, err := protocol.Call[wip.EvaluateResult](ctx, processor, "Runtime.evaluate", params)
package protocol
