// Package chromedevtools provides a Go SDK for debugging JavaScript VMs over
// the WebKit Inspector protocol.
//
// The SDK attaches to a VM that already exposes an inspector websocket, to the
// first target listed by an inspector HTTP endpoint, or to a script it launches
// under node with --inspect-brk. Commands are correlated with their responses
// asynchronously; the Client interface wraps that machinery in blocking calls.
//
// # Basic Usage
//
//	ctx := context.Background()
//	err := chromedevtools.WithClient(ctx, func(c chromedevtools.Client) error {
//	    v, err := c.Evaluate(ctx, "typeof require")
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(v.Object.Description)
//	    return nil
//	},
//	    chromedevtools.WithHTTPEndpoint("http://127.0.0.1:9229"),
//	)
//
// # Breakpoints and Suspension
//
// Suspensions are delivered to a DebugEventListener. Each suspension is a
// DebugContext that stays valid until the VM resumes:
//
//	type listener struct {
//	    chromedevtools.NopListener
//	    paused chan *chromedevtools.DebugContext
//	}
//
//	func (l *listener) Suspended(dc *chromedevtools.DebugContext) { l.paused <- dc }
//
//	client := chromedevtools.NewClient()
//	err := client.Start(ctx,
//	    chromedevtools.WithScript("app.js"),
//	    chromedevtools.WithListener(l),
//	)
//
//	_, err = client.SetBreakpoint(ctx, chromedevtools.BreakpointSpec{
//	    URL: "file:///srv/app.js", Line: 41, Enabled: true,
//	})
//	_ = client.Resume(ctx, chromedevtools.StepContinue)
//	dc := <-l.paused
//	v, err := client.EvaluateInFrame(ctx, 0, "request.url")
//
// Listener methods run on the connection's dispatch goroutine. They may issue
// asynchronous calls through Session but must not block on Client methods.
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	client.Start(ctx, chromedevtools.WithLogger(logger), chromedevtools.WithURL(url))
//
// # Error Handling
//
// The SDK provides typed errors for different failure scenarios:
//
//	if err := client.Start(ctx, chromedevtools.WithScript("app.js")); err != nil {
//	    if nfErr, ok := errors.AsType[*chromedevtools.NodeNotFoundError](err); ok {
//	        log.Fatalf("node not installed, searched: %v", nfErr.SearchedPaths)
//	    }
//	    if procErr, ok := errors.AsType[*chromedevtools.ProcessError](err); ok {
//	        log.Fatalf("node exited with code %d: %s", procErr.ExitCode, procErr.Stderr)
//	    }
//	    log.Fatal(err)
//	}
//
// Every failure caused by a lost connection matches ErrDisconnected.
package chromedevtools
