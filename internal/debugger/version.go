package debugger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cczw2010/chromedevtools/internal/evaluate"
	"github.com/cczw2010/chromedevtools/internal/relay"
)

// versionProbe reports the embedder and its version string as JSON.
const versionProbe = `JSON.stringify(
  typeof process !== "undefined" && process.versions
    ? {embedder: "node", raw: process.version}
    : {embedder: "browser", raw: typeof navigator !== "undefined" ? navigator.userAgent : ""})`

// Version identifies the VM's embedder.
type Version struct {
	// Embedder is "node" or "browser".
	Embedder string `json:"embedder"`

	// Raw is the embedder's own version string.
	Raw string `json:"raw"`
}

func (v Version) String() string {
	return v.Embedder + " " + v.Raw
}

// VersionCallback receives the VM version or a failure.
type VersionCallback func(v *Version, err error)

// Version asks the VM for its embedder version.
func (s *Session) Version(ctx context.Context, cb VersionCallback, syncCb relay.SyncCallback) relay.Ok {
	ec := evaluate.NewContext(s.log, s.proc, evaluate.GlobalVariant{ReturnByValue: true})

	var parseErr error

	var chained relay.SyncCallback
	if syncCb != nil {
		chained = relay.SyncFunc(func(err error) {
			if err == nil {
				err = parseErr
			}

			syncCb.CallbackDone(err)
		})
	}

	return ec.EvaluateAsync(ctx, versionProbe, nil, func(v *evaluate.Value, err error) {
		var ver *Version
		if err == nil {
			ver, err = parseVersion(v)
			parseErr = err
		}

		if cb != nil {
			cb(ver, err)
		}
	}, chained)
}

func parseVersion(v *evaluate.Value) (*Version, error) {
	if v.Thrown {
		return nil, fmt.Errorf("version probe threw: %s", v.Object.String())
	}

	var payload string
	if err := v.Object.DecodeValue(&payload); err != nil {
		return nil, fmt.Errorf("version probe result: %w", err)
	}

	var ver Version
	if err := json.Unmarshal([]byte(payload), &ver); err != nil {
		return nil, fmt.Errorf("version probe payload: %w", err)
	}

	return &ver, nil
}
