package chromedevtools

import (
	"github.com/cczw2010/chromedevtools/internal/mcp"
)

// MCPServer exposes a debugging session as Model Context Protocol tools.
//
// Serve it over any go-sdk transport, e.g. stdio:
//
//	srv, err := chromedevtools.NewMCPServer(client, "jsdebug", "1.0.0")
//	if err != nil {
//	    return err
//	}
//	return srv.Serve(ctx, &mcp.StdioTransport{})
type MCPServer = mcp.Server

// NewMCPServer creates an MCP server whose tools drive the session of a
// started client.
func NewMCPServer(c Client, name, version string) (*MCPServer, error) {
	s := c.Session()
	if s == nil {
		return nil, ErrClientNotConnected
	}

	return mcp.NewDebugServer(s, name, version), nil
}
