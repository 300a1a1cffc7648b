// Package mcp exposes a debugging session as a Model Context Protocol server.
//
// Server keeps a registry of tools that can be invoked directly with CallTool
// or served to an MCP client over any go-sdk transport with Serve. NewDebugServer
// registers the debugger tools: evaluation, scripts, breakpoints and stepping.
package mcp
