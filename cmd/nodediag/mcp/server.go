// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp exposes the nodediag command tree as MCP tools over
// JSON-RPC 2.0 on newline-delimited stdio. Every leaf command that
// declares a Params function becomes a callable tool, with its input
// and output schemas derived from the parameter and output structs.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/nodediag/nodediag/cmd/nodediag/cli"
	"github.com/nodediag/nodediag/lib/version"
)

// Server is an MCP server that exposes nodediag CLI commands as tools.
type Server struct {
	tools       []tool
	toolsByName map[string]*tool
	initialized bool
}

// tool is a discovered CLI command exposed as an MCP tool.
type tool struct {
	name         string
	title        string
	description  string
	annotations  *toolAnnotations
	inputSchema  *cli.Schema
	outputSchema *cli.Schema
	command      *cli.Command
}

// NewServer creates an MCP server by walking the command tree to
// discover all commands with a Params function. Each such command
// becomes an MCP tool with a JSON Schema derived from its parameter
// struct.
func NewServer(root *cli.Command) *Server {
	s := &Server{}

	discoverTools(root, nil, &s.tools)

	s.toolsByName = make(map[string]*tool, len(s.tools))
	for i := range s.tools {
		s.toolsByName[s.tools[i].name] = &s.tools[i]
	}

	return s
}

// Serve starts the MCP server reading from os.Stdin and writing to
// os.Stdout. This is the entry point for "nodediag mcp serve".
func (s *Server) Serve() error {
	return s.Run(os.Stdin, os.Stdout)
}

// Run processes JSON-RPC 2.0 requests from input and writes responses
// to output until input reaches EOF. Each request occupies a single
// line (newline-delimited JSON-RPC, not Content-Length framed).
func (s *Server) Run(input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)
	// MCP messages can be large (tool results for busy hosts list
	// thousands of processes).
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	encoder := json.NewEncoder(output)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			if writeErr := writeError(encoder, json.RawMessage("null"), codeParseError, "parse error: "+err.Error()); writeErr != nil {
				return cli.Internal("writing parse error response: %w", writeErr)
			}
			continue
		}

		if req.JSONRPC != "2.0" {
			if !req.isNotification() {
				if writeErr := writeError(encoder, req.ID, codeInvalidRequest, "unsupported JSON-RPC version"); writeErr != nil {
					return cli.Internal("writing version error response: %w", writeErr)
				}
			}
			continue
		}

		// Notifications have no ID and receive no response.
		if req.isNotification() {
			continue
		}

		if err := s.dispatch(encoder, &req); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// dispatch routes a JSON-RPC request to the appropriate handler.
func (s *Server) dispatch(encoder *json.Encoder, req *request) error {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(encoder, req)
	case "ping":
		return s.handlePing(encoder, req)
	case "tools/list":
		if !s.initialized {
			return writeError(encoder, req.ID, codeInvalidRequest, "server not initialized (call initialize first)")
		}
		return s.handleToolsList(encoder, req)
	case "tools/call":
		if !s.initialized {
			return writeError(encoder, req.ID, codeInvalidRequest, "server not initialized (call initialize first)")
		}
		return s.handleToolsCall(encoder, req)
	default:
		return writeError(encoder, req.ID, codeMethodNotFound, "unknown method: "+req.Method)
	}
}

func (s *Server) handleInitialize(encoder *json.Encoder, req *request) error {
	if len(req.Params) == 0 {
		return writeError(encoder, req.ID, codeInvalidParams, "params required for initialize")
	}

	var params initializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(encoder, req.ID, codeInvalidParams, "invalid initialize params: "+err.Error())
	}

	// The MCP specification says the server responds with its own
	// protocol version and the client decides whether it can proceed.
	// We do not reject clients that request a different version —
	// all MCP versions are additive, so older clients will simply
	// ignore fields they don't recognize.
	s.initialized = true

	return writeResult(encoder, req.ID, initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: serverCapabilities{
			Tools: &toolCapability{},
		},
		ServerInfo: serverInfo{
			Name:    "nodediag",
			Version: version.Short(),
		},
	})
}

func (s *Server) handlePing(encoder *json.Encoder, req *request) error {
	return writeResult(encoder, req.ID, map[string]any{})
}

func (s *Server) handleToolsList(encoder *json.Encoder, req *request) error {
	descriptions := make([]toolDescription, 0, len(s.tools))
	for _, t := range s.tools {
		descriptions = append(descriptions, toolDescription{
			Name:         t.name,
			Title:        t.title,
			Description:  t.description,
			InputSchema:  t.inputSchema,
			OutputSchema: t.outputSchema,
			Annotations:  t.annotations,
		})
	}
	return writeResult(encoder, req.ID, toolsListResult{Tools: descriptions})
}

func (s *Server) handleToolsCall(encoder *json.Encoder, req *request) error {
	if len(req.Params) == 0 {
		return writeError(encoder, req.ID, codeInvalidParams, "params required for tools/call")
	}

	var params toolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(encoder, req.ID, codeInvalidParams, "invalid tools/call params: "+err.Error())
	}

	t, ok := s.toolsByName[params.Name]
	if !ok {
		return writeError(encoder, req.ID, codeInvalidParams, "unknown tool: "+params.Name)
	}

	output, runErr := s.executeTool(t, params.Arguments)
	result := buildToolResult(output, runErr)

	// When the tool declares an output schema and the call succeeded,
	// parse the captured JSON output into structuredContent. Per the
	// MCP specification, tools with outputSchema MUST return both
	// structuredContent (typed JSON) and a text content block
	// (serialized JSON for backward compatibility).
	if t.outputSchema != nil && !result.IsError && output != "" {
		var structured any
		if parseErr := json.Unmarshal([]byte(output), &structured); parseErr != nil {
			// The command declared an output schema but produced
			// output that doesn't parse as JSON. This is a bug in
			// the command, not a runtime error. Surface it as a
			// tool error so it's visible to both the agent and the
			// operator.
			result.IsError = true
			result.Content = append(result.Content, contentBlock{
				Type: "text",
				Text: "output schema violation: command produced non-JSON output: " + parseErr.Error(),
			})
		} else {
			result.StructuredContent = structured
		}
	}

	return writeResult(encoder, req.ID, result)
}

// buildToolResult assembles a toolsCallResult from captured output
// and an optional run error.
func buildToolResult(output string, runErr error) toolsCallResult {
	result := toolsCallResult{}
	if output != "" {
		result.Content = append(result.Content, contentBlock{
			Type: "text",
			Text: output,
		})
	}
	if runErr != nil {
		result.IsError = true
		result.Content = append(result.Content, contentBlock{
			Type: "text",
			Text: runErr.Error(),
		})
		result.ErrorInfo = classifyError(runErr)
	}
	// MCP requires at least one content block in the result.
	if len(result.Content) == 0 {
		result.Content = []contentBlock{{Type: "text", Text: ""}}
	}
	return result
}

// classifyError extracts structured error metadata from an error.
// It checks for ToolError first (the primary path), then falls back
// to context errors for subprocess timeouts that escaped wrapping.
func classifyError(err error) *errorInfo {
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		return &errorInfo{
			Category:  string(toolErr.Category),
			Retryable: toolErr.Category == cli.CategoryTransient,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &errorInfo{Category: string(cli.CategoryTransient), Retryable: true}
	}

	return &errorInfo{Category: string(cli.CategoryInternal), Retryable: false}
}

// executeTool runs a CLI command as an MCP tool, capturing stdout.
// Parameters are zeroed, defaults applied from flag tags, JSON
// arguments overlaid, and JSON output mode forced before execution.
func (s *Server) executeTool(t *tool, arguments json.RawMessage) (string, error) {
	// Get the closure-captured params pointer and zero it. This
	// prevents state from a previous call from bleeding through.
	params := t.command.Params()
	reflect.ValueOf(params).Elem().SetZero()

	// Apply defaults from struct tags. Calling Flags() re-runs flag
	// registration, and pflag sets *target = defaultValue during
	// registration. This reuses the existing default-parsing logic
	// rather than duplicating it.
	if t.command.Flags != nil {
		t.command.Flags()
	}

	// Overlay with the JSON arguments from the MCP client.
	supplied := map[string]json.RawMessage{}
	if len(arguments) > 0 && string(arguments) != "null" {
		if err := json.Unmarshal(arguments, &supplied); err != nil {
			return "", cli.Validation("invalid arguments: %w", err)
		}
	}

	// The schema's required list is a contract: a call omitting a
	// required argument must fail instead of running on zero values.
	for _, name := range t.inputSchema.Required {
		if _, ok := supplied[name]; !ok {
			return "", cli.Validation("missing required argument: %s", name)
		}
	}

	if len(supplied) > 0 {
		if err := cli.UnmarshalArguments(arguments, params); err != nil {
			return "", cli.Validation("invalid arguments: %w", err)
		}
	}

	// Force JSON output when the command supports it. Table formatting
	// is for human terminals; MCP tool output should be structured.
	enableJSONOutput(params)

	return captureRun(t.command.Run)
}

// enableJSONOutput forces JSON output mode on params structs that
// embed [cli.JSONOutput]. Commands produce structured JSON instead
// of tabwriter tables when invoked as MCP tools.
func enableJSONOutput(params any) {
	if j, ok := params.(cli.JSONOutputter); ok {
		j.SetJSONOutput(true)
	}
}

// captureRun executes a Run function while capturing its stdout. A
// goroutine reads from the pipe concurrently to prevent deadlock
// when the command produces more output than the OS pipe buffer.
func captureRun(run func([]string) error) (string, error) {
	reader, writer, err := os.Pipe()
	if err != nil {
		return "", cli.Internal("creating output pipe: %w", err)
	}

	saved := os.Stdout
	os.Stdout = writer

	type capturedOutput struct {
		data []byte
		err  error
	}
	done := make(chan capturedOutput, 1)
	go func() {
		data, readErr := io.ReadAll(reader)
		done <- capturedOutput{data, readErr}
	}()

	runErr := run(nil)

	// Restore stdout before closing the pipe so that any
	// subsequent writes go to the real output destination.
	os.Stdout = saved
	writer.Close()

	captured := <-done
	reader.Close()

	if captured.err != nil {
		return "", cli.Internal("reading captured output: %w", captured.err)
	}

	return string(captured.data), runErr
}

// discoverTools walks the command tree recursively, collecting leaf
// commands that have both Params and Run as MCP tools.
func discoverTools(command *cli.Command, path []string, tools *[]tool) {
	// Build the current path with a fresh slice to avoid aliasing
	// across recursive calls that share the same path prefix.
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name

	if command.Params != nil && command.Run != nil {
		toolName := strings.Join(current, "_")

		inputSchema, err := cli.ParamsSchema(command.Params())
		if err != nil {
			os.Stderr.WriteString("mcp: skipping " + toolName + ": input schema error: " + err.Error() + "\n")
		} else {
			var outputSchema *cli.Schema
			if command.Output != nil {
				outSchema, outErr := cli.OutputSchema(command.Output())
				if outErr != nil {
					os.Stderr.WriteString("mcp: " + toolName + ": output schema error: " + outErr.Error() + "\n")
				} else {
					outputSchema = outSchema
				}
			}

			*tools = append(*tools, tool{
				name:         toolName,
				title:        command.Summary,
				description:  toolDescriptionText(command),
				annotations:  resolveAnnotations(command),
				inputSchema:  inputSchema,
				outputSchema: outputSchema,
				command:      command,
			})
		}
	}

	for _, sub := range command.Subcommands {
		discoverTools(sub, current, tools)
	}
}

// toolDescriptionText returns the best available description for a
// command, preferring the detailed Description over the Summary.
func toolDescriptionText(command *cli.Command) string {
	if command.Description != "" {
		return command.Description
	}
	return command.Summary
}

// resolveAnnotations translates a command's behavioral annotations into
// MCP protocol hints. Returns nil when the command declares none,
// letting MCP clients apply the spec defaults (destructive,
// non-idempotent, open-world).
func resolveAnnotations(command *cli.Command) *toolAnnotations {
	if command.Annotations == nil {
		return nil
	}
	return &toolAnnotations{
		ReadOnlyHint:    command.Annotations.ReadOnly,
		DestructiveHint: command.Annotations.Destructive,
		IdempotentHint:  command.Annotations.Idempotent,
		OpenWorldHint:   command.Annotations.OpenWorld,
	}
}

// writeResult sends a JSON-RPC 2.0 success response.
func writeResult(encoder *json.Encoder, id json.RawMessage, result any) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// writeError sends a JSON-RPC 2.0 error response.
func writeError(encoder *json.Encoder, id json.RawMessage, code int, message string) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}
