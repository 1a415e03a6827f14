// Package mcp provides an MCP (Model Context Protocol) server for clsinfo.
// This lets AI agents query a loaded declaration tree through MCP tools
// instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hargabyte/clsinfo/internal/classinfo"
	"github.com/hargabyte/clsinfo/internal/diag"
	"github.com/hargabyte/clsinfo/internal/interp"
	"github.com/hargabyte/clsinfo/internal/lookup"
	"github.com/hargabyte/clsinfo/internal/output"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with reflection tools over one tree.
type Server struct {
	mcpServer    *server.MCPServer
	res          *lookup.Resolver
	exec         interp.Executor
	rep          diag.Reporter
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex

	// query serializes tool calls; the tree materializes lazily.
	query sync.Mutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)

	Resolver *lookup.Resolver
	Executor interp.Executor
	Reporter diag.Reporter
}

// AllTools lists all available tools
var AllTools = []string{"clsinfo_list", "clsinfo_show", "clsinfo_method"}

// New creates a new MCP server over cfg.Resolver's tree.
func New(cfg Config) (*Server, error) {
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("no declaration tree loaded")
	}
	rep := cfg.Reporter
	if rep == nil {
		rep = diag.Discard{}
	}

	mcpServer := server.NewMCPServer(
		"clsinfo",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		res:          cfg.Resolver,
		exec:         cfg.Executor,
		rep:          rep,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "clsinfo_list":
		return s.registerListTool()
	case "clsinfo_show":
		return s.registerShowTool()
	case "clsinfo_method":
		return s.registerMethodTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "clsinfo serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tools in name order
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"clsinfo_list": {
		Name:        "clsinfo_list",
		Description: "List the namespaces, classes, structs, unions and enums of the loaded headers in declaration order.",
		Parameters: []ParameterSchema{
			{Name: "scope", Type: "string", Description: "Only entities whose qualified name starts with this prefix"},
			{Name: "limit", Type: "number", Description: "Maximum results (default: all)"},
		},
	},
	"clsinfo_show": {
		Name:        "clsinfo_show",
		Description: "Show reflection properties of a class-like entity: kind bits, special members, size, bases and methods.",
		Parameters: []ParameterSchema{
			{Name: "name", Type: "string", Description: "Qualified name, e.g. geo::Circle or std::pair<int,float>", Required: true},
			{Name: "brief", Type: "boolean", Description: "Omit bases and methods"},
		},
	},
	"clsinfo_method": {
		Name:        "clsinfo_method",
		Description: "Resolve a method of a class by prototype or by argument expressions and report the this-adjustment.",
		Parameters: []ParameterSchema{
			{Name: "class", Type: "string", Description: "Qualified class or namespace name", Required: true},
			{Name: "name", Type: "string", Description: "Method name", Required: true},
			{Name: "proto", Type: "string", Description: "Comma separated parameter types, e.g. \"int, const char*\""},
			{Name: "args", Type: "string", Description: "Argument expressions, e.g. \"1, 2.0f\"; overrides proto"},
			{Name: "exact", Type: "boolean", Description: "Require exact parameter types instead of allowing conversions"},
			{Name: "const", Type: "boolean", Description: "Look up on a const object"},
		},
	},
}

// LookupToolSchema returns the schema of a known tool, registered or not.
func LookupToolSchema(name string) (ToolSchema, bool) {
	schema, ok := toolSchemaRegistry[name]
	return schema, ok
}

// GetToolSchemas returns schemas for all registered tools in name order.
func (s *Server) GetToolSchemas() []ToolSchema {
	schemas := make([]ToolSchema, 0, len(s.tools))
	for _, name := range s.ListTools() {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	switch name {
	case "clsinfo_list":
		scope, _ := args["scope"].(string)
		limit := 0
		if l, ok := args["limit"].(float64); ok {
			limit = int(l)
		}
		return s.executeList(scope, limit)

	case "clsinfo_show":
		name, _ := args["name"].(string)
		if name == "" {
			return "", fmt.Errorf("name parameter is required")
		}
		brief, _ := args["brief"].(bool)
		return s.executeShow(name, brief)

	case "clsinfo_method":
		class, _ := args["class"].(string)
		method, _ := args["name"].(string)
		if class == "" || method == "" {
			return "", fmt.Errorf("class and name parameters are required")
		}
		proto, _ := args["proto"].(string)
		arglist, hasArgs := args["args"].(string)
		exact, _ := args["exact"].(bool)
		isConst, _ := args["const"].(bool)
		return s.executeMethod(methodQuery{
			class:   class,
			name:    method,
			proto:   proto,
			args:    arglist,
			useArgs: hasArgs,
			exact:   exact,
			isConst: isConst,
		})

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerListTool registers the clsinfo_list tool
func (s *Server) registerListTool() error {
	schema := toolSchemaRegistry["clsinfo_list"]
	tool := mcp.NewTool(schema.Name,
		mcp.WithDescription(schema.Description),
		mcp.WithString("scope",
			mcp.Description("Only entities whose qualified name starts with this prefix"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: all)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handle("clsinfo_list"))
	return nil
}

// registerShowTool registers the clsinfo_show tool
func (s *Server) registerShowTool() error {
	schema := toolSchemaRegistry["clsinfo_show"]
	tool := mcp.NewTool(schema.Name,
		mcp.WithDescription(schema.Description),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Qualified name, e.g. geo::Circle or std::pair<int,float>"),
		),
		mcp.WithBoolean("brief",
			mcp.Description("Omit bases and methods"),
		),
	)

	s.mcpServer.AddTool(tool, s.handle("clsinfo_show"))
	return nil
}

// registerMethodTool registers the clsinfo_method tool
func (s *Server) registerMethodTool() error {
	schema := toolSchemaRegistry["clsinfo_method"]
	tool := mcp.NewTool(schema.Name,
		mcp.WithDescription(schema.Description),
		mcp.WithString("class",
			mcp.Required(),
			mcp.Description("Qualified class or namespace name"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Method name"),
		),
		mcp.WithString("proto",
			mcp.Description("Comma separated parameter types, e.g. \"int, const char*\""),
		),
		mcp.WithString("args",
			mcp.Description("Argument expressions, e.g. \"1, 2.0f\"; overrides proto"),
		),
		mcp.WithBoolean("exact",
			mcp.Description("Require exact parameter types instead of allowing conversions"),
		),
		mcp.WithBoolean("const",
			mcp.Description("Look up on a const object"),
		),
	)

	s.mcpServer.AddTool(tool, s.handle("clsinfo_method"))
	return nil
}

// handle adapts CallTool to an MCP tool handler.
func (s *Server) handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.updateActivity()

		result, err := s.CallTool(name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

// Tool implementations

func (s *Server) executeList(scope string, limit int) (string, error) {
	s.query.Lock()
	defer s.query.Unlock()

	list := &output.ListOutput{Entities: []*output.EntityOutput{}}
	ci := classinfo.New(s.res, s.exec, s.rep)
	for ci.Next() {
		entity := output.NewEntityOutput(ci, false)
		if entity == nil || !strings.HasPrefix(entity.Name, scope) {
			continue
		}
		list.Entities = append(list.Entities, entity)
		if limit > 0 && len(list.Entities) >= limit {
			break
		}
	}
	list.Count = len(list.Entities)
	return toJSON(list)
}

func (s *Server) executeShow(name string, brief bool) (string, error) {
	s.query.Lock()
	defer s.query.Unlock()

	entity := output.NewEntityOutput(classinfo.ForName(s.res, s.exec, s.rep, name), !brief)
	if entity == nil {
		return "", fmt.Errorf("no class, namespace or enum named %q", name)
	}
	return toJSON(entity)
}

type methodQuery struct {
	class, name, proto, args string
	useArgs, exact, isConst  bool
}

func (s *Server) executeMethod(q methodQuery) (string, error) {
	s.query.Lock()
	defer s.query.Unlock()

	ci := classinfo.ForName(s.res, s.exec, s.rep, q.class)
	if !ci.IsLoaded() {
		return "", fmt.Errorf("no loaded class or namespace named %q", q.class)
	}

	var (
		mi     classinfo.MethodInfo
		offset int64
	)
	switch {
	case q.useArgs:
		mi, offset = ci.GetMethodWithArgs(q.name, q.args, q.isConst)
	case q.exact:
		mi, offset = ci.GetMethod(q.name, q.proto, q.isConst, classinfo.ExactMatch)
	default:
		mi, offset = ci.GetMethod(q.name, q.proto, q.isConst, classinfo.ConversionMatch)
	}
	return toJSON(output.NewMethodOutput(ci.FullName(), q.name, mi, offset))
}

// Helper functions

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
