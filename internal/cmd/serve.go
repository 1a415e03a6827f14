package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hargabyte/clsinfo/internal/config"
	"github.com/hargabyte/clsinfo/internal/mcp"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [paths...]",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server over stdio that answers
reflection queries against the loaded headers. The headers are parsed once
and stay loaded for the lifetime of the server.

Available Tools:
  clsinfo_list     Enumerate classes, namespaces and enums
  clsinfo_show     Reflection properties of one entity
  clsinfo_method   Resolve a method by prototype or arguments

Tools and timeout default to the serve section of .clsinfo/config.yaml.

Examples:
  clsinfo serve include/                       # Start with configured tools
  clsinfo serve --tools list,show include/     # Only some tools
  clsinfo serve --timeout 30m include/         # Auto-stop after 30 minutes
  clsinfo serve --status                       # Check if server is running
  clsinfo serve --stop                         # Stop running server
  clsinfo serve --list-tools                   # Show available tools`,
	RunE: runServe,
}

var (
	serveTools     string
	serveTimeout   string
	serveStatus    bool
	serveStop      bool
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default from config)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "", "Inactivity timeout, 0 for none (default from config)")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running server")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if serveListTools {
		fmt.Fprintln(out, "Available MCP tools:")
		fmt.Fprintln(out)
		for _, schema := range toolSchemas() {
			fmt.Fprintf(out, "  %-16s %s\n", schema.Name, schema.Description)
		}
		return nil
	}
	if serveStatus {
		return checkServerStatus(cmd)
	}
	if serveStop {
		return stopServer(cmd)
	}

	s, err := openSession(cmd, args, false)
	if err != nil {
		return err
	}
	defer s.Close()

	timeout := s.cfg.Serve.Timeout
	if serveTimeout != "" {
		timeout, err = parseDuration(serveTimeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}

	tools := s.cfg.Serve.Tools
	if serveTools != "" {
		tools = parseToolList(serveTools)
	}

	server, err := mcp.New(mcp.Config{
		Tools:    tools,
		Timeout:  timeout,
		Resolver: s.res,
		Executor: s.box,
		Reporter: s.rep,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := writePIDFile(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write PID file: %v\n", err)
	}
	defer removePIDFile()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nclsinfo serve: shutting down\n")
		removePIDFile()
		s.Close()
		os.Exit(0)
	}()

	// stdout carries the protocol
	fmt.Fprintf(os.Stderr, "clsinfo serve: %d headers loaded\n", len(s.files))
	fmt.Fprintf(os.Stderr, "clsinfo serve: tools: %v\n", server.ListTools())
	if timeout > 0 {
		fmt.Fprintf(os.Stderr, "clsinfo serve: timeout: %v\n", timeout)
	}

	return server.ServeStdio()
}

// parseToolList accepts full tool names or their short form (show -> clsinfo_show).
func parseToolList(s string) []string {
	var tools []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "clsinfo_") {
			t = "clsinfo_" + t
		}
		tools = append(tools, t)
	}
	return tools
}

func toolSchemas() []mcp.ToolSchema {
	schemas := make([]mcp.ToolSchema, 0, len(mcp.AllTools))
	for _, name := range mcp.AllTools {
		if schema, ok := mcp.LookupToolSchema(name); ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func getPIDFilePath() (string, error) {
	dir, err := config.FindConfigDir(".")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "serve.pid"), nil
}

func writePIDFile() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return err
	}
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile() {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return
	}
	os.Remove(pidPath)
}

func readPID() (int, error) {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func checkServerStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if _, err := getPIDFilePath(); err != nil {
		fmt.Fprintln(out, "Status: not running (clsinfo not initialized)")
		return nil
	}

	pid, err := readPID()
	if err != nil {
		fmt.Fprintln(out, "Status: not running")
		return nil
	}

	// FindProcess always succeeds on Unix; signal 0 checks that the process exists.
	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.Signal(0))
	}
	if err != nil {
		fmt.Fprintln(out, "Status: not running (stale PID file)")
		removePIDFile()
		return nil
	}

	fmt.Fprintf(out, "Status: running (PID %d)\n", pid)
	return nil
}

func stopServer(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if _, err := getPIDFilePath(); err != nil {
		return fmt.Errorf("clsinfo not initialized")
	}

	pid, err := readPID()
	if err != nil {
		fmt.Fprintln(out, "No server running")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.SIGTERM)
	}
	if err != nil {
		removePIDFile()
		fmt.Fprintln(out, "Server already stopped")
		return nil
	}

	fmt.Fprintf(out, "Stopped server (PID %d)\n", pid)
	return nil
}
