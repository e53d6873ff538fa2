// Package repl provides an interactive console for exploring a Home
// Assistant instance through the same views the MCP server exposes.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"hass-mcp-server/internal/logging"
	"hass-mcp-server/internal/resources"
)

// Command represents a command executed in the session
type Command struct {
	Input     string
	Output    string
	Error     error
	Timestamp time.Time
}

// Session tracks one interactive run.
type Session struct {
	ID        string
	History   []Command
	CreatedAt time.Time
}

// REPL reads commands, resolves them against the live instance and
// prints the result.
type REPL struct {
	session  *Session
	resolver *resources.Resolver
	logger   logging.Logger

	input  io.Reader
	output io.Writer

	promptColor *color.Color
	outputColor *color.Color
	errorColor  *color.Color
	infoColor   *color.Color
}

// NewREPL creates a new REPL instance reading from stdin.
func NewREPL(resolver *resources.Resolver, logger logging.Logger) *REPL {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &REPL{
		session: &Session{
			ID:        uuid.New().String(),
			CreatedAt: time.Now(),
		},
		resolver:    resolver,
		logger:      logger.WithComponent("repl"),
		input:       os.Stdin,
		output:      os.Stdout,
		promptColor: color.New(color.FgCyan, color.Bold),
		outputColor: color.New(color.FgGreen),
		errorColor:  color.New(color.FgRed),
		infoColor:   color.New(color.FgYellow),
	}
}

// SetIO redirects input and output, used in tests.
func (r *REPL) SetIO(input io.Reader, output io.Writer) {
	r.input = input
	r.output = output
}

// Start runs the loop until quit, EOF or context cancellation.
func (r *REPL) Start(ctx context.Context) error {
	r.printWelcome()

	scanner := bufio.NewScanner(r.input)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.showPrompt()
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		output, err := r.Eval(ctx, input)
		r.session.History = append(r.session.History, Command{
			Input:     input,
			Output:    output,
			Error:     err,
			Timestamp: time.Now(),
		})

		if err == io.EOF {
			return nil
		}
		if err != nil {
			r.printError(fmt.Sprintf("Error: %v", err))
			continue
		}
		r.printOutput(output)
	}
}

// Eval executes one command and returns its output. Quit is signaled
// with io.EOF.
func (r *REPL) Eval(ctx context.Context, input string) (string, error) {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "help", "?":
		return r.helpText(), nil
	case "quit", "exit":
		return "", io.EOF
	case "entity":
		return r.evalEntity(ctx, args, false)
	case "detail":
		return r.evalEntity(ctx, args, true)
	case "search":
		return r.evalSearch(ctx, args)
	case "domain":
		return r.evalResource(ctx, requireArg(args, "domain "), func(d string) string {
			return "hass://entities/domain/" + d
		})
	case "summary":
		return r.evalResource(ctx, requireArg(args, "summary "), func(d string) string {
			return "hass://entities/domain/" + d + "/summary"
		})
	case "overview":
		doc, _ := r.resolver.Resolve(ctx, "hass://entities")
		return doc, nil
	case "resource":
		if len(args) == 0 {
			return "", fmt.Errorf("usage: resource <hass://...>")
		}
		doc, _ := r.resolver.Resolve(ctx, args[0])
		return doc, nil
	case "history":
		return r.historyText(), nil
	default:
		return "", fmt.Errorf("unknown command %q, try 'help'", command)
	}
}

func (r *REPL) evalEntity(ctx context.Context, args []string, detailed bool) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("usage: entity <entity_id>")
	}
	uri := "hass://entities/" + args[0]
	if detailed {
		uri += "/detailed"
	}
	doc, _ := r.resolver.Resolve(ctx, uri)
	return doc, nil
}

func (r *REPL) evalSearch(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("usage: search <query> [limit]")
	}
	uri := "hass://search/" + args[0]
	if len(args) > 1 {
		if _, err := strconv.Atoi(args[1]); err != nil {
			return "", fmt.Errorf("limit must be a number")
		}
		uri += "/" + args[1]
	}
	doc, _ := r.resolver.Resolve(ctx, uri)
	return doc, nil
}

func (r *REPL) evalResource(ctx context.Context, arg string, build func(string) string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("a domain argument is required")
	}
	doc, _ := r.resolver.Resolve(ctx, build(arg))
	return doc, nil
}

func requireArg(args []string, _ string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (r *REPL) historyText() string {
	var b strings.Builder
	for i, cmd := range r.session.History {
		fmt.Fprintf(&b, "%3d  %s\n", i+1, cmd.Input)
	}
	if b.Len() == 0 {
		return "No commands yet.\n"
	}
	return b.String()
}

func (r *REPL) helpText() string {
	return `Commands:
  entity <entity_id>       Show an entity's state and key attributes
  detail <entity_id>       Show an entity with all attributes
  search <query> [limit]   Search entities by ID or name
  domain <domain>          List all entities of a domain
  summary <domain>         Show a domain's state distribution
  overview                 Show all entities grouped by domain
  resource <uri>           Resolve any hass:// URI
  history                  Show the commands of this session
  help                     Show this help
  quit                     Exit
`
}

func (r *REPL) printWelcome() {
	r.infoColor.Fprintln(r.output, "Home Assistant console. Type 'help' for commands, 'quit' to exit.")
}

func (r *REPL) showPrompt() {
	r.promptColor.Fprint(r.output, "hass> ")
}

func (r *REPL) printOutput(msg string) {
	r.outputColor.Fprintln(r.output, msg)
}

func (r *REPL) printError(msg string) {
	r.errorColor.Fprintln(r.output, msg)
}

