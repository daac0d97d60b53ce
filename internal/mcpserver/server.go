// Package mcpserver exposes the dispatcher's tools over the Model Context
// Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/rs/zerolog"

	"github.com/magick-mcp/magick-mcp/internal/dispatch"
)

// ServerName is reported to clients during initialization.
const ServerName = "magick-mcp"

// HelpURI is the resource serving the binary's usage text.
const HelpURI = "magick://help"

// ToolSpec describes one exposed tool.
type ToolSpec struct {
	Name        string
	Description string
	// Input is a zero value of the tool's argument struct.
	Input interface{}
}

var toolSpecs = []ToolSpec{
	{
		Name:        dispatch.ToolCheck,
		Description: "Check if ImageMagick is installed and return its version or installation instructions.",
		Input:       CheckInput{},
	},
	{
		Name: dispatch.ToolMagick,
		Description: "Execute an ImageMagick command. Pass the arguments without the leading 'magick' and " +
			"without legacy subcommands such as 'convert' or 'identify'. Arguments are never interpreted by a shell.",
		Input: MagickInput{},
	},
	{
		Name: dispatch.ToolFuncSave,
		Description: "Save a reusable function: a name and an ordered list of ImageMagick commands. " +
			"Use $input in any argument to refer to the input file. Fails if the name already exists.",
		Input: FuncSaveInput{},
	},
	{
		Name: dispatch.ToolFuncExecute,
		Description: "Run a saved function against an input file. Commands run in order and stop at the " +
			"first failure; failed_at is the zero-based index of that command.",
		Input: FuncExecuteInput{},
	},
	{
		Name:        dispatch.ToolFuncList,
		Description: "List saved functions and their commands in the order they were saved.",
		Input:       FuncListInput{},
	},
}

// Tools returns the exposed tools in registration order.
func Tools() []ToolSpec {
	return append([]ToolSpec(nil), toolSpecs...)
}

type handlerFunc = func(ctx context.Context, input json.RawMessage) (string, error)

// Server wraps an mcp-go server whose tools are backed by a Dispatcher.
type Server struct {
	srv      *mcpgo.Server
	d        *dispatch.Dispatcher
	log      zerolog.Logger
	handlers map[string]handlerFunc
}

// New builds the server and registers every tool.
func New(d *dispatch.Dispatcher, version string, log zerolog.Logger) *Server {
	info := mcpgo.ServerInfo{
		Name:        ServerName,
		Version:     version,
		Description: "ImageMagick tools and reusable command functions",
		Capabilities: mcpgo.Capabilities{
			Tools:     true,
			Resources: true,
		},
	}
	srv := mcpgo.NewServer(info, mcpgo.WithInstructions(instructions()))

	s := &Server{srv: srv, d: d, log: log, handlers: map[string]handlerFunc{}}
	s.register(dispatch.ToolCheck, s.check)
	s.register(dispatch.ToolMagick, s.magick)
	s.register(dispatch.ToolFuncSave, s.funcSave)
	s.register(dispatch.ToolFuncExecute, s.funcExecute)
	s.register(dispatch.ToolFuncList, s.funcList)
	srv.Resource(HelpURI).
		Name("ImageMagick Help").
		Description("Usage text of the ImageMagick command-line tool: the available options and settings.").
		MimeType("text/plain").
		Handler(s.help)
	return s
}

func (s *Server) register(name string, h handlerFunc) {
	var desc string
	for _, t := range toolSpecs {
		if t.Name == name {
			desc = t.Description
		}
	}
	s.handlers[name] = h
	s.srv.Tool(name).
		Description(desc).
		Handler(h)
}

// Call invokes a registered tool handler directly, bypassing the transport.
func (s *Server) Call(ctx context.Context, tool string, input json.RawMessage) (string, error) {
	h, ok := s.handlers[tool]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", tool)
	}
	return h(ctx, input)
}

// middleware is the request chain applied by every transport.
func (s *Server) middleware() []mcpgo.Middleware {
	return []mcpgo.Middleware{mcpgo.Recover(), mcpgo.RequestID()}
}

// ServeStdio runs the server over stdin/stdout until ctx is done or the
// client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.log.Info().Str("binary", s.d.Binary()).Msg("serving MCP over stdio")
	return mcpgo.ServeStdio(ctx, s.srv, mcpgo.WithMiddleware(s.middleware()...))
}

func (s *Server) check(ctx context.Context, input json.RawMessage) (string, error) {
	var in CheckInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	return encode(s.d.Check(ctx))
}

func (s *Server) magick(ctx context.Context, input json.RawMessage) (string, error) {
	var in MagickInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	args, err := in.argv()
	if err != nil {
		return "", err
	}
	res, err := s.d.Magick(ctx, args, in.Workspace)
	if err != nil {
		return "", fmt.Errorf("magick command failed: %w", err)
	}
	return encode(res)
}

func (s *Server) funcSave(ctx context.Context, input json.RawMessage) (string, error) {
	var in FuncSaveInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	// rejections are part of the result contract
	res, _ := s.d.FuncSave(ctx, in.Name, in.commands())
	return encode(res)
}

func (s *Server) funcExecute(ctx context.Context, input json.RawMessage) (string, error) {
	var in FuncExecuteInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	res, _ := s.d.FuncExecute(ctx, in.Name, in.Input, in.Workspace)
	return encode(res)
}

func (s *Server) funcList(ctx context.Context, input json.RawMessage) (string, error) {
	var in FuncListInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	res, err := s.d.FuncList(ctx)
	if err != nil {
		return "", fmt.Errorf("list functions: %w", err)
	}
	return encode(res)
}

func (s *Server) help(ctx context.Context, uri string, _ map[string]string) (*mcpgo.ResourceContent, error) {
	text, err := s.d.Help(ctx)
	if err != nil {
		return nil, err
	}
	return &mcpgo.ResourceContent{URI: uri, MimeType: "text/plain", Text: text}, nil
}

func encode(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// instructions lists each tool with its input schema so clients that ignore
// per-tool schemas still see the expected arguments.
func instructions() string {
	var b strings.Builder
	b.WriteString("Tools for running ImageMagick and replaying saved command sequences.\n")
	fmt.Fprintf(&b, "Read the %s resource for the full list of ImageMagick options.\n", HelpURI)
	for _, t := range toolSpecs {
		schema, err := json.Marshal(InputSchema(t.Input))
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s\ninput: %s\n", t.Name, t.Description, schema)
	}
	return b.String()
}
