package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/toy-robot/game/engine"
	"github.com/wricardo/toy-robot/game/service"
	"github.com/wricardo/toy-robot/validate"
)

// ServerName and ServerVersion identify the MCP server to clients
const (
	ServerName    = "Toy Robot Board"
	ServerVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Toy Robot Board - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A single toy robot lives on a 6x6 board. Place it first, then rotate, move
and report. Moves that would leave the board are ignored.

AVAILABLE TOOLS:
- place: Put the robot at (x, y) facing NORTH/EAST/SOUTH/WEST
- rotate: Turn LEFT or RIGHT by 90 degrees
- move: Step one cell forward
- report: Get the robot's position and facing
- remove: Take the robot off the board
- robot_instructions: Board rules and coordinate system`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place",
		Description: "Place the robot on the board, replacing any existing placement",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x": map[string]interface{}{
					"type":        "integer",
					"minimum":     engine.GridMin,
					"maximum":     engine.GridMax,
					"description": "Column, 0 is west",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"minimum":     engine.GridMin,
					"maximum":     engine.GridMax,
					"description": "Row, 0 is south",
				},
				"face": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"NORTH", "EAST", "SOUTH", "WEST"},
					"description": "Direction the robot faces",
				},
			},
			Required: []string{"x", "y", "face"},
		},
	}, c.handlePlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rotate",
		Description: "Rotate the robot 90 degrees without moving",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"LEFT", "RIGHT"},
					"description": "Rotation direction",
				},
			},
			Required: []string{"direction"},
		},
	}, c.handleRotate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the robot one cell in the direction it faces; ignored at the edge",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "report",
		Description: "Report the robot's position and facing",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleReport)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "remove",
		Description: "Remove the robot from the board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRemove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "robot_instructions",
		Description: "Get the board rules and coordinate system",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiError is the REST error body
type apiError struct {
	Error  string                `json:"error"`
	Detail []validate.FieldError `json:"detail"`
}

func (e apiError) String() string {
	if len(e.Detail) == 0 {
		return e.Error
	}
	parts := make([]string, 0, len(e.Detail))
	for _, d := range e.Detail {
		parts = append(parts, fmt.Sprintf("%s: %s", d.Field, d.Message))
	}
	return fmt.Sprintf("%s (%s)", e.Error, strings.Join(parts, "; "))
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp apiError
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return errors.New(errResp.String())
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// command runs one REST command and renders the result for the agent
func (c *Client) command(ctx context.Context, method, path string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.CommandResult
	if err := c.apiCall(ctx, method, path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

// Tool handlers

func (c *Client) handlePlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	body := map[string]interface{}{}
	for _, key := range []string{"x", "y"} {
		if v, ok := intArg(args, key); ok {
			body[key] = v
		}
	}
	if face, ok := args["face"]; ok {
		body["face"] = face
	}

	return c.command(ctx, "POST", "/place", body)
}

func (c *Client) handleRotate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	direction, _ := args["direction"].(string)

	return c.command(ctx, "POST", "/rotate", map[string]string{"direction": direction})
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, "POST", "/move", nil)
}

func (c *Client) handleReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, "GET", "/report", nil)
}

func (c *Client) handleRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.command(ctx, "DELETE", "/remove", nil)
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`TOY ROBOT BOARD

BOARD:
- %dx%d cells, x and y both run from %d to %d
- (0, 0) is the south-west corner
- NORTH increases y, EAST increases x

RULES:
- Only one robot exists at a time; place replaces it
- Every command except place needs the robot on the board first
- A move that would leave the board is ignored and reported as "did not move"
- Rotation never changes the position

EXAMPLE:
1. place x=0 y=0 face=NORTH
2. move                -> (0, 1) NORTH
3. rotate RIGHT        -> (0, 1) EAST
4. move                -> (1, 1) EAST
5. report              -> placed at (1, 1) facing EAST`,
		engine.GridSize, engine.GridSize, engine.GridMin, engine.GridMax)

	return mcp.NewToolResultText(instructions), nil
}

// intArg reads a numeric argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (interface{}, bool) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return v, true
		}
		return int(v), true
	case int:
		return v, true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		return v.String(), true
	case nil:
		return nil, false
	default:
		return v, true
	}
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	b.WriteString(result.Message)
	b.WriteString("\n")
	if result.State != nil {
		fmt.Fprintf(&b, "Position: (%d, %d)\nFacing: %s\n",
			result.State.Position.X, result.State.Position.Y, result.State.Orientation)
		if result.Outcome == engine.OutcomeBlocked {
			b.WriteString("The next cell ahead is off the board.\n")
		}
	} else {
		b.WriteString("The board is empty.\n")
	}
	return b.String()
}
