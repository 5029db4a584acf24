package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/toy-robot/api"
	"github.com/wricardo/toy-robot/game/engine"
	"github.com/wricardo/toy-robot/game/service"
	"github.com/wricardo/toy-robot/game/store"
)

func newLiveClient(t *testing.T) *Client {
	t.Helper()

	svc := service.NewUnitService(store.NewMemory())
	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) (string, bool) {
	t.Helper()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("%s: expected content", name)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content in result", name)
	}
	return text.Text, result.IsError
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestToolSession(t *testing.T) {
	client := newLiveClient(t)

	steps := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
		isError bool
		expect  []string
	}{
		{"move", client.handleMove, nil, true, []string{"Toy model not placed yet."}},
		{"place", client.handlePlace, map[string]interface{}{"x": float64(0), "y": float64(0), "face": "NORTH"}, false, []string{"Toy model placed.", "Position: (0, 0)", "Facing: NORTH"}},
		{"move", client.handleMove, nil, false, []string{"Toy model moved one unit forward.", "Position: (0, 1)"}},
		{"rotate", client.handleRotate, map[string]interface{}{"direction": "RIGHT"}, false, []string{"rotated 90deg to the right", "Facing: EAST"}},
		{"report", client.handleReport, nil, false, []string{"Toy model placed at (0, 1) facing EAST."}},
		{"place", client.handlePlace, map[string]interface{}{"x": float64(5), "y": float64(5), "face": "EAST"}, false, []string{"Position: (5, 5)"}},
		{"move", client.handleMove, nil, false, []string{"Toy model did not move.", "off the board"}},
		{"remove", client.handleRemove, nil, false, []string{"Toy model instance removed.", "The board is empty."}},
		{"report", client.handleReport, nil, true, []string{"Toy model not placed yet."}},
	}

	for i, st := range steps {
		text, isError := callTool(t, st.handler, st.name, st.args)
		if isError != st.isError {
			t.Errorf("step %d %s: expected isError=%v, got %v (%s)", i, st.name, st.isError, isError, text)
		}
		for _, want := range st.expect {
			if !strings.Contains(text, want) {
				t.Errorf("step %d %s: expected %q in %q", i, st.name, want, text)
			}
		}
	}
}

func TestPlaceValidationError(t *testing.T) {
	client := newLiveClient(t)

	text, isError := callTool(t, client.handlePlace, "place", map[string]interface{}{"x": float64(7), "face": "north"})
	if !isError {
		t.Fatal("Expected tool error")
	}
	for _, want := range []string{"validation failed", "x: Input should be less than or equal to 5", "y: Field required", "face: Input should be"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %q", want, text)
		}
	}
}

func TestInstructions(t *testing.T) {
	client := NewClient("http://unused")

	text, isError := callTool(t, client.handleInstructions, "robot_instructions", nil)
	if isError {
		t.Fatal("Instructions should not be an error")
	}
	if !strings.Contains(text, "6x6 cells") || !strings.Contains(text, "from 0 to 5") {
		t.Errorf("Unexpected instructions: %s", text)
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/report", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/report", nil, nil)
	if err == nil || err.Error() != "API error: 500" {
		t.Errorf("Expected status error, got %v", err)
	}
}

func TestHandleMessage_ListTools(t *testing.T) {
	client := NewClient("http://unused")

	ctx := context.Background()
	client.GetMCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":0,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))

	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	response := client.GetMCPServer().HandleMessage(ctx, msg)

	data, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}
	for _, tool := range []string{"place", "rotate", "move", "report", "remove", "robot_instructions"} {
		if !strings.Contains(string(data), `"name":"`+tool+`"`) {
			t.Errorf("Expected tool %s in tools/list response", tool)
		}
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{"a": float64(3), "b": 4, "c": json.Number("5"), "d": 2.5}

	if v, _ := intArg(args, "a"); v != 3 {
		t.Errorf("Expected 3, got %v", v)
	}
	if v, _ := intArg(args, "b"); v != 4 {
		t.Errorf("Expected 4, got %v", v)
	}
	if v, _ := intArg(args, "c"); v != 5 {
		t.Errorf("Expected 5, got %v", v)
	}
	if v, _ := intArg(args, "d"); v != 2.5 {
		t.Errorf("Expected non-integer passed through, got %v", v)
	}
	if _, ok := intArg(args, "missing"); ok {
		t.Error("Expected missing key to be absent")
	}
}

func TestFormatCommandResult(t *testing.T) {
	s := engine.UnitState{Position: engine.Position{X: 2, Y: 3}, Orientation: engine.South}
	text := formatCommandResult(&service.CommandResult{Outcome: engine.OutcomeMoved, Message: "Toy model moved one unit forward.", Placed: true, State: &s})

	if !strings.Contains(text, "Position: (2, 3)") || !strings.Contains(text, "Facing: SOUTH") {
		t.Errorf("Unexpected output: %s", text)
	}
}
