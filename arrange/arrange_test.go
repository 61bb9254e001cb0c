package arrange

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phanxgames/pinboard"
)

func completionBody(t *testing.T, args string) []byte {
	t.Helper()
	resp := map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o-mini",
		"choices": []any{map[string]any{
			"index": 0,
			"message": map[string]any{
				"role":    "assistant",
				"content": "",
				"tool_calls": []any{map[string]any{
					"id":   "call_1",
					"type": "function",
					"function": map[string]any{
						"name":      FunctionName,
						"arguments": args,
					},
				}},
			},
			"finish_reason": "tool_calls",
		}},
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(pinboard.ArrangeSettings{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "gpt-4o-mini",
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

var sampleItems = []pinboard.ArrangeItem{
	{ID: "a", Description: "apples", Position: pinboard.Vec2{X: 0, Y: 0}, Size: pinboard.Size{Width: 100, Height: 100}},
	{ID: "b", Description: "pears", Position: pinboard.Vec2{X: 500, Y: 0}, Size: pinboard.Size{Width: 100, Height: 100}},
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(pinboard.ArrangeSettings{}, nil)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestArrange(t *testing.T) {
	var gotReq map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("request body: %v", err)
		}
		args := `{"items":[
			{"id":"a","description":"apples","position":{"x":10,"y":20},"size":{"width":100,"height":100},"groupId":"fruit"},
			{"id":"b","description":"pears","position":{"x":130,"y":20},"size":{"width":100,"height":100},"groupId":"fruit"}
		]}`
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, args))
	})

	placements, err := c.Arrange(context.Background(), sampleItems)
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if len(placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(placements))
	}
	if placements[0].ID != "a" || placements[0].Position != (pinboard.Vec2{X: 10, Y: 20}) {
		t.Errorf("placement 0 = %+v", placements[0])
	}
	if placements[1].ID != "b" || placements[1].Position != (pinboard.Vec2{X: 130, Y: 20}) {
		t.Errorf("placement 1 = %+v", placements[1])
	}

	choice, ok := gotReq["tool_choice"].(map[string]any)
	if !ok {
		t.Fatalf("tool_choice missing: %v", gotReq["tool_choice"])
	}
	fn, _ := choice["function"].(map[string]any)
	if fn["name"] != FunctionName {
		t.Errorf("tool_choice function = %v", fn["name"])
	}
	msgs, _ := gotReq["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	user, _ := msgs[1].(map[string]any)
	content, _ := user["content"].(string)
	if !strings.Contains(content, `"description":"apples"`) {
		t.Errorf("user prompt missing items: %s", content)
	}
}

func TestArrangeNoToolCall(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"sorry"},"finish_reason":"stop"}]}`))
	})
	_, err := c.Arrange(context.Background(), sampleItems)
	if !errors.Is(err, ErrNoToolCall) {
		t.Fatalf("err = %v, want ErrNoToolCall", err)
	}
}

func TestArrangeRejectsInvalidArguments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Position is missing y.
		_, _ = w.Write(completionBody(t, `{"items":[{"id":"a","description":"x","position":{"x":1},"size":{"width":1,"height":1}}]}`))
	})
	_, err := c.Arrange(context.Background(), sampleItems)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid") {
		t.Errorf("err = %v, want schema validation error", err)
	}
}

func TestArrangeServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})
	if _, err := c.Arrange(context.Background(), sampleItems); err == nil {
		t.Fatal("expected error")
	}
}

func TestArrangeEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})
	placements, err := c.Arrange(context.Background(), nil)
	if err != nil || placements != nil {
		t.Fatalf("Arrange(nil) = %v, %v", placements, err)
	}
}

func TestParametersSchema(t *testing.T) {
	data, err := ParametersSchemaJSON()
	if err != nil {
		t.Fatalf("ParametersSchemaJSON: %v", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %s", data)
	}
	if _, ok := props["items"]; !ok {
		t.Errorf("schema missing items property: %s", data)
	}
	params, _, err := parametersSchema()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := params["$schema"]; ok {
		t.Error("tool parameters should not carry $schema")
	}
}

func TestBoardAppliesArrangement(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		args := `{"items":[
			{"id":"a","description":"apples","position":{"x":7,"y":8},"size":{"width":100,"height":100}},
			{"id":"ghost","description":"?","position":{"x":1,"y":1},"size":{"width":1,"height":1}}
		]}`
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, args))
	})
	board := pinboard.NewBoard([]pinboard.Item{
		{ID: "a", Label: "apples", Size: pinboard.Size{Width: 100, Height: 100}},
		{ID: "b", Label: "pears", Position: pinboard.Vec2{X: 500}, Size: pinboard.Size{Width: 100, Height: 100}},
	})
	if err := <-board.RequestArrange(context.Background(), c); err != nil {
		t.Fatalf("RequestArrange: %v", err)
	}
	board.Update(0)
	a, _ := board.Item("a")
	if a.Position != (pinboard.Vec2{X: 7, Y: 8}) {
		t.Errorf("a at %+v, want (7, 8)", a.Position)
	}
	b, _ := board.Item("b")
	if b.Position != (pinboard.Vec2{X: 500}) {
		t.Errorf("b moved to %+v", b.Position)
	}
	if _, ok := board.Item("ghost"); ok {
		t.Error("unknown id must not be created")
	}
}
