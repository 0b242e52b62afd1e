package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/tavla/internal/boardservice"
	"github.com/starford/tavla/internal/models"
	"github.com/starford/tavla/internal/store"
	"github.com/starford/tavla/internal/testutil"
)

type noopNotifier struct{}

func (noopNotifier) PublishCardEvent(string, string) {}
func (noopNotifier) PublishBoardUpdated()            {}
func (noopNotifier) PublishSaveFailed(string)        {}

func testServer(t *testing.T) *Server {
	t.Helper()

	_, fs := testutil.TestBoardFile(t)
	db := testutil.TestDB(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	saver := store.NewSaver(fs, logger, nil)
	t.Cleanup(saver.Close)

	svc := boardservice.NewService(fs, saver, db, noopNotifier{}, logger)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so the
	// handler functions are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "get_board":
		result, err = srv.getBoard(ctx, req)
	case "search_cards":
		result, err = srv.searchCards(ctx, req)
	case "create_card":
		result, err = srv.createCard(ctx, req)
	case "move_card":
		result, err = srv.moveCard(ctx, req)
	case "delete_card":
		result, err = srv.deleteCard(ctx, req)
	case "get_board_contract":
		result, err = srv.getBoardContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateCardAndGetBoard(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_card", map[string]interface{}{
		"lane":  "todo",
		"title": "Fix login crash",
		"type":  "bug",
		"prio":  "5",
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	var card models.Card
	if err := json.Unmarshal([]byte(resultText(r)), &card); err != nil {
		t.Fatalf("create result not JSON: %v", err)
	}
	if card.ID != "1" || card.Type != "bug" {
		t.Errorf("card = %+v", card)
	}

	r = callTool(t, srv, "get_board", map[string]interface{}{})
	var b models.Board
	if err := json.Unmarshal([]byte(resultText(r)), &b); err != nil {
		t.Fatalf("board not JSON: %v", err)
	}
	if b.CardCount() != 1 {
		t.Errorf("card count = %d, want 1", b.CardCount())
	}
}

func TestCreateCard_InvalidLane(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_card", map[string]interface{}{
		"lane":  "backlog",
		"title": "x",
	})
	if !r.IsError {
		t.Error("expected error for unknown lane")
	}
}

func TestGetBoard_WithFilter(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_card", map[string]interface{}{"lane": "todo", "title": "a bug", "type": "bug"})
	callTool(t, srv, "create_card", map[string]interface{}{"lane": "todo", "title": "a note"})

	r := callTool(t, srv, "get_board", map[string]interface{}{"filter": "is_bug"})
	if r.IsError {
		t.Fatalf("filtered get_board failed: %s", resultText(r))
	}
	var b models.Board
	_ = json.Unmarshal([]byte(resultText(r)), &b)
	if b.CardCount() != 1 {
		t.Errorf("filtered count = %d, want 1", b.CardCount())
	}

	r = callTool(t, srv, "get_board", map[string]interface{}{"filter": "bogus =="})
	if !r.IsError {
		t.Error("expected error for invalid filter expression")
	}
}

func TestMoveCard(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_card", map[string]interface{}{"lane": "todo", "title": "x"})

	r := callTool(t, srv, "move_card", map[string]interface{}{"id": "1", "lane": "done"})
	if r.IsError {
		t.Fatalf("move failed: %s", resultText(r))
	}

	r = callTool(t, srv, "get_board", map[string]interface{}{})
	var b models.Board
	_ = json.Unmarshal([]byte(resultText(r)), &b)
	if g, _ := b.FindCard("1"); g != models.GroupDone {
		t.Errorf("card lane = %q, want done", g)
	}

	r = callTool(t, srv, "move_card", map[string]interface{}{"id": "99", "lane": "done"})
	if !r.IsError {
		t.Error("expected error for unknown card id")
	}
}

func TestDeleteCard(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_card", map[string]interface{}{"lane": "todo", "title": "x"})

	r := callTool(t, srv, "delete_card", map[string]interface{}{"id": "1"})
	if r.IsError {
		t.Fatalf("delete failed: %s", resultText(r))
	}

	r = callTool(t, srv, "get_board", map[string]interface{}{})
	var b models.Board
	_ = json.Unmarshal([]byte(resultText(r)), &b)
	if b.CardCount() != 0 {
		t.Errorf("card count after delete = %d, want 0", b.CardCount())
	}
}

func TestSearchCards(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_card", map[string]interface{}{"lane": "todo", "title": "uniquetoken here"})

	r := callTool(t, srv, "search_cards", map[string]interface{}{"query": "uniquetoken"})
	if r.IsError {
		t.Fatalf("search failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "uniquetoken") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestGetBoardContract(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_board_contract", map[string]interface{}{})
	text := resultText(r)
	for _, want := range []string{"todo", "in-progress", "is_bug", "prio"} {
		if !strings.Contains(text, want) {
			t.Errorf("contract missing %q", want)
		}
	}
}
