// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Tavla board tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tavla/internal/board"
	"github.com/starford/tavla/internal/boardservice"
	"github.com/starford/tavla/internal/models"
)

// Server wraps the MCP server with Tavla tools.
type Server struct {
	mcp *server.MCPServer
	svc *boardservice.Service
}

// New creates a new MCP server with all Tavla tools registered.
func New(svc *boardservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Tavla",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Get the full board document, optionally filtered. "+
			"Read the board format via the get_board_contract tool or the "+
			"tavla://board-format resource before creating cards."),
		mcp.WithString("filter", mcp.Description("Optional filter expression (see board contract)")),
	), s.getBoard)

	s.mcp.AddTool(mcp.NewTool("search_cards",
		mcp.WithDescription("Full-text search through card titles, descriptions, and details."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCards)

	s.mcp.AddTool(mcp.NewTool("create_card",
		mcp.WithDescription("Create a new card in the given lane. The id and creation "+
			"time are assigned by the service."),
		mcp.WithString("lane", mcp.Required(), mcp.Description("Target lane: todo, in-progress, testing, or done")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Card title (non-blank)")),
		mcp.WithString("type", mcp.Description("Card type: empty, bug, or emergency")),
		mcp.WithString("prio", mcp.Description("Priority as a non-negative integer string")),
		mcp.WithString("category", mcp.Description("Free-form category label")),
		mcp.WithString("description", mcp.Description("Short description (Markdown)")),
		mcp.WithString("details", mcp.Description("Long details (Markdown)")),
	), s.createCard)

	s.mcp.AddTool(mcp.NewTool("move_card",
		mcp.WithDescription("Move a card to another lane by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
		mcp.WithString("lane", mcp.Required(), mcp.Description("Destination lane: todo, in-progress, testing, or done")),
	), s.moveCard)

	s.mcp.AddTool(mcp.NewTool("delete_card",
		mcp.WithDescription("Delete a card by id. References to it are pruned from other cards."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
	), s.deleteCard)

	s.mcp.AddTool(mcp.NewTool("get_board_contract",
		mcp.WithDescription("Returns the canonical Tavla board format and filter language. "+
			"Call this before creating cards or writing filter expressions."),
	), s.getBoardContract)

	// Resource: board format contract.
	s.mcp.AddResource(
		mcp.NewResource("tavla://board-format", "Board Format Contract",
			mcp.WithResourceDescription("Canonical board JSON format and filter expression language."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readBoardFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) getBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr := req.GetString("filter", "")

	if expr == "" {
		b, _ := s.svc.Snapshot(ctx)
		out, _ := json.MarshalIndent(b, "", "  ")
		return mcp.NewToolResultText(string(out)), nil
	}

	view := s.svc.View(ctx, expr, boardservice.ModeExpression)
	if view.FilterError != "" {
		return mcp.NewToolResultError(view.FilterError), nil
	}
	out, _ := json.MarshalIndent(view.Board, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lane, err := req.RequireString("lane")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	form := board.CardForm{
		Title:       title,
		Type:        req.GetString("type", ""),
		Prio:        req.GetString("prio", ""),
		Category:    req.GetString("category", ""),
		Description: req.GetString("description", ""),
		Details:     req.GetString("details", ""),
	}

	card, err := s.svc.CreateCard(ctx, models.GroupKey(lane), form)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(card, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) moveCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lane, err := req.RequireString("lane")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.svc.MoveCardByID(ctx, id, models.GroupKey(lane)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved card %s to %s", id, lane)), nil
}

func (s *Server) deleteCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteCard(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted card %s", id)), nil
}

func (s *Server) getBoardContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BoardFormatContract), nil
}

func (s *Server) readBoardFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "tavla://board-format",
			MIMEType: "text/markdown",
			Text:     BoardFormatContract,
		},
	}, nil
}
