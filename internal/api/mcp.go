package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yanhann10/mingle/internal/profile"
	"github.com/yanhann10/mingle/internal/voicenote"
)

// MCPResolver abstracts contact lookup for the MCP layer.
type MCPResolver interface {
	Resolve(name string) (*profile.Profile, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Profiles ProfileDirectory
	Resolver MCPResolver
}

// NewMCPServer creates an MCP server exposing contact lookup and
// follow-up drafting over stdio.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"mingle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("mingle — contacts collected at events, with follow-up drafting."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("lookup_contact",
			mcp.WithDescription("Find a saved contact by name. Matches exact names first, then partial ones."),
			mcp.WithString("name", mcp.Description("Name or fragment to look up"), mcp.Required()),
		),
		mcpLookupContact(deps),
	)

	s.AddTool(
		mcp.NewTool("draft_followup_email",
			mcp.WithDescription("Draft a follow-up email to a saved contact using the standard template."),
			mcp.WithString("contact_name", mcp.Description("Name of the contact to write to"), mcp.Required()),
			mcp.WithString("topic", mcp.Description("What the conversation was about")),
			mcp.WithString("action", mcp.Description("The follow-up action to propose")),
		),
		mcpDraftFollowup(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"mingle://profiles",
			"Saved Profiles",
			mcp.WithResourceDescription("All saved contact profiles as JSON, newest first"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfiles(deps),
	)

	return s
}

func mcpLookupContact(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}

		match, err := deps.Resolver.Resolve(name)
		if err != nil {
			return mcpError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		if match == nil {
			return mcpText(fmt.Sprintf(`{"found": false, "query": %q}`, name)), nil
		}

		b, err := json.Marshal(map[string]any{
			"found":   true,
			"id":      match.ID,
			"name":    match.Name,
			"role":    match.Role,
			"company": match.Company,
			"email":   match.Email(),
			"bio":     match.Bio,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal contact: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpDraftFollowup(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("contact_name")
		if err != nil {
			return mcpError("contact_name is required"), nil
		}
		topic := req.GetString("topic", "")
		action := req.GetString("action", "")

		match, err := deps.Resolver.Resolve(name)
		if err != nil {
			return mcpError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		if match == nil {
			return mcpError(fmt.Sprintf("no saved contact matches %q", name)), nil
		}

		subject, body := voicenote.FollowUpTemplate(match.Name, topic, action)
		b, err := json.Marshal(map[string]string{
			"to":      match.Email(),
			"subject": subject,
			"body":    body,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal draft: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceProfiles(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		profiles, err := deps.Profiles.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}
		if profiles == nil {
			profiles = []profile.Profile{}
		}

		b, err := json.Marshal(profiles)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profiles: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
