package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/sitpulse/core"
	"github.com/huangsam/sitpulse/internal/contract"
	mcp_internal "github.com/huangsam/sitpulse/internal/mcp"
	"github.com/huangsam/sitpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testPipeline() *core.Pipeline {
	ds := &schema.Dataset{
		Memberships: []schema.MembershipCount{
			{Period: day(2016, 1, 31), Country: "Canada", MembershipType: schema.HomeownerMembership, NumActive: 4},
			{Period: day(2016, 1, 31), Country: "Canada", MembershipType: schema.HousesitterMembership, NumActive: 8},
		},
		Sitters: []schema.Sitter{{UserID: 1, FirstStartDate: day(2016, 1, 5), BillingCountry: "Canada"}},
		Owners:  []schema.Owner{{UserID: 2, FirstStartDate: day(2016, 1, 3), BillingCountry: "Canada"}},
		Assignments: []schema.Assignment{
			{ID: 10, OwnerID: 2, CreatedDate: day(2016, 1, 8)},
		},
		Applications: []schema.Application{
			{SitterID: 1, AssignmentID: 10, DateCreated: day(2016, 1, 9)},
		},
		Fingerprint: "mcp",
	}
	return core.NewPipeline(ds, schema.Window{Start: day(2016, 1, 1), End: day(2016, 12, 31)})
}

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(testPipeline(), mgr)

	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func TestMCPServerReportTools(t *testing.T) {
	tests := []struct {
		tool string
		kind schema.ReportKind
	}{
		{"get_growth", schema.GrowthReport},
		{"get_sitter_onboarding", schema.SitterOnboardingReport},
		{"get_owner_onboarding", schema.OwnerOnboardingReport},
		{"get_network_health", schema.NetworkHealthReport},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			res := callTool(t, tt.tool, map[string]any{"country": "Canada"})
			require.False(t, res.IsError)

			var doc schema.ReportDocument
			require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &doc))
			assert.Equal(t, tt.kind, doc.Report)
			assert.Equal(t, "Canada", doc.Country)
			assert.Equal(t, tt.kind == schema.GrowthReport, doc.Latest != nil)
		})
	}
}

func TestMCPServerDefaultCountry(t *testing.T) {
	res := callTool(t, "get_growth", nil)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, `"country": "All"`)
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	res := callTool(t, "get_network_health", map[string]any{"country": "Atlantis"})
	assert.True(t, res.IsError, "The response should indicate an error state")
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "unknown country")
}
