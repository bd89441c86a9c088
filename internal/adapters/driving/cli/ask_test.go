package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

func TestAskCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "what is the leave policy"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "mock answer")
}

func TestAskCmd_ShowsUsage(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	queryService = &mockQueryService{
		reply: &domain.ChatMessage{
			Role:    domain.RoleAssistant,
			Content: "grounded answer",
			Usage:   &domain.MessageUsage{TokensUsed: 42, Cost: 0.0004, LatencyMs: 120, Model: "test-model"},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "42 tokens")
	assert.Contains(t, buf.String(), "test-model")
}

func TestAskCmd_SourcesFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	queryService = &mockQueryService{
		reply: &domain.ChatMessage{
			Role:    domain.RoleAssistant,
			Content: "grounded answer",
			Sources: []domain.SearchResult{
				{DocumentName: "policy.md", Chunk: domain.Chunk{Index: 2}, Score: 0.8},
			},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--sources", "anything"})
	defer func() {
		rootCmd.SetArgs(nil)
		askShowSources = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Sources:")
	assert.Contains(t, buf.String(), "policy.md")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	oldService := queryService
	queryService = nil
	defer func() {
		queryService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestHistoryCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	queryService = &mockQueryService{
		history: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "question one"},
			{Role: domain.RoleAssistant, Content: "answer one"},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[user] question one")
	assert.Contains(t, buf.String(), "[assistant] answer one")
}

func TestHistoryCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No history.")
}

func TestHistoryClearCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "clear"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "History cleared.")
	mock := queryService.(*mockQueryService)
	assert.True(t, mock.cleared)
}
