package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

func TestDocsListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"docs", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "doc-1")
	assert.Contains(t, buf.String(), "notes.md")
}

func TestDocsListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	documentService = &mockDocumentService{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"docs", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No documents.")
}

func TestDocsDeleteCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"docs", "delete", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Deleted doc-1")
	mock := documentService.(*mockDocumentService)
	assert.Equal(t, "doc-1", mock.deletedID)
}

func TestDocsDeleteCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	documentService = &mockDocumentService{err: domain.ErrNotFound}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"docs", "delete", "missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocsStatsCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"docs", "stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Documents:  1")
	assert.Contains(t, buf.String(), "3 embedded")
	assert.Contains(t, buf.String(), "unlimited")
}

func TestDocsStatsCmd_BoundedCapacity(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	documentService = &mockDocumentService{
		stats: &domain.StoreStats{DocumentCount: 1, BytesUsed: 40, CapacityBytes: 100},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"docs", "stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "60 remaining")
}

func TestDocsEvictCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"docs", "evict"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Evicted notes.md")
}

func TestDocsCmds_ServiceNotConfigured(t *testing.T) {
	oldService := documentService
	documentService = nil
	defer func() {
		documentService = oldService
	}()

	for _, args := range [][]string{
		{"docs", "list"},
		{"docs", "delete", "doc-1"},
		{"docs", "stats"},
		{"docs", "evict"},
	} {
		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetErr(buf)
		rootCmd.SetArgs(args)

		err := rootCmd.Execute()
		rootCmd.SetArgs(nil)

		require.Error(t, err, "args: %v", args)
		assert.Contains(t, err.Error(), "not configured")
	}
}
