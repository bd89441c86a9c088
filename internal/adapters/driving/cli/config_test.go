package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

func TestApplySetting(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(t *testing.T, s domain.AppSettings)
	}{
		{
			key: "embedding.provider", value: "ollama",
			check: func(t *testing.T, s domain.AppSettings) {
				assert.Equal(t, domain.AIProviderOllama, s.Embedding.Provider)
			},
		},
		{key: "embedding.provider", value: "psychic", wantErr: true},
		{
			key: "generation.provider", value: "anthropic",
			check: func(t *testing.T, s domain.AppSettings) {
				assert.Equal(t, domain.AIProviderAnthropic, s.Generation.Provider)
			},
		},
		// Hashing cannot generate text.
		{key: "generation.provider", value: "hashing", wantErr: true},
		{
			key: "generation.api_key", value: "sk-test",
			check: func(t *testing.T, s domain.AppSettings) {
				assert.Equal(t, "sk-test", s.Generation.APIKey)
			},
		},
		{
			key: "search.algorithm", value: "semantic",
			check: func(t *testing.T, s domain.AppSettings) {
				assert.Equal(t, domain.SearchSemantic, s.Search.Algorithm)
			},
		},
		{key: "search.algorithm", value: "psychic", wantErr: true},
		{
			key: "chunking.size", value: "500",
			check: func(t *testing.T, s domain.AppSettings) {
				assert.Equal(t, 500, s.Chunking.Size)
			},
		},
		{key: "chunking.size", value: "0", wantErr: true},
		{key: "chunking.size", value: "lots", wantErr: true},
		{
			key: "storage.capacity_bytes", value: "1048576",
			check: func(t *testing.T, s domain.AppSettings) {
				assert.Equal(t, int64(1048576), s.Storage.CapacityBytes)
			},
		},
		{key: "storage.capacity_bytes", value: "-1", wantErr: true},
		{
			key: "budget.monthly_limit", value: "9.99",
			check: func(t *testing.T, s domain.AppSettings) {
				assert.Equal(t, 9.99, s.Budget.MonthlyLimit)
			},
		},
		{key: "budget.monthly_limit", value: "-5", wantErr: true},
		{key: "nonsense.key", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			settings := domain.DefaultAppSettings()
			err := applySetting(&settings, tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "(not set)", maskAPIKey(""))
	assert.Equal(t, "****", maskAPIKey("abcd"))
	assert.Equal(t, "sk-1****6789", maskAPIKey("sk-123456789"))
}
