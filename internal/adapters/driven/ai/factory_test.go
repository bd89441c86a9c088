package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

func TestCreateEmbeddingService_Unconfigured(t *testing.T) {
	svc, err := CreateEmbeddingService(domain.EmbeddingSettings{})
	require.NoError(t, err)
	assert.Nil(t, svc)

	// Cloud provider without a key counts as unconfigured.
	svc, err = CreateEmbeddingService(domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI})
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestCreateEmbeddingService_Hashing(t *testing.T) {
	svc, err := CreateEmbeddingService(domain.EmbeddingSettings{Provider: domain.AIProviderHashing})
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, 256, svc.Dimensions())
	assert.NoError(t, svc.Close())
}

func TestCreateEmbeddingService_Anthropic(t *testing.T) {
	_, err := CreateEmbeddingService(domain.EmbeddingSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "sk-test",
	})
	assert.Error(t, err)
}

func TestCreateGenerationService_Unconfigured(t *testing.T) {
	svc, err := CreateGenerationService(domain.GenerationSettings{})
	require.NoError(t, err)
	assert.Nil(t, svc)

	// Hashing cannot generate text.
	svc, err = CreateGenerationService(domain.GenerationSettings{Provider: domain.AIProviderHashing})
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestCreateGenerationService_Providers(t *testing.T) {
	ollama, err := CreateGenerationService(domain.GenerationSettings{Provider: domain.AIProviderOllama})
	require.NoError(t, err)
	require.NotNil(t, ollama)
	assert.Equal(t, "llama3.2", ollama.ModelName())

	openai, err := CreateGenerationService(domain.GenerationSettings{
		Provider: domain.AIProviderOpenAI, APIKey: "sk-test",
	})
	require.NoError(t, err)
	require.NotNil(t, openai)
	assert.Equal(t, "gpt-4o-mini", openai.ModelName())

	anthropic, err := CreateGenerationService(domain.GenerationSettings{
		Provider: domain.AIProviderAnthropic, APIKey: "sk-test", Model: "claude-3-5-haiku-latest",
	})
	require.NoError(t, err)
	require.NotNil(t, anthropic)
	assert.Equal(t, "claude-3-5-haiku-latest", anthropic.ModelName())
}

func TestCreateAndValidate_NilForUnconfigured(t *testing.T) {
	embed, err := CreateAndValidateEmbeddingService(domain.EmbeddingSettings{})
	require.NoError(t, err)
	assert.Nil(t, embed)

	gen, err := CreateAndValidateGenerationService(domain.GenerationSettings{})
	require.NoError(t, err)
	assert.Nil(t, gen)
}

func TestCreateAndValidate_HashingAlwaysReachable(t *testing.T) {
	svc, err := CreateAndValidateEmbeddingService(domain.EmbeddingSettings{
		Provider: domain.AIProviderHashing, Dimensions: 64,
	})
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, 64, svc.Dimensions())
	assert.NoError(t, svc.Close())
}
