package config

const (
	defaultAPIListen = ":8000"

	defaultPortfolioPath = "portfolio.json"

	defaultVectorProvider = "pinecone"
	defaultVectorIndex    = "portfolio-rag"

	defaultEmbeddingProvider   = "hf"
	defaultEmbeddingModel      = "BAAI/bge-small-en-v1.5"
	defaultEmbeddingDimensions = 384

	defaultGenerationProvider = "groq"

	defaultRetrievalTopK      = 100
	defaultRetrievalThreshold = 0.15
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Data: DataConfig{
			PortfolioPath: defaultPortfolioPath,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
			Index:    defaultVectorIndex,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Generation: GenerationConfig{
			Provider: defaultGenerationProvider,
		},
		Retrieval: RetrievalConfig{
			TopK:      defaultRetrievalTopK,
			Threshold: defaultRetrievalThreshold,
		},
	}
}
