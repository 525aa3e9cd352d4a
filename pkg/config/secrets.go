package config

import "os"

// Secrets holds API credentials. They come exclusively from the
// environment (optionally seeded by a .env file loaded at startup) and
// are never written to config.toml.
type Secrets struct {
	PineconeAPIKey    string
	QdrantAPIKey      string
	HuggingFaceAPIKey string
	GroqAPIKey        string
	GeminiAPIKey      string
}

// LoadSecrets reads credentials from the environment.
func LoadSecrets() Secrets {
	return Secrets{
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		QdrantAPIKey:      os.Getenv("QDRANT_API_KEY"),
		HuggingFaceAPIKey: os.Getenv("HUGGINGFACE_API_KEY"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
	}
}
