// Package vectorutils is the vector store utility package
package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vitrineworks/vitrine/pkg/vector"
	"github.com/vitrineworks/vitrine/pkg/vector/pinecone"
	"github.com/vitrineworks/vitrine/pkg/vector/qdrant"
)

type NewStoreOpts struct {
	ProviderType string
	TargetURL    string
	IndexName    string
	APIKey       string
	Dimensions   int
	Logger       *zap.Logger
}

func NewStore(o *NewStoreOpts) (vector.Store, error) {
	switch o.ProviderType {
	case "pinecone":
		return pinecone.NewDriver(pinecone.Config{
			APIKey:     o.APIKey,
			IndexName:  o.IndexName,
			Dimensions: o.Dimensions,
			ControlURL: o.TargetURL,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(qdrant.Config{
			URL:        o.TargetURL,
			Collection: o.IndexName,
			Dimensions: o.Dimensions,
			APIKey:     o.APIKey,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
