package retrieval

import (
	"fmt"
	"log/slog"
	"strings"

	"ely.by/textures/internal/textures"
)

const (
	StorageType             = "storage"
	MojangType              = "mojang"
	DefaultSkinType         = "default_skin"
	EmbeddedDefaultSkinType = "embedded_default_skin"
)

// Builder creates a retriever of the requested type
type Builder func(retrieverType string) (Retriever, error)

// NewFromConfig creates a chain from the comma separated list of retriever types.
// When the list is blank, a single retriever of the retrievalType is created
func NewFromConfig(retrievalType string, chain string, build Builder) (Retriever, error) {
	if strings.TrimSpace(chain) != "" {
		types := ParseChain(chain)
		if len(types) != 0 {
			slog.Info("Creating retrieval chain", slog.Any("retrievers", types))

			retrievers := make([]Retriever, 0, len(types))
			for _, retrieverType := range types {
				retriever, err := build(retrieverType)
				if err != nil {
					return nil, err
				}

				retrievers = append(retrievers, retriever)
			}

			return NewChain(retrievers...)
		}

		slog.Warn("Retrieval chain is empty, falling back to the single retriever", slog.String("type", retrievalType))
	}

	retrievalType = strings.ToLower(strings.TrimSpace(retrievalType))
	if retrievalType == "" {
		return nil, fmt.Errorf("%w: retrieval type must be set", textures.MisconfiguredError)
	}

	slog.Info("Creating single retriever", slog.String("type", retrievalType))

	return build(retrievalType)
}

func ParseChain(chain string) []string {
	var result []string
	for _, part := range strings.Split(chain, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			result = append(result, part)
		}
	}

	return result
}

func UnknownRetrieverError(retrieverType string) error {
	return fmt.Errorf(
		"%w: unknown retriever type %q, valid types are: %s",
		textures.MisconfiguredError,
		retrieverType,
		strings.Join([]string{StorageType, MojangType, DefaultSkinType, EmbeddedDefaultSkinType}, ", "),
	)
}
