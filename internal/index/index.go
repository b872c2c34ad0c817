// Package index builds an ephemeral per-document retrieval index: chunked
// normalized text plus embeddings, queried by cosine similarity. One index
// per document per request; never persisted or shared.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/rfpflow/internal/domain"
)

// Embedder vectorizes a batch of texts. The scoring capability is external;
// the index only owns chunk lifetime and ordering.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Builder chunks normalized text and embeds the chunks into an Index.
type Builder struct {
	embed     Embedder
	chunkSize int
	overlap   int
	topK      int
}

// NewBuilder creates an index builder. chunkSize and overlap are in words.
func NewBuilder(embed Embedder, chunkSize, overlap, topK int) *Builder {
	return &Builder{embed: embed, chunkSize: chunkSize, overlap: overlap, topK: topK}
}

// Build chunks the text and embeds every chunk in one batch call.
// Returns domain.ErrEmptyDocument when the normalized text is empty.
func (b *Builder) Build(ctx context.Context, text string) (*Index, error) {
	chunks := splitChunks(text, b.chunkSize, b.overlap)
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := b.embed.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	return &Index{chunks: chunks, vectors: vectors, embed: b.embed, topK: b.topK}, nil
}

// Index holds the chunks and embeddings of exactly one document.
type Index struct {
	chunks  []domain.Chunk
	vectors [][]float32
	embed   Embedder
	topK    int
}

// Len returns the number of chunks in the index.
func (ix *Index) Len() int { return len(ix.chunks) }

// Query embeds the query, ranks chunks by cosine similarity and returns the
// top-k chunk texts joined in document order. Ranking picks the chunks;
// document order reconstructs their context.
func (ix *Index) Query(ctx context.Context, query string) (string, error) {
	vecs, err := ix.embed.Embed(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return "", fmt.Errorf("embed query: got %d vectors", len(vecs))
	}
	qv := vecs[0]

	type scored struct {
		pos   int
		score float64
	}
	ranked := make([]scored, len(ix.chunks))
	for i, v := range ix.vectors {
		ranked[i] = scored{pos: i, score: cosine(qv, v)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	k := ix.topK
	if k > len(ranked) {
		k = len(ranked)
	}
	top := ranked[:k]
	sort.Slice(top, func(a, b int) bool { return top[a].pos < top[b].pos })

	parts := make([]string, len(top))
	for i, s := range top {
		parts[i] = ix.chunks[s.pos].Text
	}
	return strings.Join(parts, "\n"), nil
}

// cosine computes cosine similarity; zero vectors and dimension mismatches
// score 0 so a single degenerate embedding never fails the query.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
