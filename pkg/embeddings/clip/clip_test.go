package clip_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitrineworks/vitrine/pkg/embeddings"
	"github.com/vitrineworks/vitrine/pkg/embeddings/clip"
)

var _ = Describe("Embedder", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newEmbedder := func(url string) *clip.Embedder {
		e, err := clip.NewEmbedder(clip.EmbedderConfig{BaseURL: url})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	It("defaults to 512 dimensions", func() {
		Expect(newEmbedder("http://example.invalid").Dimensions()).To(Equal(512))
	})

	It("embeds text via the text encoder endpoint", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/embed/text"))

			var body map[string]string
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			Expect(body["text"]).To(Equal("a photo of a plant"))

			json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0, 2}})
		}))
		defer server.Close()

		vec, err := newEmbedder(server.URL).EmbedText(ctx, "a photo of a plant")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0, 1}))
	})

	It("embeds images via the image encoder endpoint", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/embed/image"))

			var body map[string]string
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			Expect(body["url"]).To(Equal("http://x/img.png"))

			json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{1, 0}})
		}))
		defer server.Close()

		vec, err := newEmbedder(server.URL).EmbedImage(ctx, "http://x/img.png")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{1, 0}))
	})

	It("surfaces an unreachable image as an error without retrying", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "could not fetch image", http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := newEmbedder(server.URL).EmbedImage(ctx, "http://x/broken.png")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	It("errors on an empty embedding", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{}})
		}))
		defer server.Close()

		_, err := newEmbedder(server.URL).EmbedText(ctx, "hello")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	Describe("Interface compliance", func() {
		It("implements both embedder interfaces", func() {
			var _ embeddings.Embedder = (*clip.Embedder)(nil)
			var _ embeddings.ImageEmbedder = (*clip.Embedder)(nil)
		})
	})
})
