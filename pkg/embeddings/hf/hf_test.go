package hf_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitrineworks/vitrine/pkg/embeddings"
	"github.com/vitrineworks/vitrine/pkg/embeddings/hf"
)

var _ = Describe("Embedder", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newEmbedder := func(url string) *hf.Embedder {
		e, err := hf.NewEmbedder(hf.EmbedderConfig{
			BaseURL:       url,
			APIKey:        "test-key",
			MaxRetries:    3,
			RetryDelay:    time.Millisecond,
			MaxRetryDelay: 5 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	Describe("NewEmbedder", func() {
		It("fails immediately when the API key is missing", func() {
			_, err := hf.NewEmbedder(hf.EmbedderConfig{})
			Expect(err).To(MatchError(embeddings.ErrNotConfigured))
		})

		It("defaults to 384 dimensions", func() {
			e := newEmbedder("http://example.invalid")
			Expect(e.Dimensions()).To(Equal(384))
		})
	})

	Describe("EmbedText", func() {
		It("decodes a flat vector response and normalizes it", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))

				var body map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body["inputs"]).To(Equal("hello"))

				json.NewEncoder(w).Encode([]float32{3, 4})
			}))
			defer server.Close()

			vec, err := newEmbedder(server.URL).EmbedText(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(vec[0]).To(BeNumerically("~", 0.6, 1e-6))
			Expect(vec[1]).To(BeNumerically("~", 0.8, 1e-6))
		})

		It("decodes a nested batch response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				json.NewEncoder(w).Encode([][]float32{{0, 1}})
			}))
			defer server.Close()

			vec, err := newEmbedder(server.URL).EmbedText(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{0, 1}))
		})

		It("retries while the model is warming up", func() {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if attempts.Add(1) <= 2 {
					http.Error(w, `{"error":"model is currently loading"}`, http.StatusServiceUnavailable)
					return
				}
				json.NewEncoder(w).Encode([]float32{1, 0})
			}))
			defer server.Close()

			vec, err := newEmbedder(server.URL).EmbedText(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{1, 0}))
			Expect(attempts.Load()).To(Equal(int32(3)))
		})

		It("gives up after exhausting retries on rate limits", func() {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				attempts.Add(1)
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			}))
			defer server.Close()

			_, err := newEmbedder(server.URL).EmbedText(ctx, "hello")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("after 3 attempts"))
			Expect(attempts.Load()).To(Equal(int32(3)))
		})

		It("does not retry client errors", func() {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				attempts.Add(1)
				http.Error(w, "bad token", http.StatusUnauthorized)
			}))
			defer server.Close()

			_, err := newEmbedder(server.URL).EmbedText(ctx, "hello")
			Expect(err).To(MatchError(embeddings.ErrEmbedding))
			Expect(attempts.Load()).To(Equal(int32(1)))
		})
	})

	Describe("Interface compliance", func() {
		It("implements embeddings.Embedder", func() {
			var _ embeddings.Embedder = (*hf.Embedder)(nil)
		})
	})
})
