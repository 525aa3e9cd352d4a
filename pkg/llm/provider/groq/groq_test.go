package groq_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitrineworks/vitrine/pkg/llm"
	"github.com/vitrineworks/vitrine/pkg/llm/provider/groq"
)

var _ = Describe("Provider", func() {
	var (
		server   *httptest.Server
		captured map[string]any
		status   int
		reply    string
	)

	BeforeEach(func() {
		captured = nil
		status = http.StatusOK
		reply = "The answer.\n<<SUGGESTIONS>>\nA?\nB?\nC?"

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal("POST"))
			Expect(r.URL.Path).To(Equal("/chat/completions"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))

			Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())

			w.WriteHeader(status)
			if status != http.StatusOK {
				w.Write([]byte(`{"error":{"message":"rate limited"}}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": reply}},
				},
			})
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newProvider := func() *groq.Provider {
		p, err := groq.New(groq.Config{
			APIKey:  "test-key",
			BaseURL: server.URL,
			Owner:   "Ada",
		})
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	It("requires an api key", func() {
		_, err := groq.New(groq.Config{})
		Expect(err).To(MatchError(llm.ErrNotConfigured))
	})

	It("sends the flagship model with tuned generation parameters", func() {
		_, err := newProvider().Generate(context.Background(), llm.Request{Query: "hi"})
		Expect(err).NotTo(HaveOccurred())

		Expect(captured["model"]).To(Equal("llama-3.3-70b-versatile"))
		Expect(captured["temperature"]).To(BeNumerically("==", 0.5))
		Expect(captured["max_tokens"]).To(BeNumerically("==", 1024))
	})

	It("sends a system prompt and a grounded user message", func() {
		_, err := newProvider().Generate(context.Background(), llm.Request{
			Query:   "what stack?",
			Context: "Project: Verdex",
		})
		Expect(err).NotTo(HaveOccurred())

		messages := captured["messages"].([]any)
		Expect(messages).To(HaveLen(2))

		system := messages[0].(map[string]any)
		Expect(system["role"]).To(Equal("system"))
		Expect(system["content"]).To(ContainSubstring("Ada's portfolio"))

		user := messages[1].(map[string]any)
		Expect(user["role"]).To(Equal("user"))
		Expect(user["content"]).To(ContainSubstring("Project: Verdex"))
		Expect(user["content"]).To(ContainSubstring("what stack?"))
	})

	It("returns the completion text", func() {
		text, err := newProvider().Generate(context.Background(), llm.Request{Query: "hi"})
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal(reply))
	})

	It("surfaces non-200 responses as generation errors", func() {
		status = http.StatusTooManyRequests
		_, err := newProvider().Generate(context.Background(), llm.Request{Query: "hi"})
		Expect(err).To(MatchError(llm.ErrGeneration))
		Expect(err.Error()).To(ContainSubstring("429"))
	})
})
