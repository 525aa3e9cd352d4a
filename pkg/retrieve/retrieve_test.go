package retrieve_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitrineworks/vitrine/pkg/logger"
	"github.com/vitrineworks/vitrine/pkg/retrieve"
	"github.com/vitrineworks/vitrine/pkg/vector"
)

type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0}, nil
}

func (e *stubEmbedder) Dimensions() int { return 2 }
func (e *stubEmbedder) Close() error    { return nil }

type stubStore struct {
	matches []vector.QueryMatch
	err     error
	topK    int
}

func (s *stubStore) EnsureReady(context.Context) error             { return nil }
func (s *stubStore) Upsert(context.Context, []vector.Vector) error { return nil }
func (s *stubStore) Clear(context.Context) error                   { return nil }
func (s *stubStore) Close() error                                  { return nil }

func (s *stubStore) Query(_ context.Context, _ []float32, topK int) ([]vector.QueryMatch, error) {
	s.topK = topK
	return s.matches, s.err
}

func match(id string, score float32, metadata map[string]string) vector.QueryMatch {
	return vector.QueryMatch{ID: id, Score: score, Metadata: metadata}
}

var _ = Describe("Engine", func() {
	var (
		ctx   context.Context
		store *stubStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = &stubStore{}
	})

	newEngine := func(opts retrieve.Options) *retrieve.Engine {
		return retrieve.NewEngine(&stubEmbedder{}, store, opts, logger.Nop())
	}

	It("queries with the default top k", func() {
		_, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.topK).To(Equal(100))
	})

	It("keeps only matches strictly above the threshold", func() {
		store.matches = []vector.QueryMatch{
			match("a", 0.9, map[string]string{"text": "kept"}),
			match("b", 0.15, map[string]string{"text": "at threshold"}),
			match("c", 0.05, map[string]string{"text": "below"}),
		}

		g, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Context).To(Equal("kept"))
	})

	It("joins surviving texts with the delimiter", func() {
		store.matches = []vector.QueryMatch{
			match("a", 0.9, map[string]string{"text": "first"}),
			match("b", 0.8, map[string]string{"text": "second"}),
		}

		g, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Context).To(Equal("first\n---\nsecond"))
	})

	It("shrinks or holds context as the threshold rises", func() {
		store.matches = []vector.QueryMatch{
			match("a", 0.9, map[string]string{"text": "aaaa"}),
			match("b", 0.5, map[string]string{"text": "bbbb"}),
			match("c", 0.2, map[string]string{"text": "cccc"}),
		}

		var prev int
		first := true
		for _, threshold := range []float32{0.1, 0.3, 0.6, 0.95} {
			g, err := newEngine(retrieve.Options{Threshold: threshold}).Retrieve(ctx, "hi")
			Expect(err).NotTo(HaveOccurred())
			if !first {
				Expect(len(g.Context)).To(BeNumerically("<=", prev))
			}
			prev = len(g.Context)
			first = false
		}
	})

	It("groups media candidates by project id", func() {
		store.matches = []vector.QueryMatch{
			match("project-p1", 0.9, map[string]string{
				"text":       "verdex",
				"type":       "project",
				"project_id": "p1",
				"title":      "Verdex",
				"image_url":  "http://x/img.png",
			}),
			match("project-p1-image", 0.8, map[string]string{
				"type":       "project_image",
				"project_id": "p1",
				"title":      "Verdex",
				"video_url":  "http://x/demo.mp4",
			}),
		}

		g, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Candidates).To(HaveLen(1))
		Expect(g.Candidates[0].Key).To(Equal("p1"))
		Expect(g.Candidates[0].ImageURL).To(Equal("http://x/img.png"))
		Expect(g.Candidates[0].VideoURL).To(Equal("http://x/demo.mp4"))
	})

	It("keys candidates by chunk id when no project id is present", func() {
		store.matches = []vector.QueryMatch{
			match("certification-c1", 0.9, map[string]string{
				"type":      "certification",
				"image_url": "http://x/badge.png",
			}),
		}

		g, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Candidates).To(HaveLen(1))
		Expect(g.Candidates[0].Key).To(Equal("certification-c1"))
	})

	It("preserves first-seen candidate order", func() {
		store.matches = []vector.QueryMatch{
			match("project-p2", 0.9, map[string]string{
				"type": "project", "project_id": "p2", "image_url": "http://x/2.png",
			}),
			match("project-p1", 0.8, map[string]string{
				"type": "project", "project_id": "p1", "image_url": "http://x/1.png",
			}),
		}

		g, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Candidates[0].Key).To(Equal("p2"))
		Expect(g.Candidates[1].Key).To(Equal("p1"))
	})

	It("captures the profile image separately from candidates", func() {
		store.matches = []vector.QueryMatch{
			match("profile", 0.9, map[string]string{
				"text":      "Name: Ada",
				"type":      "profile",
				"image_url": "http://x/ada.png",
			}),
		}

		g, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.ProfileImage).To(Equal("http://x/ada.png"))
		Expect(g.Candidates).To(BeEmpty())
		Expect(strings.Contains(g.Context, "Name: Ada")).To(BeTrue())
	})

	It("discards media from matches at or below the threshold", func() {
		store.matches = []vector.QueryMatch{
			match("project-p1", 0.1, map[string]string{
				"type": "project", "project_id": "p1", "image_url": "http://x/1.png",
			}),
		}

		g, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Context).To(BeEmpty())
		Expect(g.Candidates).To(BeEmpty())
	})

	It("returns an empty grounding, not an error, when nothing survives", func() {
		g, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Context).To(BeEmpty())
	})

	It("surfaces embedding failures", func() {
		engine := retrieve.NewEngine(&stubEmbedder{err: errors.New("boom")}, store, retrieve.Options{}, logger.Nop())
		_, err := engine.Retrieve(ctx, "hi")
		Expect(err).To(MatchError(ContainSubstring("embedding query")))
	})

	It("surfaces index failures", func() {
		store.err = errors.New("down")
		_, err := newEngine(retrieve.Options{}).Retrieve(ctx, "hi")
		Expect(err).To(MatchError(ContainSubstring("querying index")))
	})
})
