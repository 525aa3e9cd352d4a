package qdrant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitrineworks/vitrine/pkg/logger"
	"github.com/vitrineworks/vitrine/pkg/vector"
	"github.com/vitrineworks/vitrine/pkg/vector/qdrant"
)

// fakeQdrant simulates the collections and points REST endpoints.
type fakeQdrant struct {
	mu        sync.Mutex
	exists    bool
	dimension int
	server    *httptest.Server

	points  map[string]map[string]string
	deletes int
}

func newFakeQdrant(exists bool, dimension int) *fakeQdrant {
	f := &fakeQdrant{
		exists:    exists,
		dimension: dimension,
		points:    map[string]map[string]string{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeQdrant) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := "/collections/portfolio-rag"
	switch {
	case r.Method == "GET" && r.URL.Path == base:
		if !f.exists {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"config": map[string]any{
					"params": map[string]any{
						"vectors": map[string]any{"size": f.dimension, "distance": "Cosine"},
					},
				},
			},
		})

	case r.Method == "PUT" && r.URL.Path == base:
		var req struct {
			Vectors struct {
				Size int `json:"size"`
			} `json:"vectors"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.exists = true
		f.dimension = req.Vectors.Size
		json.NewEncoder(w).Encode(map[string]any{"result": true})

	case r.Method == "DELETE" && r.URL.Path == base:
		f.exists = false
		f.deletes++
		json.NewEncoder(w).Encode(map[string]any{"result": true})

	case r.Method == "PUT" && r.URL.Path == base+"/points":
		var req struct {
			Points []struct {
				ID      string            `json:"id"`
				Payload map[string]string `json:"payload"`
			} `json:"points"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, p := range req.Points {
			f.points[p.ID] = p.Payload
		}
		json.NewEncoder(w).Encode(map[string]any{"result": true})

	case r.Method == "POST" && r.URL.Path == base+"/points/search":
		results := []map[string]any{}
		for _, payload := range f.points {
			results = append(results, map[string]any{"score": 0.8, "payload": payload})
		}
		json.NewEncoder(w).Encode(map[string]any{"result": results})

	case r.Method == "POST" && r.URL.Path == base+"/points/delete":
		f.points = map[string]map[string]string{}
		json.NewEncoder(w).Encode(map[string]any{"result": true})

	default:
		http.Error(w, "unexpected request: "+r.Method+" "+r.URL.Path, http.StatusBadRequest)
	}
}

var _ = Describe("Driver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	newDriver := func(f *fakeQdrant, dimensions int) *qdrant.Driver {
		d, err := qdrant.NewDriver(qdrant.Config{
			URL:        f.server.URL,
			Dimensions: dimensions,
		}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	Describe("NewDriver", func() {
		It("requires a URL", func() {
			_, err := qdrant.NewDriver(qdrant.Config{Dimensions: 384}, logger.Nop())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("qdrant URL is required"))
		})
	})

	Describe("EnsureReady", func() {
		It("creates a missing collection", func() {
			fake := newFakeQdrant(false, 0)
			defer fake.server.Close()

			Expect(newDriver(fake, 384).EnsureReady(ctx)).To(Succeed())
			Expect(fake.exists).To(BeTrue())
			Expect(fake.dimension).To(Equal(384))
		})

		It("recreates the collection on a dimension mismatch", func() {
			fake := newFakeQdrant(true, 384)
			defer fake.server.Close()

			Expect(newDriver(fake, 512).EnsureReady(ctx)).To(Succeed())
			Expect(fake.deletes).To(Equal(1))
			Expect(fake.dimension).To(Equal(512))
		})
	})

	Describe("Upsert and Query", func() {
		It("maps chunk ids to stable point ids and back", func() {
			fake := newFakeQdrant(true, 2)
			defer fake.server.Close()

			d := newDriver(fake, 2)
			Expect(d.Upsert(ctx, []vector.Vector{
				{ID: "project-p1", Values: []float32{1, 0}, Metadata: map[string]string{"section": "projects"}},
			})).To(Succeed())

			// Point ids are deterministic UUIDs, not the raw chunk id.
			for id := range fake.points {
				Expect(id).NotTo(Equal("project-p1"))
				Expect(strings.Count(id, "-")).To(Equal(4))
			}

			matches, err := d.Query(ctx, []float32{1, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].ID).To(Equal("project-p1"))
			Expect(matches[0].Metadata).To(HaveKeyWithValue("section", "projects"))
			Expect(matches[0].Metadata).NotTo(HaveKey("id"))
		})
	})

	Describe("Clear", func() {
		It("removes every point and swallows nothing on success", func() {
			fake := newFakeQdrant(true, 2)
			defer fake.server.Close()

			d := newDriver(fake, 2)
			Expect(d.Upsert(ctx, []vector.Vector{{ID: "a", Values: []float32{1, 0}}})).To(Succeed())
			Expect(d.Clear(ctx)).To(Succeed())
			Expect(fake.points).To(BeEmpty())
		})
	})

	Describe("Interface compliance", func() {
		It("implements vector.Store", func() {
			var _ vector.Store = (*qdrant.Driver)(nil)
		})
	})
})
