package chunker_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitrineworks/vitrine/pkg/chunker"
	"github.com/vitrineworks/vitrine/pkg/portfolio"
)

func fullCorpus() *portfolio.Portfolio {
	return &portfolio.Portfolio{
		Profile: portfolio.Profile{
			Name:        "Ada Lovelace",
			Title:       "Engineer",
			Bio:         "Builds things.",
			Location:    "London",
			Email:       "ada@example.com",
			AvatarImage: "https://cdn.example.com/ada.png",
		},
		Skills: portfolio.Skills{
			Languages: []string{"Go", "Python"},
			Cloud:     []string{"GCP"},
		},
		Projects: []portfolio.Project{
			{
				ID:          "p1",
				Title:       "Verdex",
				Description: "Plant identifier",
				TechStack:   []string{"Go", "CLIP"},
				Image:       "https://cdn.example.com/verdex.png",
				Video:       "https://cdn.example.com/verdex.mp4",
				Documents: []portfolio.Document{
					{Name: "Whitepaper", Type: "pdf", URL: "https://cdn.example.com/verdex.pdf"},
				},
			},
			{ID: "p2", Title: "Tracker"},
		},
		Experience: []portfolio.Experience{
			{ID: "e1", Role: "Engineer", Company: "Acme", Responsibilities: []string{"ship", "review"}},
		},
		Education: []portfolio.Education{
			{ID: "ed1", Degree: "BSc", Institution: "UCL"},
		},
		Certifications: []portfolio.Certification{
			{ID: "c1", Name: "Cloud Cert", Issuer: "GCP"},
		},
		Contact: portfolio.Contact{
			Availability: "open to work",
			SocialLinks: map[string]string{
				"github":   "https://github.com/ada",
				"linkedin": "https://linkedin.com/in/ada",
			},
		},
	}
}

var _ = Describe("Build", func() {
	It("emits exactly one chunk per source item plus profile, skills, and contact", func() {
		p := fullCorpus()
		chunks := chunker.Build(p)

		// 3 fixed + 2 projects + 1 experience + 1 education + 1 certification
		Expect(chunks).To(HaveLen(8))

		ids := make([]string, len(chunks))
		for i, c := range chunks {
			ids[i] = c.ID
		}
		Expect(ids).To(Equal([]string{
			"profile", "skills",
			"project-p1", "project-p2",
			"experience-e1", "education-ed1", "certification-c1",
			"contact",
		}))
	})

	It("is deterministic", func() {
		p := fullCorpus()
		Expect(chunker.Build(p)).To(Equal(chunker.Build(p)))
	})

	It("renders list fields comma-joined", func() {
		chunks := chunker.Build(fullCorpus())
		Expect(chunks[1].Text).To(ContainSubstring("Programming Languages: Go, Python"))
		Expect(chunks[2].Text).To(ContainSubstring("Technologies: Go, CLIP"))
	})

	It("renders project documents into the text", func() {
		chunks := chunker.Build(fullCorpus())
		Expect(chunks[2].Text).To(ContainSubstring("Whitepaper (pdf): https://cdn.example.com/verdex.pdf"))
	})

	It("attaches media urls only to project and profile metadata", func() {
		chunks := chunker.Build(fullCorpus())

		byID := map[string]chunker.Chunk{}
		for _, c := range chunks {
			byID[c.ID] = c
		}

		Expect(byID["profile"].Metadata["image_url"]).To(Equal("https://cdn.example.com/ada.png"))
		Expect(byID["project-p1"].Metadata["image_url"]).To(Equal("https://cdn.example.com/verdex.png"))
		Expect(byID["project-p1"].Metadata["video_url"]).To(Equal("https://cdn.example.com/verdex.mp4"))
		Expect(byID["experience-e1"].Metadata).NotTo(HaveKey("image_url"))
		Expect(byID["contact"].Metadata).NotTo(HaveKey("image_url"))
	})

	It("merges profile email and social links into the contact chunk", func() {
		chunks := chunker.Build(fullCorpus())
		contact := chunks[len(chunks)-1]

		Expect(contact.Type).To(Equal(chunker.TypeContact))
		Expect(contact.Text).To(ContainSubstring("Email: ada@example.com"))
		Expect(contact.Text).To(ContainSubstring("GitHub: https://github.com/ada"))
		Expect(contact.Text).To(ContainSubstring("LinkedIn: https://linkedin.com/in/ada"))
	})

	It("renders an empty corpus without panicking", func() {
		chunks := chunker.Build(&portfolio.Portfolio{})

		Expect(chunks).To(HaveLen(3))
		for _, c := range chunks {
			Expect(c.Text).NotTo(BeEmpty())
			Expect(c.Metadata["section"]).NotTo(BeEmpty())
		}
	})

	It("falls back to an unknown id for items without ids", func() {
		p := &portfolio.Portfolio{Projects: []portfolio.Project{{Title: "Nameless"}}}
		chunks := chunker.Build(p)
		Expect(chunks[2].ID).To(Equal("project-unknown"))
	})

	It("trims whitespace from every chunk text", func() {
		for _, c := range chunker.Build(fullCorpus()) {
			Expect(c.Text).To(Equal(strings.TrimSpace(c.Text)))
		}
	})
})

var _ = Describe("CleanMetadata", func() {
	It("drops empty-valued keys", func() {
		cleaned := chunker.CleanMetadata(map[string]string{
			"section":   "projects",
			"image_url": "",
			"title":     "Verdex",
		})

		Expect(cleaned).To(Equal(map[string]string{
			"section": "projects",
			"title":   "Verdex",
		}))
	})

	It("never yields an empty value for any generated chunk", func() {
		for _, c := range chunker.Build(fullCorpus()) {
			for k, v := range chunker.CleanMetadata(c.Metadata) {
				Expect(v).NotTo(BeEmpty(), "key %q", k)
			}
		}
	})
})
