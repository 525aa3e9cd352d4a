// Package chunker decomposes the portfolio corpus into retrieval units.
//
// Build is a pure function: the same corpus always yields the same chunks,
// in the same order, with stable ids. Missing source fields render as empty
// strings, never errors.
package chunker

import (
	"fmt"
	"strings"

	"github.com/vitrineworks/vitrine/pkg/portfolio"
)

// Chunk types, one per corpus section plus the synthesized contact chunk.
const (
	TypeProfile       = "profile"
	TypeSkills        = "skills"
	TypeProject       = "project"
	TypeExperience    = "experience"
	TypeEducation     = "education"
	TypeCertification = "certification"
	TypeContact       = "contact"
)

// Chunk is the atomic retrieval unit: a synthesized natural-language
// rendering of one source record plus flat string metadata.
type Chunk struct {
	ID       string
	Text     string
	Type     string
	Metadata map[string]string
}

// Build converts the portfolio into its fixed chunk set: profile, skills,
// one chunk per project/experience/education/certification, and one
// synthesized contact chunk merging profile.email with the contact record.
func Build(p *portfolio.Portfolio) []Chunk {
	chunks := []Chunk{profileChunk(p.Profile), skillsChunk(p.Skills)}

	for _, project := range p.Projects {
		chunks = append(chunks, projectChunk(project))
	}
	for _, exp := range p.Experience {
		chunks = append(chunks, experienceChunk(exp))
	}
	for _, edu := range p.Education {
		chunks = append(chunks, educationChunk(edu))
	}
	for _, cert := range p.Certifications {
		chunks = append(chunks, certificationChunk(cert))
	}

	chunks = append(chunks, contactChunk(p.Profile, p.Contact))

	return chunks
}

// CleanMetadata returns a copy of m without empty-valued keys. The vector
// store rejects null fields, so absent values must not be persisted.
func CleanMetadata(m map[string]string) map[string]string {
	cleaned := make(map[string]string, len(m))
	for k, v := range m {
		if v == "" {
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}

func profileChunk(profile portfolio.Profile) Chunk {
	text := fmt.Sprintf(`Name: %s
Title: %s
Bio: %s
Location: %s`,
		profile.Name, profile.Title, profile.Bio, profile.Location)

	return Chunk{
		ID:   "profile",
		Text: strings.TrimSpace(text),
		Type: TypeProfile,
		Metadata: map[string]string{
			"section":   "about",
			"image_url": profile.AvatarImage,
		},
	}
}

func skillsChunk(skills portfolio.Skills) Chunk {
	text := fmt.Sprintf(`Technical Skills:
- Programming Languages: %s
- AI/ML: %s
- Frameworks & Libraries: %s
- Development Platforms: %s
- Cloud: %s`,
		strings.Join(skills.Languages, ", "),
		strings.Join(skills.AIML, ", "),
		strings.Join(skills.FrameworksLibraries, ", "),
		strings.Join(skills.DevelopmentPlatforms, ", "),
		strings.Join(skills.Cloud, ", "))

	return Chunk{
		ID:       "skills",
		Text:     strings.TrimSpace(text),
		Type:     TypeSkills,
		Metadata: map[string]string{"section": "skills"},
	}
}

func projectChunk(project portfolio.Project) Chunk {
	text := fmt.Sprintf(`Project: %s
Description: %s
Details: %s
Technologies: %s
Features: %s
Status: %s
Category: %s`,
		project.Title,
		project.Description,
		project.LongDescription,
		strings.Join(project.TechStack, ", "),
		strings.Join(project.Features, ", "),
		project.Status,
		project.Category)

	// Supporting documents are rendered into the text so the generator
	// can reference them.
	if len(project.Documents) > 0 {
		var docs strings.Builder
		docs.WriteString("\nDocuments:\n")
		for _, d := range project.Documents {
			fmt.Fprintf(&docs, "- %s (%s): %s\n", d.Name, d.Type, d.URL)
		}
		text += docs.String()
	}

	id := project.ID
	if id == "" {
		id = "unknown"
	}

	return Chunk{
		ID:   "project-" + id,
		Text: strings.TrimSpace(text),
		Type: TypeProject,
		Metadata: map[string]string{
			"section":    "projects",
			"project_id": project.ID,
			"title":      project.Title,
			"demo_url":   project.DemoURL,
			"github_url": project.GithubURL,
			"image_url":  project.Image,
			"video_url":  project.Video,
		},
	}
}

func experienceChunk(exp portfolio.Experience) Chunk {
	text := fmt.Sprintf(`Experience: %s at %s
Duration: %s
Location: %s
Description: %s
Responsibilities: %s
Technologies: %s`,
		exp.Role,
		exp.Company,
		exp.Duration,
		exp.Location,
		exp.Description,
		strings.Join(exp.Responsibilities, ", "),
		strings.Join(exp.Technologies, ", "))

	id := exp.ID
	if id == "" {
		id = "unknown"
	}

	return Chunk{
		ID:   "experience-" + id,
		Text: strings.TrimSpace(text),
		Type: TypeExperience,
		Metadata: map[string]string{
			"section": "experience",
			"company": exp.Company,
		},
	}
}

func educationChunk(edu portfolio.Education) Chunk {
	text := fmt.Sprintf(`Education: %s from %s
Duration: %s
Location: %s
Description: %s
Key Courses: %s`,
		edu.Degree,
		edu.Institution,
		edu.Duration,
		edu.Location,
		edu.Description,
		strings.Join(edu.Courses, ", "))

	id := edu.ID
	if id == "" {
		id = "unknown"
	}

	return Chunk{
		ID:   "education-" + id,
		Text: strings.TrimSpace(text),
		Type: TypeEducation,
		Metadata: map[string]string{
			"section":     "education",
			"institution": edu.Institution,
		},
	}
}

func certificationChunk(cert portfolio.Certification) Chunk {
	text := fmt.Sprintf(`Certification: %s
Issuer: %s
Date: %s
URL: %s`,
		cert.Name, cert.Issuer, cert.Date, cert.URL)

	id := cert.ID
	if id == "" {
		id = "unknown"
	}

	return Chunk{
		ID:   "certification-" + id,
		Text: strings.TrimSpace(text),
		Type: TypeCertification,
		Metadata: map[string]string{
			"section": "certifications",
			"name":    cert.Name,
		},
	}
}

// contactChunk deliberately merges profile.email with the contact record's
// availability and social links.
func contactChunk(profile portfolio.Profile, contact portfolio.Contact) Chunk {
	text := fmt.Sprintf(`Contact Information:
Email: %s
Availability: %s
Use email for contact.
GitHub: %s
LinkedIn: %s`,
		profile.Email,
		contact.Availability,
		contact.SocialLinks["github"],
		contact.SocialLinks["linkedin"])

	return Chunk{
		ID:       "contact",
		Text:     strings.TrimSpace(text),
		Type:     TypeContact,
		Metadata: map[string]string{"section": "contact"},
	}
}
