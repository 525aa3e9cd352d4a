// Package portfolio defines the portfolio corpus schema and its JSON loader.
package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Portfolio is the full corpus: one structured record per section.
// Every field is optional; absent fields decode to zero values so the
// chunker never has to guard against missing data.
type Portfolio struct {
	Profile        Profile         `json:"profile"`
	Skills         Skills          `json:"skills"`
	Projects       []Project       `json:"projects"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Contact        Contact         `json:"contact"`
}

// Profile describes the portfolio owner.
type Profile struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	AvatarImage string `json:"avatar_image"`
}

// Skills groups technical skills by area.
type Skills struct {
	Languages            []string `json:"languages"`
	AIML                 []string `json:"ai_ml"`
	FrameworksLibraries  []string `json:"frameworks_libraries"`
	DevelopmentPlatforms []string `json:"development_platforms"`
	Cloud                []string `json:"cloud"`
}

// Project is a single portfolio project. Image and Video are the only
// media-bearing fields in the corpus. Keywords feed the media intent
// keyword-to-project map.
type Project struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	LongDescription string     `json:"long_description"`
	TechStack       []string   `json:"tech_stack"`
	Features        []string   `json:"features"`
	Status          string     `json:"status"`
	Category        string     `json:"category"`
	DemoURL         string     `json:"demo_url"`
	GithubURL       string     `json:"github_url"`
	Image           string     `json:"image"`
	Video           string     `json:"video"`
	Keywords        []string   `json:"keywords"`
	Documents       []Document `json:"documents"`
}

// Document is a supporting artifact attached to a project.
type Document struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Experience is one employment record.
type Experience struct {
	ID               string   `json:"id"`
	Role             string   `json:"role"`
	Company          string   `json:"company"`
	Duration         string   `json:"duration"`
	Location         string   `json:"location"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	Technologies     []string `json:"technologies"`
}

// Education is one education record.
type Education struct {
	ID          string   `json:"id"`
	Degree      string   `json:"degree"`
	Institution string   `json:"institution"`
	Duration    string   `json:"duration"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Courses     []string `json:"courses"`
}

// Certification is one certification record.
type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	URL    string `json:"url"`
}

// Contact holds contact preferences and social links.
type Contact struct {
	Availability string            `json:"availability"`
	SocialLinks  map[string]string `json:"social_links"`
}

// Load reads and decodes the portfolio corpus from a JSON file.
func Load(path string) (*Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading portfolio: %w", err)
	}

	var p Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing portfolio: %w", err)
	}

	return &p, nil
}

// KeywordMap builds the keyword-to-project-id map used by media intent
// matching. Keys are the projects' declared keywords, lowercased.
func (p *Portfolio) KeywordMap() map[string]string {
	m := make(map[string]string)
	for _, project := range p.Projects {
		for _, kw := range project.Keywords {
			if kw == "" {
				continue
			}
			m[strings.ToLower(kw)] = project.ID
		}
	}
	return m
}
