// Package portfolio loads the static content rendered by the site: profile,
// skills, certifications, projects and contact details.
package portfolio

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

type Profile struct {
	Name       string      `yaml:"name" validate:"required"`
	Title      string      `yaml:"title"`
	Tagline    string      `yaml:"tagline"`
	About      []string    `yaml:"about" validate:"min=1"`
	Highlights []Highlight `yaml:"highlights" validate:"dive"`
	Photo      string      `yaml:"photo"`

	Skills         Skills          `yaml:"skills"`
	Certifications []Certification `yaml:"certifications" validate:"dive"`
	Projects       []Project       `yaml:"projects" validate:"dive"`
	Contact        Contact         `yaml:"contact"`
	Socials        []Link          `yaml:"socials" validate:"dive"`
	Motion         Motion          `yaml:"motion"`
}

type Highlight struct {
	Title       string `yaml:"title" validate:"required"`
	Description string `yaml:"description"`
}

type Skills struct {
	Technical []Skill `yaml:"technical" validate:"dive"`
	Soft      []Skill `yaml:"soft" validate:"dive"`
}

// Skill is shown as a bar filled to Level percent.
type Skill struct {
	Name  string `yaml:"name" validate:"required"`
	Level int    `yaml:"level" validate:"min=0,max=100"`
}

type Certification struct {
	Title          string `yaml:"title" validate:"required"`
	Issuer         string `yaml:"issuer" validate:"required"`
	Description    string `yaml:"description"`
	CompletionDate string `yaml:"completion_date"`
	Instructor     string `yaml:"instructor"`
	PDF            string `yaml:"pdf" validate:"omitempty,startswith=/"`
}

type Project struct {
	Title        string   `yaml:"title" validate:"required"`
	Date         string   `yaml:"date"`
	Description  string   `yaml:"description" validate:"required"`
	Technologies []string `yaml:"technologies"`
	GitHubURL    string   `yaml:"github_url" validate:"omitempty,url"`
}

// Contact holds the details listed next to the form. Recipient is where the
// form's mailto link points.
type Contact struct {
	Recipient string   `yaml:"recipient" validate:"required,email"`
	Phones    []string `yaml:"phones"`
	Location  string   `yaml:"location"`
	Inquiry   *Inquiry `yaml:"inquiry"`
}

// Inquiry is the call to action that opens a blank mail with a preset
// subject.
type Inquiry struct {
	Heading string `yaml:"heading" validate:"required"`
	Body    string `yaml:"body"`
	Subject string `yaml:"subject" validate:"required"`
	Label   string `yaml:"label" validate:"required"`
}

type Link struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"required,url"`
}

// Motion is presentation timing, rendered as data attributes only.
type Motion struct {
	StaggerSeconds  float64 `yaml:"stagger_seconds" validate:"min=0"`
	DelaySeconds    float64 `yaml:"delay_seconds" validate:"min=0"`
	DurationSeconds float64 `yaml:"duration_seconds" validate:"min=0"`
}

var validate = validator.New()

// Parse decodes and validates a YAML content document. Unknown keys are an
// error so typos do not silently drop content.
func Parse(r io.Reader) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}
	return &p, nil
}

// LoadFile parses the content file at path.
func LoadFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Default returns the built-in content.
func Default() *Profile {
	p, err := Parse(bytes.NewReader(defaultContent))
	if err != nil {
		panic(err)
	}
	return p
}
