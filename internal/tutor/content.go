// Package tutor holds the conversational core: subject classification,
// follow-up suggestions, encouragement, and the chat-turn pipeline.
package tutor

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentYAML []byte

// SubjectRule maps one subject tag to its keyword list. Rule order in
// content.yaml is the classification tie-break order.
type SubjectRule struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
}

// Content is the immutable rule data the tutor runs on, loaded once at init.
type Content struct {
	Subjects           []SubjectRule                  `yaml:"subjects"`
	SubjectSuggestions map[string]map[string][]string `yaml:"subject_suggestions"`
	GradeSuggestions   map[string][]string            `yaml:"grade_suggestions"`
	RedirectSugs       map[string][]string            `yaml:"redirect_suggestions"`
	Encouragements     struct {
		Base    []string `yaml:"base"`
		Engaged string   `yaml:"engaged"`
	} `yaml:"encouragements"`
	RedirectMessages map[string]string `yaml:"redirect_messages"`
	Fallbacks        map[string]string `yaml:"fallbacks"`
}

// LoadContent parses the embedded rule file.
func LoadContent() (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(contentYAML, &c); err != nil {
		return nil, fmt.Errorf("tutor: parse content: %w", err)
	}
	if len(c.Subjects) == 0 {
		return nil, fmt.Errorf("tutor: content has no subjects")
	}
	if len(c.Encouragements.Base) == 0 {
		return nil, fmt.Errorf("tutor: content has no encouragements")
	}
	return &c, nil
}
