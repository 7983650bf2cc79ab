package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestionBank []byte

// interview phases every question bank must cover
var bankPhases = []string{"technical", "project", "problem_solving", "behavioral"}

type PhaseQuestions struct {
	Intro     string   `yaml:"intro"`
	Questions []string `yaml:"questions"`
}

// QuestionBank drives the scripted interviewer.
type QuestionBank struct {
	Opening           string                    `yaml:"opening"`
	Closing           string                    `yaml:"closing"`
	MinWordsToAdvance int                       `yaml:"min_words_to_advance"`
	Phases            map[string]PhaseQuestions `yaml:"phases"`
}

// LoadQuestionBank reads the bank at path, or the embedded default when path is empty.
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data := defaultQuestionBank
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read question bank %s: %w", path, err)
		}
	}
	return ParseQuestionBank(data)
}

func ParseQuestionBank(data []byte) (*QuestionBank, error) {
	var bank QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if err := bank.validate(); err != nil {
		return nil, fmt.Errorf("invalid question bank: %w", err)
	}
	return &bank, nil
}

func (qb *QuestionBank) validate() error {
	if strings.TrimSpace(qb.Opening) == "" {
		return fmt.Errorf("opening must not be empty")
	}
	if strings.TrimSpace(qb.Closing) == "" {
		return fmt.Errorf("closing must not be empty")
	}
	if qb.MinWordsToAdvance < 0 {
		return fmt.Errorf("min_words_to_advance must not be negative")
	}
	for _, phase := range bankPhases {
		pq, ok := qb.Phases[phase]
		if !ok || len(pq.Questions) == 0 {
			return fmt.Errorf("phase %s needs at least one question", phase)
		}
		for i, q := range pq.Questions {
			if strings.TrimSpace(q) == "" {
				return fmt.Errorf("phase %s question %d is empty", phase, i+1)
			}
		}
	}
	return nil
}

// Question returns the n-th question of phase, wrapping around the list.
func (qb *QuestionBank) Question(phase string, n int) string {
	questions := qb.Phases[phase].Questions
	if len(questions) == 0 {
		return ""
	}
	if n < 0 {
		n = 0
	}
	return questions[n%len(questions)]
}

func (qb *QuestionBank) Intro(phase string) string {
	return qb.Phases[phase].Intro
}

// Render executes text as a template against data.
func Render(text string, data any) (string, error) {
	tmpl, err := template.New("question").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse question template: %w", err)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to render question template: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
