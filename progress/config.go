// progress/config.go - per-subject part sizing and completion rules
package progress

import (
	"fmt"
	"strings"
)

// SubjectConfig controls how a subject's question bank is split into parts.
type SubjectConfig struct {
	QuestionsPerPart int     `json:"questionsPerPart"`
	UnlockThreshold  float64 `json:"unlockThreshold"`
	TimeLimit        int     `json:"timeLimit"` // seconds per question, 0 = none
	HasTimeLimit     bool    `json:"hasTimeLimit"`
}

var DefaultSubjectConfig = SubjectConfig{
	QuestionsPerPart: 20,
	UnlockThreshold:  0.7,
	TimeLimit:        30,
	HasTimeLimit:     true,
}

var subjectConfigs = map[string]SubjectConfig{
	"Matemáticas":          {QuestionsPerPart: 12, UnlockThreshold: 0.7, TimeLimit: 0, HasTimeLimit: false},
	"Historia y Geografía": {QuestionsPerPart: 20, UnlockThreshold: 0.7, TimeLimit: 30, HasTimeLimit: true},
	"Castellano y Guaraní": {QuestionsPerPart: 20, UnlockThreshold: 0.7, TimeLimit: 0, HasTimeLimit: false},
	"Legislación":          {QuestionsPerPart: 20, UnlockThreshold: 0.7, TimeLimit: 30, HasTimeLimit: true},
}

// Subjects lists the configured subjects in display order.
func Subjects() []string {
	return []string{"Matemáticas", "Castellano y Guaraní", "Historia y Geografía", "Legislación"}
}

// ConfigFor returns the subject's configuration, or DefaultSubjectConfig for unknown subjects.
func ConfigFor(subject string) SubjectConfig {
	if cfg, ok := subjectConfigs[subject]; ok {
		return cfg
	}
	return DefaultSubjectConfig
}

// Policy decides what a failed retake does to an already completed part.
type Policy string

const (
	// PolicySticky keeps a part completed once any attempt cleared the threshold.
	PolicySticky Policy = "sticky"
	// PolicyOverwrite sets completed from the latest attempt only.
	PolicyOverwrite Policy = "overwrite"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicySticky:
		return PolicySticky, nil
	case PolicyOverwrite:
		return PolicyOverwrite, nil
	}
	return "", fmt.Errorf("unknown part completion policy %q", s)
}

// Rules are the reward and completion settings applied by CompletePart.
type Rules struct {
	Policy        Policy
	PointsPerPart int
	AllPartsBonus int
}

func DefaultRules() Rules {
	return Rules{Policy: PolicySticky, PointsPerPart: 1, AllPartsBonus: 10}
}
