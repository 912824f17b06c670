package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"ingresosgo/models"
	"ingresosgo/questions"
)

// Entries this short, or short ones ending in ':', are usually a statement
// whose expression got lost in the import.
const (
	minQuestionLen = 20
	minHeadingLen  = 30
)

func main() {
	_ = godotenv.Load()
	dir := os.Getenv("QUESTIONS_DIR")
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if dir == "" {
		dir = "./data"
	}

	exitCode := 0
	for _, src := range questions.DefaultSources() {
		for _, f := range []struct{ name, examType string }{
			{src.Normal, models.ExamTypeNormal},
			{src.General, models.ExamTypeGeneral},
		} {
			if f.name == "" {
				continue
			}
			if !lintFile(filepath.Join(dir, f.name), src, f.examType) {
				exitCode = 1
			}
		}
	}
	os.Exit(exitCode)
}

// lintFile reports every entry the catalog would skip or that looks truncated.
// It returns false when the file is missing, unreadable or has invalid entries.
func lintFile(path string, src questions.Source, examType string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("%s: open error: %v\n", path, err)
		return false
	}
	raws, err := questions.DecodeFile(data)
	if err != nil {
		fmt.Printf("%s: %v\n", path, err)
		return false
	}

	bad, suspicious := 0, 0
	for i, raw := range raws {
		q, err := questions.Normalize(raw, src, examType, i+1)
		if err != nil {
			fmt.Printf("%s:%d: %v\n", path, i+1, err)
			bad++
			continue
		}
		if len(q.Question) < minQuestionLen || (strings.HasSuffix(q.Question, ":") && len(q.Question) < minHeadingLen) {
			fmt.Printf("%s:%d: warning: question looks truncated: %q\n", path, i+1, q.Question)
			suspicious++
		}
	}
	if bad == 0 && suspicious == 0 {
		fmt.Printf("%s: OK (%d questions)\n", path, len(raws))
	} else {
		fmt.Printf("%s: %d invalid, %d suspicious of %d\n", path, bad, suspicious, len(raws))
	}
	return bad == 0
}
