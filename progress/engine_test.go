package progress

import (
	"errors"
	"testing"
	"time"

	"ingresosgo/apperr"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestConfigFor(t *testing.T) {
	tests := []struct {
		subject   string
		perPart   int
		timeLimit bool
	}{
		{"Matemáticas", 12, false},
		{"Historia y Geografía", 20, true},
		{"Castellano y Guaraní", 20, false},
		{"Legislación", 20, true},
		{"Astronomía", 20, true},
	}
	for _, tc := range tests {
		t.Run(tc.subject, func(t *testing.T) {
			cfg := ConfigFor(tc.subject)
			if cfg.QuestionsPerPart != tc.perPart {
				t.Fatalf("questionsPerPart got %d want %d", cfg.QuestionsPerPart, tc.perPart)
			}
			if cfg.HasTimeLimit != tc.timeLimit {
				t.Fatalf("hasTimeLimit got %v want %v", cfg.HasTimeLimit, tc.timeLimit)
			}
			if cfg.UnlockThreshold != 0.7 {
				t.Fatalf("threshold got %v", cfg.UnlockThreshold)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(""); err != nil || p != PolicySticky {
		t.Fatalf("empty policy got %q, %v", p, err)
	}
	if p, err := ParsePolicy("Overwrite"); err != nil || p != PolicyOverwrite {
		t.Fatalf("overwrite policy got %q, %v", p, err)
	}
	if _, err := ParsePolicy("random"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestQuestionsForPartPartitionsBank(t *testing.T) {
	for _, bank := range []int{1, 11, 12, 13, 240, 245} {
		cfg := ConfigFor("Matemáticas")
		all := make([]int, bank)
		for i := range all {
			all[i] = i
		}
		total := TotalParts(bank, cfg)
		seen := 0
		for n := 1; n <= total; n++ {
			part := QuestionsForPart(all, n, cfg)
			for i, q := range part {
				if q != seen+i {
					t.Fatalf("bank %d part %d: got question %d at %d, want %d", bank, n, q, i, seen+i)
				}
			}
			if len(part) != PartSize(n, bank, cfg) {
				t.Fatalf("bank %d part %d: len %d, PartSize %d", bank, n, len(part), PartSize(n, bank, cfg))
			}
			if n == total {
				if want := bank - (total-1)*cfg.QuestionsPerPart; len(part) != want {
					t.Fatalf("bank %d last part len %d want %d", bank, len(part), want)
				}
			}
			seen += len(part)
		}
		if seen != bank {
			t.Fatalf("bank %d: partitioned %d questions", bank, seen)
		}
		if extra := QuestionsForPart(all, total+1, cfg); len(extra) != 0 {
			t.Fatalf("bank %d: part past the end returned %d questions", bank, len(extra))
		}
	}
}

func TestPartsInfo(t *testing.T) {
	cfg := ConfigFor("Matemáticas")
	rec := NewRecord("u1", "Matemáticas", "normal")
	infos := PartsInfo(rec, cfg, 30)
	if len(infos) != 3 {
		t.Fatalf("got %d parts want 3", len(infos))
	}
	if !infos[0].Unlocked || infos[1].Unlocked || infos[2].Unlocked {
		t.Fatalf("only part 1 should be unlocked: %+v", infos)
	}
	if infos[1].QuestionsRange != "13-24" || infos[2].QuestionsRange != "25-30" {
		t.Fatalf("ranges got %q %q", infos[1].QuestionsRange, infos[2].QuestionsRange)
	}
	if infos[2].TotalQuestions != 6 || infos[2].Title != "Parte 3" || infos[2].PartKey != "parte3" {
		t.Fatalf("last part got %+v", infos[2])
	}
}

func TestCompletePartMathScenario(t *testing.T) {
	cfg := ConfigFor("Matemáticas")
	rec := NewRecord("u1", "Matemáticas", "normal")

	res, err := CompletePart(rec, Completion{PartNumber: 1, Score: 9, TotalQuestions: 12, BankSize: 240}, cfg, DefaultRules(), testNow)
	if err != nil {
		t.Fatalf("CompletePart: %v", err)
	}
	if res.TotalParts != 20 {
		t.Fatalf("totalParts got %d want 20", res.TotalParts)
	}
	if !res.PartCompleted || !res.NextPartUnlocked {
		t.Fatalf("expected completion and unlock, got %+v", res)
	}
	if res.Accuracy != 75 || res.Attempts != 1 || res.BestScore != 9 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.PointsEarned != 1 || res.CompletedParts != 1 || res.AllPartsCompleted {
		t.Fatalf("unexpected reward fields %+v", res)
	}
	if !rec.Parts["parte1"].Completed || !rec.Parts["parte2"].Unlocked {
		t.Fatalf("record not updated: %+v", rec.Parts)
	}
	if rec.Parts["parte1"].CompletedAt == nil || !rec.Parts["parte1"].CompletedAt.Equal(testNow) {
		t.Fatalf("completedAt not stamped: %+v", rec.Parts["parte1"])
	}
}

func TestCompletePartThresholdBoundary(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		total     int
		completed bool
	}{
		{"exactly 70 percent of 10", 7, 10, true},
		{"exactly 70 percent of 20", 14, 20, true},
		{"just below", 13, 20, false},
		{"perfect", 20, 20, true},
		{"zero", 0, 20, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := NewRecord("u1", "Legislación", "normal")
			res, err := CompletePart(rec, Completion{PartNumber: 1, Score: tc.score, TotalQuestions: tc.total, BankSize: 100}, ConfigFor("Legislación"), DefaultRules(), testNow)
			if err != nil {
				t.Fatalf("CompletePart: %v", err)
			}
			if res.PartCompleted != tc.completed {
				t.Fatalf("completed got %v want %v", res.PartCompleted, tc.completed)
			}
			if rec.Parts["parte2"].Unlocked != tc.completed {
				t.Fatalf("next unlocked got %v want %v", rec.Parts["parte2"].Unlocked, tc.completed)
			}
		})
	}
}

func TestCompletePartStickyRetake(t *testing.T) {
	cfg := ConfigFor("Legislación")
	rec := NewRecord("u1", "Legislación", "normal")
	rules := DefaultRules()

	if _, err := CompletePart(rec, Completion{PartNumber: 1, Score: 18, TotalQuestions: 20, BankSize: 60}, cfg, rules, testNow); err != nil {
		t.Fatal(err)
	}
	res, err := CompletePart(rec, Completion{PartNumber: 1, Score: 3, TotalQuestions: 20, BankSize: 60}, cfg, rules, testNow.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !res.PartCompleted {
		t.Fatal("sticky policy must keep the part completed")
	}
	if res.PointsEarned != 0 {
		t.Fatalf("retake earned %d points", res.PointsEarned)
	}
	part := rec.Parts["parte1"]
	if part.Score != 3 || part.BestScore != 18 || part.Attempts != 2 {
		t.Fatalf("part state got %+v", part)
	}
	if !part.CompletedAt.Equal(testNow) {
		t.Fatalf("completedAt moved to %v", part.CompletedAt)
	}
	if !rec.Parts["parte2"].Unlocked {
		t.Fatal("next part was relocked")
	}
}

func TestCompletePartOverwriteRetake(t *testing.T) {
	cfg := ConfigFor("Legislación")
	rec := NewRecord("u1", "Legislación", "normal")
	rules := DefaultRules()
	rules.Policy = PolicyOverwrite

	if _, err := CompletePart(rec, Completion{PartNumber: 1, Score: 18, TotalQuestions: 20, BankSize: 60}, cfg, rules, testNow); err != nil {
		t.Fatal(err)
	}
	res, err := CompletePart(rec, Completion{PartNumber: 1, Score: 3, TotalQuestions: 20, BankSize: 60}, cfg, rules, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.PartCompleted {
		t.Fatal("overwrite policy takes the latest attempt")
	}
	if !rec.Parts["parte2"].Unlocked {
		t.Fatal("next part must stay unlocked under either policy")
	}
	res, err = CompletePart(rec, Completion{PartNumber: 1, Score: 20, TotalQuestions: 20, BankSize: 60}, cfg, rules, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !res.PartCompleted || res.PointsEarned != 0 {
		t.Fatalf("re-completion should not pay again: %+v", res)
	}
}

func TestCompletePartAllPartsBonus(t *testing.T) {
	cfg := ConfigFor("Matemáticas")
	rec := NewRecord("u1", "Matemáticas", "normal")
	rules := DefaultRules()
	total := 0
	for n := 1; n <= 3; n++ {
		res, err := CompletePart(rec, Completion{PartNumber: n, Score: 12, TotalQuestions: 12, BankSize: 36}, cfg, rules, testNow)
		if err != nil {
			t.Fatalf("part %d: %v", n, err)
		}
		total += res.PointsEarned
		if n == 3 {
			if !res.AllPartsCompleted || res.NextPartUnlocked {
				t.Fatalf("last part result %+v", res)
			}
			if res.PointsEarned != rules.PointsPerPart+rules.AllPartsBonus {
				t.Fatalf("last part points got %d", res.PointsEarned)
			}
		}
	}
	if total != 3*rules.PointsPerPart+rules.AllPartsBonus {
		t.Fatalf("total points %d", total)
	}
	res, err := CompletePart(rec, Completion{PartNumber: 3, Score: 12, TotalQuestions: 12, BankSize: 36}, cfg, rules, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.PointsEarned != 0 {
		t.Fatalf("bonus paid twice: %+v", res)
	}
}

func TestCompletePartRejects(t *testing.T) {
	cfg := ConfigFor("Matemáticas")
	tests := []struct {
		name string
		c    Completion
		want error
	}{
		{"locked part", Completion{PartNumber: 2, Score: 10, TotalQuestions: 12, BankSize: 240}, apperr.ErrForbidden},
		{"part out of range", Completion{PartNumber: 21, Score: 10, TotalQuestions: 12, BankSize: 240}, apperr.ErrValidation},
		{"zero part", Completion{PartNumber: 0, Score: 10, TotalQuestions: 12, BankSize: 240}, apperr.ErrValidation},
		{"zero total", Completion{PartNumber: 1, Score: 0, TotalQuestions: 0, BankSize: 240}, apperr.ErrValidation},
		{"score above total", Completion{PartNumber: 1, Score: 13, TotalQuestions: 12, BankSize: 240}, apperr.ErrValidation},
		{"negative score", Completion{PartNumber: 1, Score: -1, TotalQuestions: 12, BankSize: 240}, apperr.ErrValidation},
		{"empty bank", Completion{PartNumber: 1, Score: 1, TotalQuestions: 12, BankSize: 0}, apperr.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := NewRecord("u1", "Matemáticas", "normal")
			_, err := CompletePart(rec, tc.c, cfg, DefaultRules(), testNow)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
			if rec.Parts["parte1"].Attempts != 0 {
				t.Fatal("rejected attempt mutated the record")
			}
		})
	}
}

func TestCompletePartRepairsMissingFirstPart(t *testing.T) {
	rec := NewRecord("u1", "Matemáticas", "normal")
	rec.Parts = nil
	if _, err := CompletePart(rec, Completion{PartNumber: 1, Score: 5, TotalQuestions: 12, BankSize: 24}, ConfigFor("Matemáticas"), DefaultRules(), testNow); err != nil {
		t.Fatalf("CompletePart: %v", err)
	}
	if p := rec.Parts["parte1"]; !p.Unlocked || p.Attempts != 1 {
		t.Fatalf("parte1 got %+v", p)
	}
}
