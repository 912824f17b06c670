package services

import (
	"context"
	"math/rand/v2"
	"testing"

	"ingresosgo/apperr"
	"ingresosgo/questions"
)

func TestGenerateQuiz(t *testing.T) {
	d, _ := newTestDeps(t)
	s := NewQuizService(d)
	s.newRand = func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

	five := 5
	quiz, err := s.Generate(context.Background(), GenerateQuizInput{Subject: "matemáticas", QuestionCount: &five})
	if err != nil {
		t.Fatal(err)
	}
	if quiz.TotalQuestions != 5 || len(quiz.Questions) != 5 {
		t.Fatalf("got %d questions", len(quiz.Questions))
	}

	_, err = s.Generate(context.Background(), GenerateQuizInput{Subject: "Física"})
	wantKind(t, err, apperr.KindNotFound)
	_, err = s.Generate(context.Background(), GenerateQuizInput{})
	wantKind(t, err, apperr.KindValidation)
}

func TestSubmitQuizCreditsUser(t *testing.T) {
	d, _ := newTestDeps(t)
	u := register(t, d, "ana")
	s := NewQuizService(d)
	ctx := context.Background()

	sub, err := s.Submit(ctx, SubmitQuizInput{
		UserID:  u.ID,
		QuizID:  "quiz-1",
		Subject: "Matemáticas",
		Answers: []questions.Answer{
			{QuestionID: "mat_001", SelectedAnswer: questions.Selection{Text: "A"}},
			{QuestionID: "mat_002", SelectedAnswer: questions.Selection{Index: 0, IsIdx: true}},
			{QuestionID: "mat_003", SelectedAnswer: questions.Selection{Text: "C"}},
			{QuestionID: "no_existe", SelectedAnswer: questions.Selection{Text: "A"}},
		},
		TimeSpent: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if sub.Summary.CorrectAnswers != 2 || sub.Summary.TotalQuestions != 4 || sub.Summary.Accuracy != 50 {
		t.Fatalf("summary %+v", sub.Summary)
	}
	if sub.Summary.TotalScore <= 0 {
		t.Fatalf("score %d", sub.Summary.TotalScore)
	}

	got, err := NewUserService(d).Get(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalPoints != sub.Summary.TotalScore {
		t.Fatalf("user points %d want %d", got.TotalPoints, sub.Summary.TotalScore)
	}
	if got.SubjectScores["Matemáticas"].CorrectAnswers != 2 {
		t.Fatalf("subject scores %+v", got.SubjectScores)
	}

	rs, err := s.Results(ctx, u.ID, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 1 || rs[0].QuizID != "quiz-1" {
		t.Fatalf("results %+v", rs)
	}
}

func TestSubmitQuizUnknownUser(t *testing.T) {
	d, _ := newTestDeps(t)
	_, err := NewQuizService(d).Submit(context.Background(), SubmitQuizInput{
		UserID:  "nadie",
		QuizID:  "quiz-1",
		Subject: "Matemáticas",
		Answers: []questions.Answer{},
	})
	wantKind(t, err, apperr.KindNotFound)
}
