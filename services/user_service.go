// services/user_service.go - players, credentials and login streaks
package services

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ingresosgo/apperr"
	"ingresosgo/models"
	"ingresosgo/scoring"
	"ingresosgo/store"
	"ingresosgo/utils"
)

const (
	defaultAvatar          = "👤"
	defaultGender          = "other"
	minPlayerPassword      = 4
	minCustomPassword      = 6
	generatedPasswordChars = 8
	usernameAttempts       = 5
)

type UserService struct {
	deps Deps
}

func NewUserService(d Deps) *UserService {
	return &UserService{deps: d}
}

func (s *UserService) hash(password string) (string, error) {
	cost := s.deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", apperr.Internal("Error procesando la contraseña", err)
	}
	return string(h), nil
}

func checkPassword(u *models.User, password string) bool {
	if !u.HasPassword() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) == nil
}

// newPlayer returns a user with the starting aggregate: streak 1, free
// subject choice, no points.
func (s *UserService) newPlayer(username, name, avatar, gender string) *models.User {
	if avatar == "" {
		avatar = defaultAvatar
	}
	if gender == "" {
		gender = defaultGender
	}
	now := s.deps.now()
	return &models.User{
		ID:               uuid.NewString(),
		Username:         username,
		Name:             strings.TrimSpace(name),
		Avatar:           avatar,
		Gender:           gender,
		LoginStreak:      1,
		LastLogin:        now,
		SubjectScores:    map[string]models.SubjectScore{},
		Badges:           []models.UnlockedBadge{},
		CanChooseSubject: true, // new players may pick a subject before earning daily points
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Gender   string `json:"gender"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("Faltan campos requeridos: username, password, name")
	}
	if len(in.Password) < minPlayerPassword {
		return nil, apperr.Validation("La contraseña debe tener al menos %d caracteres", minPlayerPassword)
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := s.newPlayer(username, in.Name, in.Avatar, in.Gender)
	u.PasswordHash = &hash
	err = s.deps.Store.Update(ctx, []string{store.UsernameKey(username)}, func(tx *store.Tx) error {
		return tx.CreateUser(u)
	})
	if err != nil {
		return nil, err
	}
	s.deps.publishPoints(ctx, u)
	return u, nil
}

// Login checks the password and applies the login streak rule.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperr.Validation("Faltan campos requeridos: username, password")
	}
	var u *models.User
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		u, err = tx.UserByUsername(username)
		return err
	})
	if err != nil {
		return nil, err
	}
	if u == nil || !checkPassword(u, password) {
		return nil, apperr.Unauthorized("Credenciales incorrectas")
	}
	u, _, err = s.CheckLogin(ctx, u.ID)
	return u, err
}

// AdminLogin authenticates a user that carries the admin flag.
func (s *UserService) AdminLogin(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperr.Validation("Se requieren usuario y contraseña")
	}
	var u *models.User
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		u, err = tx.UserByUsername(username)
		return err
	})
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsAdmin || !checkPassword(u, password) {
		return nil, apperr.Unauthorized("Credenciales inválidas")
	}
	return u, nil
}

// EnsureAdmin creates the configured administrator when it does not exist yet.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	created := false
	err = s.deps.Store.Update(ctx, []string{store.UsernameKey(username)}, func(tx *store.Tx) error {
		existing, err := tx.UserByUsername(username)
		if err != nil || existing != nil {
			return err
		}
		u := s.newPlayer(username, "Administrador", "", "")
		u.PasswordHash = &hash
		u.IsAdmin = true
		created = true
		return tx.CreateUser(u)
	})
	if created && err == nil {
		log.Printf("👤 Admin user %q created", username)
	}
	return err
}

func (s *UserService) Exists(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, apperr.Validation("Se requiere el nombre de usuario")
	}
	var taken bool
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		taken, err = tx.UsernameTaken(username)
		return err
	})
	return taken, err
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var u *models.User
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		u, err = tx.User(id)
		return err
	})
	return u, err
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		users, err = tx.Users()
		return err
	})
	return users, err
}

func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("Se requieren las contraseñas actual y nueva")
	}
	if len(next) < minPlayerPassword {
		return apperr.Validation("La nueva contraseña debe tener al menos %d caracteres", minPlayerPassword)
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	return s.deps.Store.Update(ctx, []string{store.UserKey(id)}, func(tx *store.Tx) error {
		u, err := tx.User(id)
		if err != nil {
			return err
		}
		if !checkPassword(u, current) {
			return apperr.Unauthorized("Contraseña actual incorrecta")
		}
		u.PasswordHash = &hash
		u.UpdatedAt = s.deps.now()
		return tx.SaveUser(u)
	})
}

// CheckLogin applies the streak rule for a login happening now.
func (s *UserService) CheckLogin(ctx context.Context, id string) (*models.User, scoring.LoginChange, error) {
	var (
		u      *models.User
		change scoring.LoginChange
	)
	err := s.deps.Store.Update(ctx, []string{store.UserKey(id)}, func(tx *store.Tx) error {
		var err error
		if u, err = tx.User(id); err != nil {
			return err
		}
		now := s.deps.now()
		change = scoring.ApplyLogin(u, now, s.deps.Scoring)
		u.UpdatedAt = now
		return tx.SaveUser(u)
	})
	if err != nil {
		return nil, "", err
	}
	return u, change, nil
}

type QuizScoreInput struct {
	Subject        string `json:"subject"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalQuestions int    `json:"totalQuestions"`
}

// RecordQuizScore folds an externally graded quiz into the user's aggregate.
func (s *UserService) RecordQuizScore(ctx context.Context, id string, in QuizScoreInput) (*models.User, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, apperr.Validation("Se requiere especificar la materia (subject)")
	}
	if in.Score < 0 || in.CorrectAnswers < 0 {
		return nil, apperr.Validation("La puntuación no puede ser negativa")
	}
	var u *models.User
	err := s.deps.Store.Update(ctx, []string{store.UserKey(id)}, func(tx *store.Tx) error {
		var err error
		if u, err = tx.User(id); err != nil {
			return err
		}
		scoring.RecordSubjectResult(u, in.Subject, in.Score, in.CorrectAnswers)
		scoring.AwardPoints(u, in.Score)
		scoring.RefreshFlags(u, s.deps.Scoring)
		u.UpdatedAt = s.deps.now()
		return tx.SaveUser(u)
	})
	if err != nil {
		return nil, err
	}
	s.deps.publishPoints(ctx, u)
	return u, nil
}

type CreateUserInput struct {
	Name               string `json:"name"`
	Avatar             string `json:"avatar"`
	Gender             string `json:"gender"`
	Email              string `json:"email"`
	Username           string `json:"username"`
	CanTakeGeneralExam bool   `json:"canTakeGeneralExam"`
	PasswordOption     string `json:"passwordOption"`
	CustomPassword     string `json:"customPassword"`
}

type CreatedUser struct {
	*models.User
	PlainPassword   *string `json:"plainPassword"`
	DisplayUsername string  `json:"displayUsername"`
}

// CreateUser is the admin path. Without a password option the player has no
// credentials and identifies with its id only.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*CreatedUser, error) {
	if strings.TrimSpace(in.Name) == "" || in.Avatar == "" {
		return nil, apperr.Validation("Faltan campos requeridos: name, avatar")
	}

	var plain *string
	switch in.PasswordOption {
	case "":
	case "auto":
		p := utils.GeneratePassword(generatedPasswordChars)
		plain = &p
	case "custom":
		if len(in.CustomPassword) < minCustomPassword {
			return nil, apperr.Validation("La contraseña personalizada debe tener al menos %d caracteres", minCustomPassword)
		}
		p := in.CustomPassword
		plain = &p
	default:
		return nil, apperr.Validation(`passwordOption debe ser "auto" o "custom"`)
	}

	var hash *string
	if plain != nil {
		h, err := s.hash(*plain)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	username := strings.TrimSpace(in.Username)
	explicit := username != ""
	for attempt := 0; ; attempt++ {
		if !explicit {
			username = utils.GenerateUsername(in.Name)
		}
		u := s.newPlayer(username, in.Name, in.Avatar, in.Gender)
		u.Email = in.Email
		u.PasswordHash = hash
		u.CanTakeGeneralExam = in.CanTakeGeneralExam

		err := s.deps.Store.Update(ctx, []string{store.UsernameKey(username)}, func(tx *store.Tx) error {
			return tx.CreateUser(u)
		})
		switch {
		case err == nil:
			s.deps.publishPoints(ctx, u)
			return &CreatedUser{User: u, PlainPassword: plain, DisplayUsername: username}, nil
		case apperr.KindOf(err) != apperr.KindConflict:
			return nil, err
		case explicit || attempt+1 >= usernameAttempts:
			return nil, apperr.Validation("El username ya existe")
		}
	}
}

type UserUpdate struct {
	Name               *string `json:"name"`
	Username           *string `json:"username"`
	Avatar             *string `json:"avatar"`
	Gender             *string `json:"gender"`
	Email              *string `json:"email"`
	HasVipAccess       *bool   `json:"hasVipAccess"`
	CanTakeGeneralExam *bool   `json:"canTakeGeneralExam"`
	IsAdmin            *bool   `json:"isAdmin"`
}

// Update applies the set fields. Points and streaks are not editable.
func (s *UserService) Update(ctx context.Context, id string, in UserUpdate) (*models.User, error) {
	var u *models.User
	err := s.deps.Store.Update(ctx, []string{store.UserKey(id)}, func(tx *store.Tx) error {
		var err error
		if u, err = tx.User(id); err != nil {
			return err
		}
		if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
			u.Name = strings.TrimSpace(*in.Name)
		}
		if in.Username != nil && strings.TrimSpace(*in.Username) != "" {
			u.Username = strings.TrimSpace(*in.Username)
		}
		if in.Avatar != nil {
			u.Avatar = *in.Avatar
		}
		if in.Gender != nil {
			u.Gender = *in.Gender
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if in.IsAdmin != nil {
			u.IsAdmin = *in.IsAdmin
		}
		if in.HasVipAccess != nil {
			u.HasVipAccess = *in.HasVipAccess
		}
		scoring.RefreshFlags(u, s.deps.Scoring)
		if in.CanTakeGeneralExam != nil && *in.CanTakeGeneralExam {
			u.CanTakeGeneralExam = true
		}
		u.UpdatedAt = s.deps.now()
		return tx.SaveUser(u)
	})
	return u, err
}

// Delete removes the user with everything recorded for them.
func (s *UserService) Delete(ctx context.Context, id string) (*models.User, error) {
	var u *models.User
	err := s.deps.Store.Update(ctx, []string{store.UserKey(id)}, func(tx *store.Tx) error {
		var err error
		if u, err = tx.User(id); err != nil {
			return err
		}
		_, err = tx.DeleteUser(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.deps.Board == nil {
		return u, nil
	}
	if err := s.deps.Board.Remove(ctx, id); err != nil {
		log.Printf("⚠️  ranking cache remove failed for %s: %v", id, err)
	}
	return u, nil
}
