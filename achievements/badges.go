// achievements/badges.go
package achievements

import (
	"math"
	"strconv"
	"time"

	"ingresosgo/models"
)

var rarityColors = map[string]string{
	"common":    "#8D8D8D",
	"uncommon":  "#4CAF50",
	"rare":      "#2196F3",
	"epic":      "#9C27B0",
	"legendary": "#FF6D00",
}

var rarityNames = map[string]string{
	"common":    "Común",
	"uncommon":  "Poco Común",
	"rare":      "Raro",
	"epic":      "Épico",
	"legendary": "Legendario",
}

func RarityColor(rarity string) string {
	if c, ok := rarityColors[rarity]; ok {
		return c
	}
	return rarityColors["common"]
}

func RarityName(rarity string) string {
	if n, ok := rarityNames[rarity]; ok {
		return n
	}
	return "Desconocido"
}

// SystemBadges is the built-in badge catalog.
func SystemBadges() []models.Badge {
	subject := func(id, name, subj, icon string) models.Badge {
		return models.Badge{
			ID:           id,
			Name:         name,
			Description:  "Obtén 90% de precisión en 10 quizzes de " + subj,
			Icon:         icon,
			Rarity:       "rare",
			Type:         models.BadgeTypeSubject,
			Requirements: models.BadgeRequirements{Subject: subj, Accuracy: 0.9, GamesPlayed: 10},
		}
	}
	score := func(id, name, icon, rarity string, points int) models.Badge {
		return models.Badge{
			ID:           id,
			Name:         name,
			Description:  "Alcanza " + strconv.Itoa(points) + " puntos totales",
			Icon:         icon,
			Rarity:       rarity,
			Type:         models.BadgeTypeScore,
			Requirements: models.BadgeRequirements{TotalPoints: points},
		}
	}
	return []models.Badge{
		{ID: "first_quiz", Name: "Primer Paso", Description: "Completa tu primer quiz", Icon: "🎯", Rarity: "common",
			Type: models.BadgeTypeAchievement, Requirements: models.BadgeRequirements{GamesPlayed: 1}},
		{ID: "login_streak_3", Name: "Constante", Description: "Mantén una racha de login de 3 días", Icon: "🔥", Rarity: "common",
			Type: models.BadgeTypeStreak, Requirements: models.BadgeRequirements{LoginStreak: 3}},
		{ID: "login_streak_7", Name: "Dedicado", Description: "Mantén una racha de login de 7 días", Icon: "⚡", Rarity: "uncommon",
			Type: models.BadgeTypeStreak, Requirements: models.BadgeRequirements{LoginStreak: 7}},
		subject("math_master", "Maestro Matemático", "Matemáticas", "🔢"),
		subject("language_expert", "Experto Lingüístico", "Castellano y Guaraní", "📝"),
		subject("history_scholar", "Erudito Histórico", "Historia y Geografía", "🌍"),
		subject("law_expert", "Experto Legal", "Legislación", "⚖️"),
		score("score_100", "Centurión", "💯", "common", 100),
		score("score_500", "Veterano", "🏆", "uncommon", 500),
		score("score_1000", "Campeón", "🥇", "rare", 1000),
		score("score_2500", "Leyenda", "👑", "epic", 2500),
		{ID: "perfect_quiz", Name: "Perfección", Description: "Completa un quiz con 100% de aciertos", Icon: "✨", Rarity: "uncommon",
			Type: models.BadgeTypePerformance, Requirements: models.BadgeRequirements{PerfectQuiz: true}},
		{ID: "quiz_marathon", Name: "Maratonista", Description: "Completa 50 quizzes", Icon: "🏃", Rarity: "epic",
			Type: models.BadgeTypeAchievement, Requirements: models.BadgeRequirements{GamesPlayed: 50}},
	}
}

// BadgeEarned evaluates a single badge predicate. Unknown types never unlock.
func BadgeEarned(b models.Badge, s Snapshot) bool {
	req := b.Requirements
	switch b.Type {
	case models.BadgeTypeAchievement:
		return req.GamesPlayed > 0 && s.TotalGames >= req.GamesPlayed
	case models.BadgeTypeStreak:
		return req.LoginStreak > 0 && s.LoginStreak >= req.LoginStreak
	case models.BadgeTypeSubject:
		st, ok := s.Subjects[req.Subject]
		return ok && st.GamesPlayed >= req.GamesPlayed && st.Accuracy >= req.Accuracy
	case models.BadgeTypeScore:
		return req.TotalPoints > 0 && s.TotalPoints >= req.TotalPoints
	case models.BadgeTypePerformance:
		return req.PerfectQuiz && s.HasPerfectRun
	}
	return false
}

// EvaluateBadges returns only the badges newly earned at now; badges already
// in unlocked are skipped.
func EvaluateBadges(catalog []models.Badge, unlocked []models.UnlockedBadge, s Snapshot, now time.Time) []models.UnlockedBadge {
	have := make(map[string]bool, len(unlocked))
	for _, u := range unlocked {
		have[u.BadgeID] = true
	}
	var earned []models.UnlockedBadge
	for _, b := range catalog {
		if have[b.ID] || !BadgeEarned(b, s) {
			continue
		}
		have[b.ID] = true
		earned = append(earned, models.UnlockedBadge{BadgeID: b.ID, UnlockedAt: now})
	}
	return earned
}

// BadgeView is a catalog badge decorated for one user.
type BadgeView struct {
	models.Badge
	IsUnlocked  bool       `json:"isUnlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt"`
	RarityColor string     `json:"rarityColor"`
	RarityName  string     `json:"rarityName"`
}

type BadgeStats struct {
	Total                int     `json:"total"`
	Unlocked             int     `json:"unlocked"`
	Remaining            int     `json:"remaining"`
	CompletionPercentage float64 `json:"completionPercentage"`
}

func BadgeViews(catalog []models.Badge, unlocked []models.UnlockedBadge) []BadgeView {
	at := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		at[u.BadgeID] = u.UnlockedAt
	}
	views := make([]BadgeView, 0, len(catalog))
	for _, b := range catalog {
		v := BadgeView{Badge: b, RarityColor: RarityColor(b.Rarity), RarityName: RarityName(b.Rarity)}
		if t, ok := at[b.ID]; ok {
			v.IsUnlocked = true
			v.UnlockedAt = &t
		}
		views = append(views, v)
	}
	return views
}

func GroupByRarity(views []BadgeView) map[string][]BadgeView {
	groups := make(map[string][]BadgeView)
	for _, v := range views {
		groups[v.Rarity] = append(groups[v.Rarity], v)
	}
	return groups
}

// ComputeBadgeStats counts only unlocked ids that exist in the catalog.
func ComputeBadgeStats(catalog []models.Badge, unlocked []models.UnlockedBadge) BadgeStats {
	known := make(map[string]bool, len(catalog))
	for _, b := range catalog {
		known[b.ID] = true
	}
	n := 0
	for _, u := range unlocked {
		if known[u.BadgeID] {
			n++
		}
	}
	st := BadgeStats{Total: len(catalog), Unlocked: n, Remaining: len(catalog) - n}
	if st.Total > 0 {
		st.CompletionPercentage = math.Round(float64(n)/float64(st.Total)*1000) / 10
	}
	return st
}
