package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("missing %s", "userId"), http.StatusBadRequest},
		{"not found", NotFound("Usuario no encontrado"), http.StatusNotFound},
		{"forbidden", Forbidden("locked"), http.StatusForbidden},
		{"conflict", Conflict("taken"), http.StatusConflict},
		{"unauthorized", Unauthorized("bad credentials"), http.StatusUnauthorized},
		{"internal", Internal("db", errors.New("boom")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("complete part: %w", NotFound("x")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Fatalf("got %d want %d", got, tt.want)
			}
		})
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Forbidden("Esta parte aún no está desbloqueada"))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected errors.Is to match forbidden kind")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("forbidden error must not match not found")
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internal("No se pudo guardar el progreso", errors.New("pq: connection refused"))
	if got := Message(err); got != "No se pudo guardar el progreso" {
		t.Fatalf("got %q", got)
	}
	if got := Message(errors.New("raw")); got != "Error interno del servidor" {
		t.Fatalf("got %q", got)
	}
}
