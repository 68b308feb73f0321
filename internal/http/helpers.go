package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gastos/internal/core"
)

// formValue returns a trimmed, sanitized form field.
func formValue(r *http.Request, name string) string {
	return sanitizeInput(r.FormValue(name))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func urlQueryEscape(s string) string {
	return url.QueryEscape(s)
}

// safeReturnPath keeps post-login redirects on this site: only rooted paths
// are honored, anything else falls back to the expense list.
func safeReturnPath(from string) string {
	if strings.HasPrefix(from, "/") && !strings.HasPrefix(from, "//") && !strings.Contains(from, "\\") {
		return from
	}
	return "/despesas"
}

// displayMessage maps validation sentinels to the Portuguese strings shown
// in alert banners. Backend errors already arrive display-ready.
func displayMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Informe um valor válido"
	case errors.Is(err, core.ErrInvalidDate):
		return "Informe uma data válida"
	case errors.Is(err, core.ErrInvalidPartner):
		return "Pagador inválido"
	case errors.Is(err, core.ErrMissingReceipt):
		return "Anexe o comprovante da despesa"
	case errors.Is(err, core.ErrInvalidRule):
		return "Regra de divisão inválida"
	case errors.Is(err, core.ErrNotWednesday):
		return "A semana fecha sempre numa quarta-feira"
	default:
		return err.Error()
	}
}
