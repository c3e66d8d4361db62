package ez

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators installs the isodate and hhmm binding tags on gin's
// validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("isodate", isoDate)
		_ = v.RegisterValidation("hhmm", clock)
	})
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func clock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if _, err := time.Parse("15:04", s); err == nil {
		return true
	}
	_, err := time.Parse("15:04:05", s)
	return err == nil
}

var tagHints = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"isodate":  "must use the YYYY-MM-DD format",
	"hhmm":     "must use the HH:MM format",
	"oneof":    "must be one of",
	"min":      "must be at least",
	"max":      "must be at most",
	"gte":      "must be at least",
}

// bindMessage turns binding failures into a short client-facing message.
func bindMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "malformed request: " + err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		hint, ok := tagHints[fe.Tag()]
		if !ok {
			hint = "is invalid"
		}
		if fe.Param() != "" {
			hint += " " + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s %s", toSnake(fe.Field()), hint))
	}
	return strings.Join(parts, "; ")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
