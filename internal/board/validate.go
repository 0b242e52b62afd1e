package board

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tavla/internal/models"
)

// prioPattern rejects negative and decimal input at the form layer even
// though the document tolerates arbitrary floats in hand-edited files.
var prioPattern = regexp.MustCompile(`^[0-9]*$`)

// CardForm carries the raw field values of a create/edit submission.
// Prio stays a string here so validation sees exactly what the user
// typed before any numeric parsing happens.
type CardForm struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Prio        string   `json:"prio"`
	Category    string   `json:"category"`
	AssignedTo  string   `json:"assignedTo"`
	Description string   `json:"description"`
	Details     string   `json:"details"`
	References  []string `json:"references"`
}

// Validate checks the form against the card schema. It is pure and
// idempotent; the returned error joins one message per violated field.
func (f CardForm) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	f.Prio = strings.TrimSpace(f.Prio)

	return validation.ValidateStruct(&f,
		validation.Field(&f.Title,
			validation.Required.Error("must not be empty")),
		validation.Field(&f.Type,
			validation.In(models.TypeBug, models.TypeEmergency).Error("must be empty, \"bug\" or \"emergency\"")),
		validation.Field(&f.Prio,
			validation.Match(prioPattern).Error("must contain digits only")),
	)
}
