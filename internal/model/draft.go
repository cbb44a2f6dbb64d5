package model

import "strings"

// Draft is a registration as typed into the form, before normalization.
type Draft struct {
	FullName      string   `json:"fullName" validate:"required,min=2,fullname"`
	Email         string   `json:"email" validate:"required,email"`
	Company       string   `json:"company" validate:"required,min=2,company"`
	Position      string   `json:"position" validate:"omitempty,company"`
	Phone         string   `json:"phone" validate:"required,phone"`
	Country       string   `json:"country" validate:"required,country"`
	Interests     []string `json:"interests" validate:"required,min=1,dive,interest"`
	OtherInterest string   `json:"otherInterest"`
}

// Trimmed returns a copy with surrounding whitespace removed from every text field.
func (d Draft) Trimmed() Draft {
	out := Draft{
		FullName:      strings.TrimSpace(d.FullName),
		Email:         strings.TrimSpace(d.Email),
		Company:       strings.TrimSpace(d.Company),
		Position:      strings.TrimSpace(d.Position),
		Phone:         strings.TrimSpace(d.Phone),
		Country:       strings.TrimSpace(d.Country),
		OtherInterest: strings.TrimSpace(d.OtherInterest),
	}
	if d.Interests != nil {
		out.Interests = make([]string, 0, len(d.Interests))
		for _, tag := range d.Interests {
			out.Interests = append(out.Interests, strings.TrimSpace(tag))
		}
	}
	return out
}

// HasOther reports whether the "other" sentinel is among the selected interests.
func (d Draft) HasOther() bool {
	for _, tag := range d.Interests {
		if strings.EqualFold(strings.TrimSpace(tag), OtherInterest) {
			return true
		}
	}
	return false
}

// NormalizeEmail is the stored and compared form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DraftFields lists the form fields in display order, by their JSON names.
var DraftFields = []string{
	"fullName", "email", "company", "position", "phone", "country", "interests", "otherInterest",
}

// SignupDraft is the account sign-up form.
type SignupDraft struct {
	FullName        string `json:"fullName" validate:"required,min=2,fullname"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}
