package validator

import "strings"

type Lang string

const (
	EN Lang = "en"
	FR Lang = "fr"
)

// ParseLang picks French for any "fr" Accept-Language value, English otherwise.
func ParseLang(s string) Lang {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "fr") {
		return FR
	}
	return EN
}

type message struct {
	en, fr string
}

func (m message) in(lang Lang) string {
	if lang == FR {
		return m.fr
	}
	return m.en
}

// messages is keyed by field, then by the failing tag.
var messages = map[string]map[string]message{
	"fullName": {
		"required": {"Full name is required", "Le nom complet est requis"},
		"min":      {"Full name must be at least 2 characters", "Le nom complet doit contenir au moins 2 caractères"},
		"fullname": {"Full name may only contain letters, spaces, apostrophes and hyphens", "Le nom complet ne doit contenir que des lettres, espaces, apostrophes et tirets"},
	},
	"email": {
		"required": {"Email address is required", "L'adresse email est requise"},
		"email":    {"Email address is invalid", "Adresse email invalide"},
	},
	"company": {
		"required": {"Company is required", "L'entreprise est requise"},
		"min":      {"Company must be at least 2 characters", "L'entreprise doit contenir au moins 2 caractères"},
		"company":  {"Company contains invalid characters", "Le nom de l'entreprise contient des caractères invalides"},
	},
	"position": {
		"company": {"Position contains invalid characters", "Le poste contient des caractères invalides"},
	},
	"phone": {
		"required": {"Phone number is required", "Le numéro de téléphone est requis"},
		"phone":    {"Phone number must contain at least 10 digits", "Le numéro de téléphone doit contenir au moins 10 chiffres"},
	},
	"country": {
		"required": {"Country is required", "Le pays est requis"},
		"country":  {"Country may only contain letters", "Le pays ne doit contenir que des lettres"},
	},
	"interests": {
		"required": {"Select at least one interest", "Sélectionnez au moins un intérêt"},
		"min":      {"Select at least one interest", "Sélectionnez au moins un intérêt"},
		"interest": {"Unknown interest", "Intérêt inconnu"},
	},
	"otherInterest": {
		"required": {"Please specify your other interest", "Veuillez préciser votre autre intérêt"},
		"company":  {"Other interest contains invalid characters", "L'autre intérêt contient des caractères invalides"},
	},
	"password": {
		"required": {"Password is required", "Le mot de passe est requis"},
		"min":      {"Password must be at least 6 characters", "Le mot de passe doit contenir au moins 6 caractères"},
	},
	"confirmPassword": {
		"eqfield": {"Passwords do not match", "Les mots de passe ne correspondent pas"},
	},
}

var fallback = message{"Invalid value", "Valeur invalide"}

// Message returns the literal for a field and failing rule, or a generic one.
func Message(field, tag string, lang Lang) string {
	return messageFor(field, tag, lang)
}

func messageFor(field, tag string, lang Lang) string {
	if byTag, ok := messages[field]; ok {
		if m, ok := byTag[tag]; ok {
			return m.in(lang)
		}
	}
	return fallback.in(lang)
}
