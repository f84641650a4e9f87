// Package contact builds the deep links the app opens to reach a
// professional outside the in-app chat.
package contact

import (
	"net/url"
	"strings"
	"unicode"

	"churrasco/internal/domain"
)

const defaultCountryCode = "55"

// Links holds the external contact targets of a profile. Empty fields mean
// the profile lacks the data for that channel.
type Links struct {
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	WhatsApp    string `json:"whatsapp,omitempty"`
	WhatsAppWeb string `json:"whatsapp_web,omitempty"`
}

// NormalizePhone keeps the digits of a phone number and prefixes the
// Brazilian country code to national numbers (10 or 11 digits).
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if n := len(digits); n == 10 || n == 11 {
		return defaultCountryCode + digits
	}
	return digits
}

// BuildLinks renders the tel, mailto and WhatsApp targets for u. message
// prefills the WhatsApp text and the mail subject.
func BuildLinks(u *domain.User, message string) Links {
	var out Links
	if u == nil {
		return out
	}

	if phone := NormalizePhone(u.Phone); phone != "" {
		out.Phone = "tel:+" + phone
	}

	if email := strings.TrimSpace(u.Email); email != "" {
		subject := message
		if subject == "" {
			subject = "Contato via Churrasco"
		}
		out.Email = "mailto:" + email + "?subject=" + escapeText(subject)
	}

	if wa := NormalizePhone(u.ContactPhone()); wa != "" {
		text := escapeText(message)
		out.WhatsApp = "whatsapp://send?phone=" + wa + "&text=" + text
		out.WhatsAppWeb = "https://wa.me/" + wa + "?text=" + text
	}
	return out
}

// escapeText percent-encodes a query value with spaces as %20. Mail and
// WhatsApp clients show a literal "+" otherwise.
func escapeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
