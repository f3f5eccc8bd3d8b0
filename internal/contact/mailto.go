package contact

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// BuildMailto composes the URI handed to the visitor's mail client. The
// result depends only on its inputs.
func BuildMailto(recipient string, f FormState) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", ErrNoRecipient
	}
	subject, err := encodeComponent("New message from " + f.Name)
	if err != nil {
		return "", fmt.Errorf("encode subject: %w", err)
	}
	body, err := encodeComponent("Name: " + f.Name + "\nEmail: " + f.Email + "\n\nMessage:\n" + f.Message)
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	return "mailto:" + recipient + "?subject=" + subject + "&body=" + body, nil
}

// encodeComponent percent-encodes s like JavaScript's encodeURIComponent.
func encodeComponent(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", errors.New("text is not valid UTF-8")
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String(), nil
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
