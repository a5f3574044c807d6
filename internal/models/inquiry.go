package models

import (
	"fmt"
	"net/mail"
	"strings"
)

// MinInquiryMessage is the minimum message length accepted by the contact form.
const MinInquiryMessage = 10

// Inquiry is a contact form submission, optionally about a specific chalet.
type Inquiry struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Message  string `json:"message"`
	ChaletID string `json:"chaletId,omitempty"`
}

// Validate checks the inquiry fields the way the contact form does before submitting.
func (i Inquiry) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("name is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(i.Email))
	if err != nil || addr.Address != strings.TrimSpace(i.Email) || !strings.Contains(addr.Address, ".") {
		return fmt.Errorf("invalid email address: %q", i.Email)
	}
	if len([]rune(strings.TrimSpace(i.Message))) < MinInquiryMessage {
		return fmt.Errorf("message must be at least %d characters", MinInquiryMessage)
	}
	for _, r := range i.Phone {
		if (r < '0' || r > '9') && r != ' ' && r != '+' && r != '-' {
			return fmt.Errorf("invalid phone number: %q", i.Phone)
		}
	}
	return nil
}
