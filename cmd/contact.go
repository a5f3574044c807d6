package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
	"github.com/urfave/cli/v3"
)

// ContactSend validates and submits an inquiry.
func (r *Runner) ContactSend(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	inquiry := models.Inquiry{
		Name:     strings.TrimSpace(cmd.String("name")),
		Email:    strings.TrimSpace(cmd.String("email")),
		Phone:    strings.TrimSpace(cmd.String("phone")),
		Message:  strings.TrimSpace(cmd.String("message")),
		ChaletID: strings.TrimSpace(cmd.String("chalet")),
	}
	if err := inquiry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	r.logger.Info("sending inquiry", "email", inquiry.Email, "chalet", inquiry.ChaletID)

	result, err := r.backend.SendInquiry(ctx, inquiry)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "inquiry was not accepted"
		}
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)
	}

	msg := result.Message
	if msg == "" {
		msg = "Message sent"
	}
	return r.writePlain("✓ %s\n", msg)
}
