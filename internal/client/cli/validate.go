package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authdesk/internal/common"
)

// requireField rejects blank input for a mandatory form field.
func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: %w", name, common.ErrEmptyField)
	}
	return nil
}

func validateEmail(email string) error {
	if err := requireField("email", email); err != nil {
		return err
	}
	if !strings.Contains(email, "@") {
		return common.ErrInvalidEmailFormat
	}
	return nil
}

// validateNewPassword checks a password chosen by the user against its
// confirmation and the minimum length, in that order.
func validateNewPassword(password, confirm []byte) error {
	if !bytes.Equal(password, confirm) {
		return common.ErrPasswordMismatch
	}
	if len(password) < common.MinPasswordLength {
		return common.ErrPasswordTooShort
	}
	return nil
}
