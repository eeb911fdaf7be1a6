package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authdesk/internal/client/models"
	"github.com/dmitrijs2005/authdesk/internal/common"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getConfirmation = GetConfirmation
)

// Register prompts for email, username and a confirmed password, checks them
// locally and creates the account. The session signs in right after.
//
// Both password copies are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return a.fail(err)
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	if err := requireField("username", username); err != nil {
		return a.fail(err)
	}

	password, confirm, err := a.readNewPassword("Enter password", "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	defer common.WipeByteArray(confirm)

	if err := validateNewPassword(password, confirm); err != nil {
		return a.fail(err)
	}

	if err := a.session.Register(ctx, email, username, string(password)); err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.out, "Registration successful!")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return a.fail(err)
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := requireField("password", string(password)); err != nil {
		return a.fail(err)
	}

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		return a.fail(err)
	}
	return nil
}

// SetupAdmin creates the first admin account. The API refuses once an admin
// exists.
func (a *App) SetupAdmin(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter admin email", a.out)
	if err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return a.fail(err)
	}

	username, err := getSimpleText(a.reader, "Enter admin username", a.out)
	if err != nil {
		return err
	}
	if err := requireField("username", username); err != nil {
		return a.fail(err)
	}

	password, confirm, err := a.readNewPassword("Enter admin password", "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	defer common.WipeByteArray(confirm)

	if err := validateNewPassword(password, confirm); err != nil {
		return a.fail(err)
	}

	reg := models.Registration{Email: email, Username: username, Password: string(password)}

	first, err := getSimpleText(a.reader, "First name (optional)", a.out)
	if err != nil {
		return err
	}
	if first != "" {
		reg.FirstName = models.Ptr(first)
	}
	last, err := getSimpleText(a.reader, "Last name (optional)", a.out)
	if err != nil {
		return err
	}
	if last != "" {
		reg.LastName = models.Ptr(last)
	}

	msg, err := a.admin.SetupAdmin(ctx, reg)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.out, msg)
	fmt.Fprintln(a.out, "You can now log in with the admin account.")
	return nil
}

// Logout ends the session. It cannot fail.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	return nil
}

// readNewPassword asks for a password twice. On error nothing needs wiping.
func (a *App) readNewPassword(prompt, confirmPrompt string) (password, confirm []byte, err error) {
	password, err = getPassword(a.reader, prompt, a.out)
	if err != nil {
		return nil, nil, err
	}
	confirm, err = getPassword(a.reader, confirmPrompt, a.out)
	if err != nil {
		common.WipeByteArray(password)
		return nil, nil, err
	}
	return password, confirm, nil
}
