package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authdesk/internal/client/models"
	"github.com/dmitrijs2005/authdesk/internal/client/services"
	"github.com/dmitrijs2005/authdesk/internal/common"
)

// Status prints the session state, the session expiry when the credential
// carries one, and the API connectivity.
func (a *App) Status(ctx context.Context) error {
	state := a.session.State()
	fmt.Fprintf(a.out, "Session: %s\n", state)

	if state == services.StateAuthenticated {
		if u := a.session.User(); u != nil {
			fmt.Fprintf(a.out, "User: %s <%s>\n", u.Username, u.Email)
		}
		if exp, ok := a.session.ExpiresAt(); ok {
			left := time.Until(exp).Round(time.Second)
			if left > 0 {
				fmt.Fprintf(a.out, "Expires: %s (in %s)\n", exp.Local().Format(time.DateTime), left)
			} else {
				fmt.Fprintf(a.out, "Expires: %s (expired)\n", exp.Local().Format(time.DateTime))
			}
		}
	}

	mode := a.getMode()
	if mode == "" {
		mode = "unknown"
	}
	fmt.Fprintf(a.out, "Server: %s (%s)\n", a.config.ServerURL, mode)
	return nil
}

// Profile prints the signed-in user's record.
func (a *App) Profile(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		return a.fail(common.ErrNotLoggedIn)
	}
	renderUser(a.out, u)
	return nil
}

// EditProfile walks through the profile fields, sending only the ones the
// user changed.
func (a *App) EditProfile(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		return a.fail(common.ErrNotLoggedIn)
	}

	upd, err := a.readProfileUpdate(u)
	if err != nil {
		return a.fail(err)
	}
	if upd.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}

	if err := a.session.UpdateProfile(ctx, upd); err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.out, "Profile updated successfully!")
	return nil
}

// ChangePassword asks for the current password and a confirmed new one.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword(a.reader, "Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	if err := requireField("current password", string(current)); err != nil {
		return a.fail(err)
	}

	password, confirm, err := a.readNewPassword("New password", "Confirm new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	defer common.WipeByteArray(confirm)

	if err := validateNewPassword(password, confirm); err != nil {
		return a.fail(err)
	}

	if err := a.session.ChangePassword(ctx, string(current), string(password)); err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.out, "Password changed successfully!")
	return nil
}

// Protected calls the API's protected route and prints its greeting.
func (a *App) Protected(ctx context.Context) error {
	msg, err := a.session.Protected(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to access protected route")
		return a.fail(err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// readProfileUpdate prompts for every profile field of u. Email and username
// cannot be cleared; the optional fields can.
func (a *App) readProfileUpdate(u *models.User) (models.ProfileUpdate, error) {
	var upd models.ProfileUpdate

	email, changed, err := GetOptionalText(a.reader, "Email", u.Email, a.out)
	if err != nil {
		return upd, err
	}
	if changed {
		if err := validateEmail(email); err != nil {
			return upd, err
		}
		upd.Email = models.Ptr(email)
	}

	username, changed, err := GetOptionalText(a.reader, "Username", u.Username, a.out)
	if err != nil {
		return upd, err
	}
	if changed {
		if err := requireField("username", username); err != nil {
			return upd, err
		}
		upd.Username = models.Ptr(username)
	}

	optional := []struct {
		label string
		cur   *string
		dst   **string
	}{
		{"First name", u.FirstName, &upd.FirstName},
		{"Last name", u.LastName, &upd.LastName},
		{"Phone", u.Phone, &upd.Phone},
	}
	for _, f := range optional {
		v, changed, err := GetOptionalText(a.reader, f.label, value(f.cur), a.out)
		if err != nil {
			return upd, err
		}
		if changed {
			*f.dst = models.Ptr(v)
		}
	}

	return upd, nil
}
