package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/authdesk/internal/client/models"
	"github.com/dmitrijs2005/authdesk/internal/client/services"
	"github.com/dmitrijs2005/authdesk/internal/common"
)

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid user id %q", common.ErrorValidation, raw)
	}
	return id, nil
}

// Users lists the accounts known to the API.
func (a *App) Users(ctx context.Context) error {
	users, err := a.admin.ListUsers(ctx, 0, services.DefaultPageSize)
	if err != nil {
		return a.fail(err)
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users.")
		return nil
	}
	renderUsers(a.out, users)
	return nil
}

// ShowUser prints one account.
func (a *App) ShowUser(ctx context.Context, rawID string) error {
	id, err := parseUserID(rawID)
	if err != nil {
		return a.fail(err)
	}

	u, err := a.admin.GetUser(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	renderUser(a.out, u)
	return nil
}

// EditUser loads an account, lets the admin change its profile and flags,
// and sends the changed fields.
func (a *App) EditUser(ctx context.Context, rawID string) error {
	id, err := parseUserID(rawID)
	if err != nil {
		return a.fail(err)
	}

	u, err := a.admin.GetUser(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	profile, err := a.readProfileUpdate(u)
	if err != nil {
		return a.fail(err)
	}
	upd := models.AdminUserUpdate{ProfileUpdate: profile}

	active, changed, err := GetOptionalBool(a.reader, "Active", u.IsActive, a.out)
	if err != nil {
		return a.fail(err)
	}
	if changed {
		upd.IsActive = models.Ptr(active)
	}

	admin, changed, err := GetOptionalBool(a.reader, "Admin", u.IsAdmin, a.out)
	if err != nil {
		return a.fail(err)
	}
	if changed {
		upd.IsAdmin = models.Ptr(admin)
	}

	if upd.ProfileUpdate.IsEmpty() && upd.IsActive == nil && upd.IsAdmin == nil {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}

	updated, err := a.admin.UpdateUser(ctx, id, upd)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.out, "User updated.")
	renderUser(a.out, updated)
	return nil
}

// DeleteUser removes an account after confirmation.
func (a *App) DeleteUser(ctx context.Context, rawID string) error {
	id, err := parseUserID(rawID)
	if err != nil {
		return a.fail(err)
	}

	ok, err := getConfirmation(a.reader, "Are you sure you want to delete this user?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	msg, err := a.admin.DeleteUser(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}
