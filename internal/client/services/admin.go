package services

import (
	"context"

	"github.com/dmitrijs2005/authdesk/internal/client/client"
	"github.com/dmitrijs2005/authdesk/internal/client/models"
	"github.com/dmitrijs2005/authdesk/internal/common"
)

// DefaultPageSize is the page size used by the users listing.
const DefaultPageSize = 100

// AdminService wraps the /admin/users endpoints.
//
// Calls are refused with common.ErrorForbidden when there is no session user
// or it is not an admin, before any request is made. The API enforces the same rule; the
// check only saves a round trip.
type AdminService struct {
	client  client.Client
	session *SessionManager
}

func NewAdminService(c client.Client, session *SessionManager) *AdminService {
	return &AdminService{client: c, session: session}
}

func (a *AdminService) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	const op = "list users"
	if err := a.gate(op); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	users, err := a.client.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, newOpError(op, "Failed to fetch users", err)
	}
	return users, nil
}

func (a *AdminService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "get user"
	if err := a.gate(op); err != nil {
		return nil, err
	}

	user, err := a.client.GetUser(ctx, id)
	if err != nil {
		return nil, newOpError(op, "Failed to fetch user", err)
	}
	return user, nil
}

func (a *AdminService) UpdateUser(ctx context.Context, id int64, upd models.AdminUserUpdate) (*models.User, error) {
	const op = "update user"
	if err := a.gate(op); err != nil {
		return nil, err
	}

	user, err := a.client.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, newOpError(op, "Failed to update user", err)
	}
	return user, nil
}

func (a *AdminService) DeleteUser(ctx context.Context, id int64) (string, error) {
	const op = "delete user"
	if err := a.gate(op); err != nil {
		return "", err
	}

	msg, err := a.client.DeleteUser(ctx, id)
	if err != nil {
		return "", newOpError(op, "Failed to delete user", err)
	}
	return msg, nil
}

// SetupAdmin creates the first admin account. It works only while the API
// has no admin yet, so it is not gated.
func (a *AdminService) SetupAdmin(ctx context.Context, reg models.Registration) (string, error) {
	msg, err := a.client.SetupAdmin(ctx, reg)
	if err != nil {
		return "", newOpError("setup admin", "Admin setup failed", err)
	}
	return msg, nil
}

func (a *AdminService) gate(op string) error {
	if u := a.session.User(); u == nil || !u.IsAdmin {
		return newOpError(op, common.ErrorForbidden.Error(), common.ErrorForbidden)
	}
	return nil
}
