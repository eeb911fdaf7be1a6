package client

import (
	"context"

	"github.com/dmitrijs2005/authdesk/internal/client/models"
)

// Client is the Authentication API contract used by the session and admin
// services.
//
// The active credential is attached to every call by the client itself; a
// single call can override it with WithCredential.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.Token, error)
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	Protected(ctx context.Context) (string, error)
	SetupAdmin(ctx context.Context, reg models.Registration) (string, error)

	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, upd models.AdminUserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (string, error)

	Ping(ctx context.Context) error

	SetCredential(token string)
	ClearCredential()
	Close() error
}
