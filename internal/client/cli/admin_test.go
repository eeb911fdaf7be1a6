package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/authdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminTestApp(t *testing.T, lines ...string) *testApp {
	t.Helper()
	ta := newTestApp(t, lines...)
	ta.srv.AddUser("root@example.com", "root", "secret1", true)
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "root@example.com")
	return ta
}

func TestUsers(t *testing.T) {
	ta := newAdminTestApp(t)

	require.NoError(t, ta.Users(context.Background()))

	out := ta.out.String()
	assert.Contains(t, out, "ID  USERNAME  EMAIL")
	assert.Contains(t, out, "root")
	assert.Contains(t, out, "ann@example.com")
}

func TestUsers_NotAdmin(t *testing.T) {
	ta := newTestApp(t)
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")
	calls := ta.srv.TotalCalls()

	require.ErrorIs(t, ta.Users(context.Background()), common.ErrorForbidden)
	assert.Contains(t, ta.out.String(), "Error: admin privileges required")
	assert.Equal(t, calls, ta.srv.TotalCalls())
}

func TestShowUser(t *testing.T) {
	ta := newAdminTestApp(t)

	require.NoError(t, ta.ShowUser(context.Background(), "2"))
	assert.Contains(t, ta.out.String(), "Username:    ann")

	ta.out.Reset()
	require.ErrorIs(t, ta.ShowUser(context.Background(), "abc"), common.ErrorValidation)

	ta.out.Reset()
	require.Error(t, ta.ShowUser(context.Background(), "99"))
	assert.Contains(t, ta.out.String(), "Error: User not found")
}

func TestEditUser(t *testing.T) {
	// profile fields kept, deactivate, keep admin flag
	ta := newAdminTestApp(t, "", "", "", "", "", "n", "")

	require.NoError(t, ta.EditUser(context.Background(), "2"))

	assert.Contains(t, ta.out.String(), "User updated.")
	u, _ := ta.srv.User("ann@example.com")
	assert.False(t, u.IsActive)
	assert.False(t, u.IsAdmin)
}

func TestEditUser_NothingToUpdate(t *testing.T) {
	ta := newAdminTestApp(t, "", "", "", "", "", "", "")
	calls := ta.srv.TotalCalls()

	require.NoError(t, ta.EditUser(context.Background(), "2"))

	assert.Contains(t, ta.out.String(), "Nothing to update.")
	assert.Equal(t, calls+1, ta.srv.TotalCalls(), "only the GET of the user")
}

func TestEditUser_BadFlag(t *testing.T) {
	ta := newAdminTestApp(t, "", "", "", "", "", "maybe")

	require.Error(t, ta.EditUser(context.Background(), "2"))
	assert.Contains(t, ta.out.String(), `"maybe" is not y or n`)
}

func TestDeleteUser(t *testing.T) {
	ta := newAdminTestApp(t, "n", "yes")

	require.NoError(t, ta.DeleteUser(context.Background(), "2"))
	assert.Contains(t, ta.out.String(), "Cancelled.")
	_, exists := ta.srv.User("ann@example.com")
	assert.True(t, exists)

	require.NoError(t, ta.DeleteUser(context.Background(), "2"))
	assert.Contains(t, ta.out.String(), "User deleted successfully")
	_, exists = ta.srv.User("ann@example.com")
	assert.False(t, exists)
}

func TestDeleteUser_Self(t *testing.T) {
	ta := newAdminTestApp(t, "y")

	require.Error(t, ta.DeleteUser(context.Background(), "1"))
	assert.Contains(t, ta.out.String(), "Error: Cannot delete your own account")
}
