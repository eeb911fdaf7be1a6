package cli

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/authdesk/internal/client/models"
	"github.com/dmitrijs2005/authdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Anonymous(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.Status(context.Background()))

	assert.Contains(t, ta.out.String(), "Session: anonymous")
	assert.Contains(t, ta.out.String(), "Server: "+ta.srv.URL+" (unknown)")
	assert.NotContains(t, ta.out.String(), "Expires:")
}

func TestStatus_Authenticated(t *testing.T) {
	ta := newTestApp(t)
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")
	ta.setMode(ModeOnline)

	require.NoError(t, ta.Status(context.Background()))

	out := ta.out.String()
	assert.Contains(t, out, "Session: authenticated")
	assert.Contains(t, out, "User: ann <ann@example.com>")
	assert.Contains(t, out, "Expires: ")
	assert.Contains(t, out, "(in ")
	assert.Contains(t, out, "(online)")
}

func TestProfile(t *testing.T) {
	ta := newTestApp(t)
	require.ErrorIs(t, ta.Profile(context.Background()), common.ErrNotLoggedIn)

	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")

	require.NoError(t, ta.Profile(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "Email:       ann@example.com")
	assert.Contains(t, out, "First name:  -")
	assert.Contains(t, out, "Admin:       no")
}

func TestEditProfile_SendsChangedFields(t *testing.T) {
	// email, username kept; first name set; last name kept; phone set
	ta := newTestApp(t, "", "", "Ann", "", "555-0100")
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")

	require.NoError(t, ta.EditProfile(context.Background()))

	assert.Contains(t, ta.out.String(), "Profile updated successfully!")
	u := ta.session.User()
	assert.Equal(t, "Ann", *u.FirstName)
	assert.Equal(t, "555-0100", *u.Phone)
	assert.Nil(t, u.LastName)
	assert.Equal(t, "ann", u.Username)
}

func TestEditProfile_ClearField(t *testing.T) {
	ta := newTestApp(t, "", "", "", "", "-")
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")
	require.NoError(t, ta.session.UpdateProfile(context.Background(), models.ProfileUpdate{Phone: models.Ptr("555")}))
	ta.out.Reset()

	require.NoError(t, ta.EditProfile(context.Background()))

	u := ta.session.User()
	require.NotNil(t, u.Phone)
	assert.Empty(t, *u.Phone)
}

func TestEditProfile_NothingToUpdate(t *testing.T) {
	ta := newTestApp(t, "", "", "", "", "")
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")
	calls := ta.srv.TotalCalls()

	require.NoError(t, ta.EditProfile(context.Background()))

	assert.Contains(t, ta.out.String(), "Nothing to update.")
	assert.Equal(t, calls, ta.srv.TotalCalls())
}

func TestEditProfile_InvalidEmail(t *testing.T) {
	ta := newTestApp(t, "not-an-email")
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")

	require.ErrorIs(t, ta.EditProfile(context.Background()), common.ErrInvalidEmailFormat)
	assert.Equal(t, "ann@example.com", ta.session.User().Email)
}

func TestEditProfile_ServerRejects(t *testing.T) {
	ta := newTestApp(t, "", "bob", "", "", "")
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.srv.AddUser("bob@example.com", "bob", "secret1", false)
	ta.signIn(t, "ann@example.com")

	require.Error(t, ta.EditProfile(context.Background()))
	assert.Contains(t, ta.out.String(), "Error: Username already taken")
}

func TestChangePassword(t *testing.T) {
	ta := newTestApp(t, "secret1", "secret2", "secret2")
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")
	token := ta.session.Credential()

	require.NoError(t, ta.ChangePassword(context.Background()))

	assert.Contains(t, ta.out.String(), "Password changed successfully!")
	assert.Equal(t, token, ta.session.Credential())
	require.NoError(t, ta.session.Login(context.Background(), "ann@example.com", "secret2"))
}

func TestChangePassword_Validation(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  error
	}{
		{"blank current", []string{""}, common.ErrEmptyField},
		{"mismatch", []string{"secret1", "secret2", "secret3"}, common.ErrPasswordMismatch},
		{"too short", []string{"secret1", "abc", "abc"}, common.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, tt.lines...)
			ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
			ta.signIn(t, "ann@example.com")
			calls := ta.srv.TotalCalls()

			require.ErrorIs(t, ta.ChangePassword(context.Background()), tt.want)
			assert.Equal(t, calls, ta.srv.TotalCalls())
		})
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	ta := newTestApp(t, "wrong1", "secret2", "secret2")
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")

	require.Error(t, ta.ChangePassword(context.Background()))
	assert.Contains(t, ta.out.String(), "Error: Current password is incorrect")
}

func TestProtected(t *testing.T) {
	ta := newTestApp(t)
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")

	require.NoError(t, ta.Protected(context.Background()))
	assert.Equal(t, "Hello ann, this is a protected route!\n", ta.out.String())
}

func TestProtected_ExpiredCredential(t *testing.T) {
	ta := newTestApp(t)
	ta.srv.AddUser("ann@example.com", "ann", "secret1", false)
	ta.signIn(t, "ann@example.com")
	ta.api.SetCredential(ta.srv.IssueToken("ann@example.com", -time.Minute))

	require.Error(t, ta.Protected(context.Background()))
	assert.Contains(t, ta.out.String(), "Failed to access protected route")
}
