package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/authdesk/internal/client/models"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// renderUser prints one account as an aligned key/value block.
func renderUser(w io.Writer, u *models.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", u.ID)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Username:\t%s\n", u.Username)
	fmt.Fprintf(tw, "First name:\t%s\n", orDash(u.FirstName))
	fmt.Fprintf(tw, "Last name:\t%s\n", orDash(u.LastName))
	fmt.Fprintf(tw, "Phone:\t%s\n", orDash(u.Phone))
	fmt.Fprintf(tw, "Active:\t%s\n", yesNo(u.IsActive))
	fmt.Fprintf(tw, "Admin:\t%s\n", yesNo(u.IsAdmin))
	_ = tw.Flush()
}

// renderUsers prints accounts as a table.
func renderUsers(w io.Writer, users []models.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tNAME\tACTIVE\tADMIN")
	for _, u := range users {
		name := u.FullName()
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, name, yesNo(u.IsActive), yesNo(u.IsAdmin))
	}
	_ = tw.Flush()
}
