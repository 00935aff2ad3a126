package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/dmitrijs2005/taskdesk/internal/jwtx"
)

// Interactive input seams, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
	confirm       = Confirm
)

// Login signs in. A missing email is prompted for; the password always is.
func (a *App) Login(ctx context.Context, email string) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}

	var err error
	if email == "" {
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", user.DisplayName())
	return nil
}

// Signup creates an account and signs it in. When the email is prompted
// for, the optional display name is prompted for as well.
func (a *App) Signup(ctx context.Context, email, name string) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}

	var err error
	if email == "" {
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
		if name == "" {
			if name, err = getSimpleText(a.reader, "Enter name (optional)", a.out); err != nil {
				return err
			}
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.session.Signup(ctx, email, string(password), name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created, signed in as %s\n", user.DisplayName())
	return nil
}

// Logout never fails; it is fine to call it without a session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}

	if !a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in")
	}
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

// Whoami prints the session user. With refresh the user is fetched from
// /auth/me instead of the token claims.
func (a *App) Whoami(ctx context.Context, refresh bool) error {
	return a.protect(ctx, func(ctx context.Context) error {
		user := a.session.CurrentUser()
		if refresh {
			var err error
			if user, err = a.session.RefreshUser(ctx); err != nil {
				return err
			}
		}
		if user == nil {
			return ErrNotSignedIn
		}

		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID:\t%s\n", user.ID)
		if user.Email != "" {
			fmt.Fprintf(w, "Email:\t%s\n", user.Email)
		}
		if user.Name != "" {
			fmt.Fprintf(w, "Name:\t%s\n", user.Name)
		}
		if user.CreatedAt != "" {
			fmt.Fprintf(w, "Member since:\t%s\n", user.CreatedAt)
		}
		fmt.Fprintf(w, "Session:\t%s\n", a.expiry())
		return w.Flush()
	})
}

func (a *App) expiry() string {
	exp, ok := a.session.ExpiresAt()
	if !ok {
		return "no expiry"
	}
	stamp := exp.Local().Format(time.RFC3339)
	switch {
	case jwtx.IsExpired(a.session.CurrentToken()):
		return "expired at " + stamp
	case a.session.ExpiresSoon():
		return "expires soon, at " + stamp
	default:
		return "valid until " + stamp
	}
}
