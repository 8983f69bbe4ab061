package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptobulldev/userdash/internal/client/models"
	"github.com/cryptobulldev/userdash/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. The password is wiped before
// returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, models.Credentials{Email: email, Password: string(password)}); err != nil {
		a.log.Info(ctx, "login failed", "error", err)
		return err
	}

	a.page = models.PageParams{}
	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

// Register creates an account and signs in with it.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	reg := models.Registration{Name: name, Email: email, Password: string(password)}
	if err := a.auth.Register(ctx, reg); err != nil {
		return err
	}

	a.page = models.PageParams{}
	fmt.Fprintln(a.out, "Account created, you are logged in.")
	return nil
}

// Logout ends the session locally.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.page = models.PageParams{}
	a.pages = 0
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Whoami prints what the access credential says about the current user.
func (a *App) Whoami(ctx context.Context) error {
	id, err := a.auth.Whoami()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "ID:    %s\n", id.UserID)
	fmt.Fprintf(a.out, "Email: %s\n", id.Email)
	if !id.ExpiresAt.IsZero() {
		left := time.Until(id.ExpiresAt).Round(time.Second)
		if left > 0 {
			fmt.Fprintf(a.out, "Token: expires in %s\n", left)
		} else {
			fmt.Fprintln(a.out, "Token: expired, it will be refreshed on the next request")
		}
	}
	return nil
}
