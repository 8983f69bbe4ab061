package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cryptobulldev/userdash/internal/client/models"
	"github.com/cryptobulldev/userdash/internal/common"
)

// List shows a page of users. A leading number selects the page; the rest
// of the arguments form the search term.
func (a *App) List(ctx context.Context, args []string) error {
	p := models.PageParams{Page: 1, Limit: a.pageSize()}
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			if n < 1 {
				return fmt.Errorf("%w: page must be at least 1", common.ErrorValidation)
			}
			p.Page = n
			args = args[1:]
		}
	}
	p.Search = strings.Join(args, " ")
	return a.showPage(ctx, p)
}

// Next shows the page after the last listed one.
func (a *App) Next(ctx context.Context) error {
	if a.page.Page == 0 {
		return a.List(ctx, nil)
	}
	if a.page.Page >= a.pages {
		fmt.Fprintln(a.out, "Already on the last page.")
		return nil
	}
	p := a.page
	p.Page++
	return a.showPage(ctx, p)
}

// Prev shows the page before the last listed one.
func (a *App) Prev(ctx context.Context) error {
	if a.page.Page <= 1 {
		fmt.Fprintln(a.out, "Already on the first page.")
		return nil
	}
	p := a.page
	p.Page--
	return a.showPage(ctx, p)
}

func (a *App) showPage(ctx context.Context, p models.PageParams) error {
	p = p.Normalize()
	page, err := a.users.List(ctx, p)
	if err != nil {
		return err
	}

	a.page = p
	a.pages = page.TotalPages(p.Limit)

	if len(page.Users) == 0 {
		fmt.Fprintln(a.out, "No users found.")
	} else {
		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCREATED")
		for _, u := range page.Users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, formatTime(u.CreatedAt))
		}
		tw.Flush()
	}

	fmt.Fprintf(a.out, "Page %d of %d (%d users)\n", p.Page, a.pages, page.Total)
	return nil
}

// Show prints one user.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := requireID(args)
	if err != nil {
		return err
	}
	u, err := a.users.Get(ctx, id)
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

// Create prompts for a new user's details.
func (a *App) Create(ctx context.Context) error {
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

	u, err := a.users.Create(ctx, models.UserPayload{Name: name, Email: email, Password: string(password)})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created user %s.\n", u.ID)
	return nil
}

// Edit updates a user. Blank answers keep the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := requireID(args)
	if err != nil {
		return err
	}
	current, err := a.users.Get(ctx, id)
	if err != nil {
		return err
	}

	var payload models.UserPayload

	name, err := getSimpleText(a.reader, fmt.Sprintf("Name [%s]", current.Name), a.out)
	if err != nil {
		return err
	}
	if name != current.Name {
		payload.Name = name
	}

	email, err := getSimpleText(a.reader, fmt.Sprintf("Email [%s]", current.Email), a.out)
	if err != nil {
		return err
	}
	if email != current.Email {
		payload.Email = email
	}

	fmt.Fprintln(a.out, "New password (leave empty to keep)")
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	payload.Password = string(password)

	if payload == (models.UserPayload{}) {
		fmt.Fprintln(a.out, "Nothing to change.")
		return nil
	}

	u, err := a.users.Update(ctx, id, payload)
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

// Delete removes a user after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := requireID(args)
	if err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete user %s?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.users.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) printUser(u models.User) {
	fmt.Fprintf(a.out, "ID:      %s\n", u.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", u.Name)
	fmt.Fprintf(a.out, "Email:   %s\n", u.Email)
	fmt.Fprintf(a.out, "Created: %s\n", formatTime(u.CreatedAt))
}

func requireID(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%w: user id is required", common.ErrorValidation)
	}
	return args[0], nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
