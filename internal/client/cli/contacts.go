package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/addressbook/internal/client/models"
	"github.com/dmitrijs2005/addressbook/internal/common"
)

// listPageSize is the page length of "list <page>".
const listPageSize = 20

func parseID(args []string, cmd string) (int64, error) {
	if len(args) != 1 {
		return 0, usage(cmd + " <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, usage(cmd + " <id>: id must be a positive number")
	}
	return id, nil
}

func printContacts(w io.Writer, list []models.Contact) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No contacts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tBIRTHDAY")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.FullName(), c.Email, c.Phone, c.Birthday)
	}
	tw.Flush()
}

func printBirthdays(w io.Writer, list []models.Birthday, days int) {
	if len(list) == 0 {
		fmt.Fprintf(w, "No birthdays in the next %d days\n", days)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBIRTHDAY\tNEXT\tCONGRATULATE ON")
	for _, b := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.FullName(), b.Birthday, b.NextBirthday, b.CongratulationDate)
	}
	tw.Flush()
}

// List prints all contacts, or one page when a page number is given.
func (a *App) List(ctx context.Context, args []string) error {
	var (
		list []models.Contact
		err  error
	)

	switch len(args) {
	case 0:
		list, err = a.contactService.All(ctx)
	case 1:
		n, convErr := strconv.Atoi(args[0])
		if convErr != nil || n < 1 {
			return usage("list [page]: page must be a positive number")
		}
		list, err = a.contactService.List(ctx, models.ContactQuery{Limit: listPageSize, Offset: (n - 1) * listPageSize})
	default:
		return usage("list [page]")
	}
	if err != nil {
		return a.guard(err)
	}

	printContacts(a.out, list)
	return nil
}

// Search prints contacts matching the given term.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("search <term>")
	}
	list, err := a.contactService.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return a.guard(err)
	}
	printContacts(a.out, list)
	return nil
}

// inputContact prompts for every contact field, offering cur as defaults.
func (a *App) inputContact(cur models.ContactInput) (models.ContactInput, error) {
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"First name", &cur.FirstName},
		{"Last name", &cur.LastName},
		{"Email", &cur.Email},
		{"Phone (+380501234567)", &cur.Phone},
		{"Birthday (YYYY-MM-DD)", &cur.Birthday},
		{"Notes (optional)", &cur.Notes},
	}

	for _, f := range fields {
		v, err := getWithDefault(a.reader, f.prompt, *f.dst, a.out)
		if err != nil {
			return models.ContactInput{}, err
		}
		*f.dst = v
	}
	return cur, nil
}

// Add prompts for a new contact and saves it.
func (a *App) Add(ctx context.Context, _ []string) error {
	in, err := a.inputContact(models.ContactInput{})
	if err != nil {
		return err
	}
	c, err := a.contactService.Add(ctx, in)
	if err != nil {
		return a.guard(err)
	}
	fmt.Fprintf(a.out, "Contact #%d added\n", c.ID)
	return nil
}

// Show prints one contact.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args, "show")
	if err != nil {
		return err
	}
	c, err := a.contactService.Get(ctx, id)
	if err != nil {
		return a.guard(err)
	}
	fmt.Fprintln(a.out, c)
	return nil
}

// Edit loads a contact, prompts for changes and saves it. Empty answers keep
// the current values.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseID(args, "edit")
	if err != nil {
		return err
	}
	cur, err := a.contactService.Get(ctx, id)
	if err != nil {
		return a.guard(err)
	}

	in, err := a.inputContact(cur.Input())
	if err != nil {
		return err
	}
	if _, err := a.contactService.Update(ctx, id, in); err != nil {
		return a.guard(err)
	}
	fmt.Fprintf(a.out, "Contact #%d updated\n", id)
	return nil
}

// Delete removes a contact after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete")
	if err != nil {
		return err
	}
	c, err := a.contactService.Get(ctx, id)
	if err != nil {
		return a.guard(err)
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete %s? (y/N)", c.FullName()), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.contactService.Delete(ctx, id); err != nil {
		return a.guard(err)
	}
	fmt.Fprintf(a.out, "Contact #%d deleted\n", id)
	return nil
}

// defaultBirthdayDays matches the server default window.
const defaultBirthdayDays = 7

// Birthdays prints contacts with a birthday in the next days (default 7).
func (a *App) Birthdays(ctx context.Context, args []string) error {
	days := defaultBirthdayDays
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("%w: days must be a positive number", common.ErrValidation)
		}
		days = n
	}

	list, err := a.contactService.Birthdays(ctx, days)
	if err != nil {
		return a.guard(err)
	}
	printBirthdays(a.out, list, days)
	return nil
}
