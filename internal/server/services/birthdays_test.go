package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/server/models"
	"github.com/google/go-cmp/cmp"
)

func TestUpcomingBirthdays(t *testing.T) {
	contacts := []*models.Contact{
		{ID: 1, FirstName: "Sat", Birthday: date(1990, time.June, 14)},
		{ID: 2, FirstName: "Today", Birthday: date(1985, time.June, 10)},
		{ID: 3, FirstName: "Edge", Birthday: date(2000, time.June, 17)},
		{ID: 4, FirstName: "Out", Birthday: date(2000, time.June, 18)},
		{ID: 5, FirstName: "Past", Birthday: date(2000, time.June, 9)},
		{ID: 6, FirstName: "Zero"},
		{ID: 7, FirstName: "SameDay", Birthday: date(1970, time.June, 14)},
	}

	// 2025-06-10 is a Tuesday.
	got := UpcomingBirthdays(contacts, time.Date(2025, time.June, 10, 23, 0, 0, 0, time.UTC), 7)

	type row struct {
		ID       int64
		Next     time.Time
		Congrats time.Time
	}
	var rows []row
	for _, b := range got {
		rows = append(rows, row{b.Contact.ID, b.NextBirthday, b.CongratulationOn})
	}

	want := []row{
		{2, date(2025, time.June, 10), date(2025, time.June, 10)},
		{1, date(2025, time.June, 14), date(2025, time.June, 16)},
		{7, date(2025, time.June, 14), date(2025, time.June, 16)},
		{3, date(2025, time.June, 17), date(2025, time.June, 17)},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("upcoming birthdays mismatch (-want +got):\n%s", diff)
	}
}

func TestUpcomingBirthdays_WrapsYearEnd(t *testing.T) {
	contacts := []*models.Contact{
		{ID: 1, Birthday: date(1990, time.January, 2)},
		{ID: 2, Birthday: date(1990, time.December, 30)},
	}

	got := UpcomingBirthdays(contacts, date(2025, time.December, 29), 7)
	if len(got) != 2 {
		t.Fatalf("want 2 birthdays, got %d", len(got))
	}
	if got[0].Contact.ID != 2 || !got[0].NextBirthday.Equal(date(2025, time.December, 30)) {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].Contact.ID != 1 || !got[1].NextBirthday.Equal(date(2026, time.January, 2)) {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}
}

func TestUpcomingBirthdays_LeapDay(t *testing.T) {
	contacts := []*models.Contact{{ID: 1, Birthday: date(2000, time.February, 29)}}

	// 2025-02-28 is a Friday.
	got := UpcomingBirthdays(contacts, date(2025, time.February, 25), 7)
	if len(got) != 1 {
		t.Fatalf("want 1 birthday, got %d", len(got))
	}
	if !got[0].NextBirthday.Equal(date(2025, time.February, 28)) {
		t.Fatalf("want Feb 28 in a common year, got %v", got[0].NextBirthday)
	}

	got = UpcomingBirthdays(contacts, date(2028, time.February, 25), 7)
	if len(got) != 1 || !got[0].NextBirthday.Equal(date(2028, time.February, 29)) {
		t.Fatalf("want Feb 29 in a leap year, got %+v", got)
	}
}

func TestUpcomingBirthdays_SundayMovesToMonday(t *testing.T) {
	// 2025-06-15 is a Sunday.
	contacts := []*models.Contact{{ID: 1, Birthday: date(1999, time.June, 15)}}

	got := UpcomingBirthdays(contacts, date(2025, time.June, 13), 3)
	if len(got) != 1 {
		t.Fatalf("want 1 birthday, got %d", len(got))
	}
	if !got[0].CongratulationOn.Equal(date(2025, time.June, 16)) {
		t.Fatalf("want Monday congratulation, got %v", got[0].CongratulationOn)
	}
}

func TestUpcomingBirthdays_ZeroDaysIsTodayOnly(t *testing.T) {
	contacts := []*models.Contact{
		{ID: 1, Birthday: date(1990, time.March, 3)},
		{ID: 2, Birthday: date(1990, time.March, 4)},
	}
	got := UpcomingBirthdays(contacts, date(2025, time.March, 3), 0)
	if len(got) != 1 || got[0].Contact.ID != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}
