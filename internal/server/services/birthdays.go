package services

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/server/models"
)

// UpcomingBirthdays selects contacts whose next birthday lies in
// [today, today+days]. Only month and day of the birth date matter. A
// 29 February birthday is observed on 28 February in common years, and a
// birthday on a weekend is congratulated on the following Monday. Results
// are ordered by next birthday, then by contact id.
func UpcomingBirthdays(contacts []*models.Contact, today time.Time, days int) []models.UpcomingBirthday {
	start := dateOf(today)
	end := start.AddDate(0, 0, days)

	result := make([]models.UpcomingBirthday, 0)
	for _, c := range contacts {
		if c.Birthday.IsZero() {
			continue
		}
		next := birthdayIn(c.Birthday, start.Year())
		if next.Before(start) {
			next = birthdayIn(c.Birthday, start.Year()+1)
		}
		if next.After(end) {
			continue
		}
		result = append(result, models.UpcomingBirthday{
			Contact:          *c,
			NextBirthday:     next,
			CongratulationOn: congratulationDay(next),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].NextBirthday.Equal(result[j].NextBirthday) {
			return result[i].NextBirthday.Before(result[j].NextBirthday)
		}
		return result[i].Contact.ID < result[j].Contact.ID
	})
	return result
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func birthdayIn(birth time.Time, year int) time.Time {
	month, day := birth.Month(), birth.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func congratulationDay(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}
