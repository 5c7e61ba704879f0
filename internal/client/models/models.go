// Package models holds the client-side shapes of address book API payloads.
package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of birthdays.
const DateLayout = "2006-01-02"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	UserName  string    `json:"username"`
	AvatarURL string    `json:"avatar"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) String() string {
	status := "unconfirmed"
	if u.Confirmed {
		status = "confirmed"
	}
	return fmt.Sprintf("%s <%s> (%s)\navatar: %s", u.UserName, u.Email, status, u.AvatarURL)
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// ContactInput is the body of create and update requests.
type ContactInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"`
	Notes     string `json:"notes"`
}

type Contact struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  string    `json:"birthday"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Input returns the editable fields of c.
func (c Contact) Input() ContactInput {
	return ContactInput{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Birthday:  c.Birthday,
		Notes:     c.Notes,
	}
}

func (c Contact) String() string {
	s := fmt.Sprintf("#%d %s\n  email:    %s\n  phone:    %s\n  birthday: %s", c.ID, c.FullName(), c.Email, c.Phone, c.Birthday)
	if c.Notes != "" {
		s += "\n  notes:    " + c.Notes
	}
	return s
}

// ContactQuery narrows a contact listing. Zero values are omitted from the
// request so the server applies its defaults.
type ContactQuery struct {
	FirstName string
	LastName  string
	Email     string
	Name      string
	Limit     int
	Offset    int
}

// Birthday is a contact with its next birthday and congratulation date.
type Birthday struct {
	Contact
	NextBirthday       string `json:"next_birthday"`
	CongratulationDate string `json:"congratulation_date"`
}
