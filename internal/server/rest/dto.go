package rest

import (
	"time"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/server/models"
	"github.com/dmitrijs2005/addressbook/internal/server/services"
)

const (
	dateLayout           = "2006-01-02"
	congratulationLayout = "02.01.2006"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	UserName string `json:"username" validate:"required,min=3,max=50"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type contactRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Phone     string `json:"phone" validate:"required,phone"`
	Birthday  string `json:"birthday" validate:"required,datetime=2006-01-02"`
	Notes     string `json:"notes" validate:"max=250"`
}

// toModel assumes the request passed validation.
func (c contactRequest) toModel() *models.Contact {
	birthday, _ := time.Parse(dateLayout, c.Birthday)
	return &models.Contact{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Birthday:  birthday,
		Notes:     c.Notes,
	}
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	UserName  string    `json:"username"`
	AvatarURL string    `json:"avatar"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		UserName:  u.UserName,
		AvatarURL: u.AvatarURL,
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func newTokenResponse(p *services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    common.TokenTypeBearer,
	}
}

type contactResponse struct {
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

func newContactResponse(c *models.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Birthday:  c.Birthday.Format(dateLayout),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func newContactList(cs []*models.Contact) []contactResponse {
	out := make([]contactResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, newContactResponse(c))
	}
	return out
}

type birthdayResponse struct {
	contactResponse
	NextBirthday       string `json:"next_birthday"`
	CongratulationDate string `json:"congratulation_date"`
}

func newBirthdayList(bs []models.UpcomingBirthday) []birthdayResponse {
	out := make([]birthdayResponse, 0, len(bs))
	for i := range bs {
		out = append(out, birthdayResponse{
			contactResponse:    newContactResponse(&bs[i].Contact),
			NextBirthday:       bs[i].NextBirthday.Format(dateLayout),
			CongratulationDate: bs[i].CongratulationOn.Format(congratulationLayout),
		})
	}
	return out
}
