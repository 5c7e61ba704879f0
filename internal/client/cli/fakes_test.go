package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/addressbook/internal/client/models"
	"github.com/dmitrijs2005/addressbook/internal/client/services"
	"github.com/dmitrijs2005/addressbook/internal/logging"
)

type fakeAuth struct {
	services.AuthService

	regEmail, regName string
	regPass           []byte
	regErr            error

	loginEmail string
	loginPass  []byte
	loginErr   error

	logoutCalled bool
	logoutErr    error

	resumeEmail string
	resumeErr   error

	msg       string
	msgErr    error
	lastToken string
	lastEmail string

	me      *models.User
	meErr   error
	avatar  string
	pingErr error
}

func (f *fakeAuth) Register(_ context.Context, email string, pass []byte, name string) (*models.User, error) {
	f.regEmail, f.regName, f.regPass = email, name, append([]byte(nil), pass...)
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{Email: email, UserName: name}, nil
}
func (f *fakeAuth) Login(_ context.Context, email string, pass []byte) error {
	f.loginEmail, f.loginPass = email, append([]byte(nil), pass...)
	return f.loginErr
}
func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}
func (f *fakeAuth) Resume(context.Context) (string, error) { return f.resumeEmail, f.resumeErr }
func (f *fakeAuth) VerifyEmail(_ context.Context, token string) (string, error) {
	f.lastToken = token
	return f.msg, f.msgErr
}
func (f *fakeAuth) ResendVerification(_ context.Context, email string) (string, error) {
	f.lastEmail = email
	return f.msg, f.msgErr
}
func (f *fakeAuth) RequestPasswordReset(_ context.Context, email string) (string, error) {
	f.lastEmail = email
	return f.msg, f.msgErr
}
func (f *fakeAuth) ResetPassword(_ context.Context, token string, pass []byte) (string, error) {
	f.lastToken, f.loginPass = token, append([]byte(nil), pass...)
	return f.msg, f.msgErr
}
func (f *fakeAuth) Me(context.Context) (*models.User, error) { return f.me, f.meErr }
func (f *fakeAuth) UploadAvatar(_ context.Context, path string) (*models.User, error) {
	f.avatar = path
	return &models.User{AvatarURL: "https://cdn/" + path}, nil
}
func (f *fakeAuth) Ping(context.Context) error  { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error { return nil }

type fakeContacts struct {
	services.ContactService

	contacts  map[int64]models.Contact
	listQuery models.ContactQuery
	allCalled bool
	searched  string
	added     *models.ContactInput
	updated   *models.ContactInput
	deleted   int64
	birthdays []models.Birthday
	daysAsked int
	err       error
}

func (f *fakeContacts) values() []models.Contact {
	out := make([]models.Contact, 0, len(f.contacts))
	for _, c := range f.contacts {
		out = append(out, c)
	}
	return out
}

func (f *fakeContacts) All(context.Context) ([]models.Contact, error) {
	f.allCalled = true
	return f.values(), f.err
}
func (f *fakeContacts) List(_ context.Context, q models.ContactQuery) ([]models.Contact, error) {
	f.listQuery = q
	return f.values(), f.err
}
func (f *fakeContacts) Search(_ context.Context, term string) ([]models.Contact, error) {
	f.searched = term
	return f.values(), f.err
}
func (f *fakeContacts) Get(_ context.Context, id int64) (*models.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := f.contacts[id]
	return &c, nil
}
func (f *fakeContacts) Add(_ context.Context, in models.ContactInput) (*models.Contact, error) {
	f.added = &in
	return &models.Contact{ID: 42}, f.err
}
func (f *fakeContacts) Update(_ context.Context, id int64, in models.ContactInput) (*models.Contact, error) {
	f.updated = &in
	return &models.Contact{ID: id}, f.err
}
func (f *fakeContacts) Delete(_ context.Context, id int64) error {
	f.deleted = id
	return f.err
}
func (f *fakeContacts) Birthdays(_ context.Context, days int) ([]models.Birthday, error) {
	f.daysAsked = days
	return f.birthdays, f.err
}

// newTestApp builds an App over fakes that reads input and writes to a buffer.
func newTestApp(t *testing.T, as *fakeAuth, cs *fakeContacts, input string) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &App{
		logger:         logging.Discard(),
		authService:    as,
		contactService: cs,
		reader:         bufio.NewReader(bytes.NewBufferString(input)),
		out:            out,
	}, out
}

// stubPassword makes getPassword return pw.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(string, io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
