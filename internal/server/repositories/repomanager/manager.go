package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/addressbook/internal/dbx"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
