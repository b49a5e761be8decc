package records

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/bkryza/luma-user-setup-example/types"
)

// AccountsFileName returns the name of the accounts file for a login prefix.
func AccountsFileName(prefix string) string {
	return prefix + "_accounts.csv"
}

// WriteAccounts writes one comma-joined line per account to path, in order:
//
//	UID,LOGIN_NAME,USER_ID,ACCESS_TOKEN
//
// The file is created or truncated, so each run replaces the previous record.
// Fields are caller-controlled and known to be comma-free; no quoting is
// applied.
func WriteAccounts(path string, accounts []types.Account) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		_, err = fmt.Fprintf(file, "%d,%s,%s,%s\n", account.UID, account.Login, account.UserID, account.Token)
		if err != nil {
			if closeErr := file.Close(); closeErr != nil {
				err = multierror.Append(err, closeErr)
			}
			return err
		}
	}

	return file.Close()
}
