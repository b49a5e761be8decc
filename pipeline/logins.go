package pipeline

import (
	"fmt"

	"github.com/bkryza/luma-user-setup-example/types"
)

// GenerateLogins derives login records from a UID range. Each login is the
// prefix followed by the UID zero-padded to five digits, so the mapping from
// UID to login is injective and logins are unique within a batch. An empty
// range (high <= low) yields an empty batch, not an error.
func GenerateLogins(low, high uint, prefix string) []types.LoginRecord {
	records := make([]types.LoginRecord, 0)
	for i := low; i < high; i++ {
		records = append(records, types.LoginRecord{
			UID:   i,
			Login: fmt.Sprintf("%s%05d", prefix, i),
		})
	}

	return records
}
