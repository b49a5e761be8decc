package types

// LoginRecord is a single entry of a generated batch: the numeric id taken
// from the configured UID range and the login name derived from it.
type LoginRecord struct {
	UID   uint   `json:"uid" db:"uid"`
	Login string `json:"login" db:"login"`
}

// Account is a fully provisioned user: the login record merged with the
// zone-assigned user id and a freshly minted access token.
type Account struct {
	UID    uint   `json:"uid" db:"uid"`
	Login  string `json:"login" db:"login"`
	UserID string `json:"userId" db:"user_id"`
	Token  string `json:"token" db:"token"`
}
