package auth

// User carries the credential fields needed to authenticate an account.
// The full profile lives in the users module.
type User struct {
	Name         string
	Email        string
	FullName     string
	PasswordHash string
	Enabled      bool
	Language     string
}
