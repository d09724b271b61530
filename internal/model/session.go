package model

// RegisterParams carries the registration form.
type RegisterParams struct {
	FullName string
	Email    string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	Token string
	User  User
}
