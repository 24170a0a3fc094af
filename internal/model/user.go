package model

// User is a notification target: one row per recipient of the news email.
type User struct {
	Email string
	Name  string
}
