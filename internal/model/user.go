package model

import "time"

// User is an account that can authenticate and book seats.  The role
// mirrors the profile roles of the web front-end: regular customers
// are USER, staff who provision movies, screens and shows are ADMIN.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, lower-cased login email.
//  PasswordHash – bcrypt hash of the password.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  Role         – USER or ADMIN.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
