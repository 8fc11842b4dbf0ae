// Package repository contains data access logic separated from HTTP handlers.
// This file defines sentinel error values shared across repositories so
// handlers can map failure scenarios to HTTP statuses without string
// matching: conflicts (duplicate email, second superadmin), invariant
// violations (protected superadmin role) and lookup misses.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique email
// index. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrSuperadminExists is returned when a create or promote operation would
// produce a second superadmin. The storage-level unique slot index makes the
// detection atomic.
var ErrSuperadminExists = errors.New("superadmin already exists")

// ErrRoleNotAllowed is returned when the public signup path requests the
// superadmin role. Provisioning a superadmin has its own endpoint.
var ErrRoleNotAllowed = errors.New("role not allowed")

// ErrInvalidRole is returned for role strings outside the known set.
var ErrInvalidRole = errors.New("invalid role")

// ErrProtectedRole is returned when a role change targets the superadmin
// account. The superadmin role is immutable via the role-update path; the
// account can only leave the system through credential deletion.
var ErrProtectedRole = errors.New("superadmin role is protected")

// ErrUserNotFound is returned when a user lookup yields no row.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidPassword is returned when a password re-verification fails on a
// destructive path such as superadmin credential deletion.
var ErrInvalidPassword = errors.New("invalid password")
