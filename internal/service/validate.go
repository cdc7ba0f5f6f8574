package service

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidUsername  = errors.New("username contains invalid characters")
	ErrReservedUsername = errors.New("this username is reserved")
	ErrInvalidSlug      = errors.New("slug contains invalid characters")
)

var (
	usernameRE = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRE     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Usernames that would collide with routes or impersonate staff.
var reservedUsernames = map[string]struct{}{
	"me":    {},
	"admin": {},
}

func ValidateUsername(username string) error {
	if !usernameRE.MatchString(username) {
		return ErrInvalidUsername
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return ErrReservedUsername
	}
	return nil
}

func ValidateSlug(slug string) error {
	if !slugRE.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}
