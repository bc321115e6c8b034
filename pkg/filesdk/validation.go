package filesdk

import (
	"regexp"
	"strings"
)

const (
	requiredReason = "required"
	maxTitleLength = 512
)

var reUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Validate returns field errors keyed by JSON name, or nil.
func (r CreateUserRequest) Validate() map[string]string {
	errs := make(map[string]string)

	username := strings.TrimSpace(r.Username)
	switch {
	case username == "":
		errs["username"] = requiredReason
	case len(username) < 3 || len(username) > 64:
		errs["username"] = "must be 3-64 characters"
	case !reUsername.MatchString(username):
		errs["username"] = "must only contain a-z, A-Z, 0-9, _, . or -"
	}

	switch {
	case r.Password == "":
		errs["password"] = requiredReason
	case len(r.Password) < 8:
		errs["password"] = "too short (min 8)"
	case len(r.Password) > 128:
		errs["password"] = "too long (max 128)"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(r.Username) == "" {
		errs["username"] = requiredReason
	}
	if r.Password == "" {
		errs["password"] = requiredReason
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r CreateRecordRequest) Validate() map[string]string {
	title := strings.TrimSpace(r.Title)
	switch {
	case title == "":
		return map[string]string{"title": requiredReason}
	case len(title) > maxTitleLength:
		return map[string]string{"title": "too long (max 512)"}
	}
	return nil
}
