package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
)

// Minimal internal validator to avoid external dependency. Supports:
// - required
// - usernameok (letters, numbers, underscore, 3-50 chars)
// - emailok (basic shape check)
// - pwdmin (min length 6)
// - eqfield=OtherField (field equals another field)
// - oneof=a b c (value is one of the listed words)
// - urlok (http/https URL, empty allowed)

var (
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)
	reEmail    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	reURL      = regexp.MustCompile(`^https?://\S+$`)
)

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		fv := v.Field(i)
		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "required" {
				if sval == "" && fv.Kind() == reflect.String {
					return errors.New(field.Name + " is required")
				}
			} else if p == "usernameok" {
				if sval != "" && !reUsername.MatchString(sval) {
					return errors.New(field.Name + " must be 3-50 characters of letters, numbers and underscores")
				}
			} else if p == "emailok" {
				if sval != "" && !reEmail.MatchString(sval) {
					return errors.New(field.Name + " must be a valid email address")
				}
			} else if p == "pwdmin" {
				if len(sval) < 6 {
					return errors.New(field.Name + " must be at least 6 characters")
				}
			} else if p == "urlok" {
				if sval != "" && !reURL.MatchString(sval) {
					return errors.New(field.Name + " must be an http(s) URL")
				}
			} else if strings.HasPrefix(p, "oneof=") {
				allowed := strings.Fields(strings.TrimPrefix(p, "oneof="))
				if sval != "" {
					found := false
					for _, a := range allowed {
						if sval == a {
							found = true
							break
						}
					}
					if !found {
						return errors.New(field.Name + " must be one of: " + strings.Join(allowed, ", "))
					}
				}
			} else if strings.HasPrefix(p, "eqfield=") {
				other := strings.TrimPrefix(p, "eqfield=")
				of := v.FieldByName(other)
				if of.IsValid() && of.Kind() == reflect.String {
					if sval != of.String() {
						return errors.New(field.Name + " must equal " + other)
					}
				}
			}
		}
	}
	return nil
}
