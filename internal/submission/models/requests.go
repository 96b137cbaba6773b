package models

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	dErrors "sangham/pkg/domain-errors"
)

const (
	maxTextLen    = 255
	maxAddressLen = 1024
	dateLayout    = "2006-01-02"
)

var allowedGenders = map[string]struct{}{
	"male":   {},
	"female": {},
	"other":  {},
}

// CreateSubmissionRequest is the public registration payload. Lineage and
// OtherLineage are accepted as aliases of Gothram and OtherGothram.
type CreateSubmissionRequest struct {
	Name           string  `json:"name"`
	PhoneNumber    string  `json:"phoneNumber"`
	Community      string  `json:"community"`
	Gothram        string  `json:"gothram"`
	OtherGothram   *string `json:"otherGothram"`
	Lineage        string  `json:"lineage"`
	OtherLineage   *string `json:"otherLineage"`
	HouseName      *string `json:"houseName"`
	OtherHouseName *string `json:"otherHouseName"`
	Gender         *string `json:"gender"`
	DateOfBirth    *string `json:"dateOfBirth"`
	Address        *string `json:"address"`
	NativePlace    *string `json:"nativePlace"`
	State          string  `json:"state"`
	County         string  `json:"county"`
}

// Normalize trims input, folds aliases and drops override fields whose parent
// is not Other.
func (r *CreateSubmissionRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Community = strings.TrimSpace(r.Community)
	r.Gothram = strings.TrimSpace(r.Gothram)
	r.Lineage = strings.TrimSpace(r.Lineage)
	r.State = strings.TrimSpace(r.State)
	r.County = strings.TrimSpace(r.County)

	if r.Gothram == "" && r.Lineage != "" {
		r.Gothram = r.Lineage
		if r.OtherGothram == nil {
			r.OtherGothram = r.OtherLineage
		}
	}
	r.Lineage, r.OtherLineage = "", nil

	r.OtherGothram = trimOptional(r.OtherGothram)
	r.HouseName = trimOptional(r.HouseName)
	r.OtherHouseName = trimOptional(r.OtherHouseName)
	r.Gender = trimOptional(r.Gender)
	if r.Gender != nil {
		lower := strings.ToLower(*r.Gender)
		r.Gender = &lower
	}
	r.DateOfBirth = trimOptional(r.DateOfBirth)
	r.Address = trimOptional(r.Address)
	r.NativePlace = trimOptional(r.NativePlace)

	if r.Gothram != Other {
		r.OtherGothram = nil
	}
	if r.HouseName == nil || *r.HouseName != Other {
		r.OtherHouseName = nil
	}
}

// Validate reports every violated constraint at once. today bounds the date
// of birth.
func (r *CreateSubmissionRequest) Validate(today time.Time) error {
	var fields []dErrors.FieldError
	add := func(field, msg string) {
		fields = append(fields, dErrors.FieldError{Field: field, Message: msg})
	}

	if utf8.RuneCountInString(r.Name) < 2 {
		add("name", "Name must be at least 2 characters")
	}
	if utf8.RuneCountInString(r.PhoneNumber) < 10 {
		add("phoneNumber", "Phone number must be at least 10 digits")
	}
	switch {
	case r.Gothram == "":
		add("gothram", "Please select a gothram")
	case !IsKnownGothram(r.Gothram):
		add("gothram", "Unknown gothram")
	}
	if r.HouseName != nil && r.Gothram != "" && IsKnownGothram(r.Gothram) && !IsKnownHouseName(r.Gothram, *r.HouseName) {
		add("houseName", "House name does not belong to the selected gothram")
	}
	if utf8.RuneCountInString(r.State) < 2 {
		add("state", "State is required")
	}
	if utf8.RuneCountInString(r.County) < 2 {
		add("county", "County is required")
	}
	if r.Gender != nil {
		if _, ok := allowedGenders[*r.Gender]; !ok {
			add("gender", "Gender must be male, female or other")
		}
	}
	if r.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *r.DateOfBirth)
		if err != nil {
			add("dateOfBirth", "Date of birth must use YYYY-MM-DD")
		} else if dob.After(today) {
			add("dateOfBirth", "Date of birth cannot be in the future")
		}
	}

	for field, v := range map[string]string{
		"name":           r.Name,
		"phoneNumber":    r.PhoneNumber,
		"community":      r.Community,
		"gothram":        r.Gothram,
		"state":          r.State,
		"county":         r.County,
		"otherGothram":   deref(r.OtherGothram),
		"houseName":      deref(r.HouseName),
		"otherHouseName": deref(r.OtherHouseName),
		"nativePlace":    deref(r.NativePlace),
	} {
		if utf8.RuneCountInString(v) > maxTextLen {
			add(field, "Must be at most 255 characters")
		}
	}
	if utf8.RuneCountInString(deref(r.Address)) > maxAddressLen {
		add("address", "Must be at most 1024 characters")
	}

	if len(fields) > 0 {
		sortFieldErrors(fields)
		return dErrors.Validation("Validation failed", fields)
	}
	return nil
}

// fieldOrder keeps validation output stable for clients.
var fieldOrder = map[string]int{
	"name": 0, "phoneNumber": 1, "community": 2, "gothram": 3, "otherGothram": 4,
	"houseName": 5, "otherHouseName": 6, "gender": 7, "dateOfBirth": 8,
	"address": 9, "nativePlace": 10, "state": 11, "county": 12,
}

func sortFieldErrors(fields []dErrors.FieldError) {
	sort.SliceStable(fields, func(a, b int) bool {
		return fieldOrder[fields[a].Field] < fieldOrder[fields[b].Field]
	})
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
