// Package nic decodes Sri Lankan national identity card numbers into the
// holder's birth date, age and gender.
//
// Two formats exist. The legacy 10 character form (901234567V) carries a
// two digit year that is always read as 19YY, so it cannot represent births
// after 1999. The modern 12 digit form (199012345678) carries the full year.
// In both, the three digits after the year are the day of the year, with 500
// added for women.
package nic

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid is returned for any input that is not a decodable NIC.
var ErrInvalid = errors.New("nic: invalid identity number")

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

const (
	legacyLength = 10
	modernLength = 12

	femaleOffset = 500
	maxDayOfYear = 366

	dateLayout = "2006-01-02"
)

// Identity is what a NIC number tells about its holder.
type Identity struct {
	Birthday time.Time
	Age      int
	Gender   Gender
}

// BirthdayString formats the birthday as YYYY-MM-DD.
func (i Identity) BirthdayString() string {
	return i.Birthday.Format(dateLayout)
}

// Parse decodes input as of the calendar date of today.
func Parse(input string, today time.Time) (Identity, error) {
	year, rawDay, ok := split(strings.TrimSpace(input))
	if !ok {
		return Identity{}, ErrInvalid
	}

	gender := GenderMale
	day := rawDay
	if day > femaleOffset {
		gender = GenderFemale
		day -= femaleOffset
	}
	if day < 1 || day > maxDayOfYear {
		return Identity{}, ErrInvalid
	}

	birthday := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day-1)
	// Day 366 of a common year rolls into January of the next one.
	if birthday.Year() != year {
		return Identity{}, ErrInvalid
	}

	return Identity{
		Birthday: birthday,
		Age:      Age(birthday, today),
		Gender:   gender,
	}, nil
}

// Valid reports whether input decodes. The result does not depend on the
// current date.
func Valid(input string) bool {
	_, err := Parse(input, time.Time{})
	return err == nil
}

// Age returns the number of full years between birthday and today. Birthdays
// in the future count as zero.
func Age(birthday, today time.Time) int {
	age := today.Year() - birthday.Year()
	if today.Month() < birthday.Month() ||
		(today.Month() == birthday.Month() && today.Day() < birthday.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// split classifies the trimmed number and extracts the year and the raw
// day-of-year field.
func split(s string) (year, day int, ok bool) {
	switch {
	case len(s) == legacyLength && isSeriesLetter(s[legacyLength-1]) && isDigits(s[:legacyLength-1]):
		yy, _ := strconv.Atoi(s[0:2])
		day, _ = strconv.Atoi(s[2:5])
		return 1900 + yy, day, true
	case len(s) == modernLength && isDigits(s):
		year, _ = strconv.Atoi(s[0:4])
		day, _ = strconv.Atoi(s[4:7])
		return year, day, true
	default:
		return 0, 0, false
	}
}

func isSeriesLetter(c byte) bool {
	switch c {
	case 'V', 'v', 'X', 'x':
		return true
	}
	return false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
