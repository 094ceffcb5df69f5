// Package coerce turns free text typed into a form into JSON values.
//
// ByTag is used when the user picked a type; Infer is used when no type is
// available, such as on a full form submit. The two disagree on text that is
// not a number: ByTag reads the leading number ("3.5kg" is 3.5) or yields 0,
// while Infer keeps the whole text as a string.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mcncl/jsonedit/internal/models"
)

// ErrUnknownType reports a type tag outside the supported set.
var ErrUnknownType = errors.New("unknown value type")

// TypeTag names the type a value should be coerced to.
type TypeTag string

const (
	TypeString  TypeTag = "string"
	TypeNumber  TypeTag = "number"
	TypeBoolean TypeTag = "boolean"
	TypeNull    TypeTag = "null"
	TypeObject  TypeTag = "object"
	TypeArray   TypeTag = "array"
)

// Tags lists every supported tag in the order a type picker shows them.
var Tags = []TypeTag{TypeString, TypeNumber, TypeBoolean, TypeNull, TypeObject, TypeArray}

var lower = cases.Lower(language.Und)

// ParseTypeTag validates a tag name. Matching is case-insensitive and an
// empty name means string.
func ParseTypeTag(name string) (TypeTag, error) {
	if name == "" {
		return TypeString, nil
	}
	tag := TypeTag(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Tags {
		if tag == known {
			return tag, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// ByTag converts text to the type named by tag. It never fails on the text
// itself: a number is read from the longest numeric prefix, and text with no
// such prefix becomes 0.
func ByTag(text string, tag TypeTag) (*models.Value, error) {
	switch tag {
	case TypeString:
		return models.NewString(text), nil
	case TypeNumber:
		f, ok := parseNumber(numberPrefix(text))
		if !ok {
			f = 0
		}
		return models.NewNumber(f), nil
	case TypeBoolean:
		return models.NewBool(lower.String(text) == "true"), nil
	case TypeNull:
		return models.NewNull(), nil
	case TypeObject:
		return models.NewObject(), nil
	case TypeArray:
		return models.NewArray(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(tag))
	}
}

// Infer guesses the type of raw text:
//
//	""              -> null
//	"true", "false" -> boolean
//	"null"          -> null
//	a finite number -> number
//	anything else   -> the text as a string
func Infer(text string) *models.Value {
	switch text {
	case "":
		return models.NewNull()
	case "true":
		return models.NewBool(true)
	case "false":
		return models.NewBool(false)
	case "null":
		return models.NewNull()
	}
	if f, ok := parseNumber(text); ok {
		return models.NewNumber(f)
	}
	return models.NewString(text)
}

// parseNumber accepts decimal and exponent notation with optional
// surrounding whitespace. Infinities and NaN are rejected.
func parseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" || !looksNumeric(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// looksNumeric keeps strconv from accepting spellings such as "inf",
// "0x1p4" or "1_000".
func looksNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E':
		default:
			return false
		}
	}
	return true
}

// numberPrefix returns the longest decimal number at the start of text after
// leading whitespace: an optional sign, digits with an optional fraction, and
// an exponent only when it has digits. It returns "" when there is none.
func numberPrefix(text string) string {
	s := strings.TrimLeft(text, " \t\n\r\f\v")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for ; k < len(s) && isDigit(s[k]); k++ {
		}
		if k > j {
			end = k
		}
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
