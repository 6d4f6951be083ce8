package upload

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrMultipleMatches is returned by a Store lookup that expected at most
	// one record and found more.
	ErrMultipleMatches = errors.New("multiple records match")
)

// MissingColumnsError fails a whole upload before any row is processed.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("invalid CSV headers. Missing: %s", strings.Join(e.Missing, ", "))
}

type Category string

const (
	CategoryReferential Category = "referential"
	CategoryConsistency Category = "consistency"
	CategoryPolicy      Category = "policy"
	CategoryUniqueness  Category = "uniqueness"
	CategoryStorage     Category = "storage"
)

// Rejection is the single reason a row was not stored.
type Rejection struct {
	Row      int
	Category Category
	Reason   string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func reject(row int, category Category, format string, args ...any) *Rejection {
	return &Rejection{
		Row:      row,
		Category: category,
		Reason:   fmt.Sprintf("Row %d: ", row) + fmt.Sprintf(format, args...),
	}
}
