package shoppinglist

import "errors"

var (
	ErrNotFound  = errors.New("shared list not found")
	ErrExpired   = errors.New("shared list expired")
	ErrEmptyList = errors.New("cannot share an empty list")
	ErrNotShared = errors.New("list is not shared")
)

// UserMessage turns an error from this package into short text fit for the
// page. Unknown errors get a generic message, never the raw error text.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "List not found or removed"
	case errors.Is(err, ErrExpired):
		return "This link expired after 90 days"
	case errors.Is(err, ErrEmptyList):
		return "Add ingredients before sharing the list"
	case errors.Is(err, ErrNotShared):
		return "This list is not shared yet"
	default:
		return "Something went wrong, please try again"
	}
}
