package enums

import "strings"

type SwipeAction string

const (
	SwipeActionLike SwipeAction = "LIKE"
	SwipeActionPass SwipeAction = "PASS"
)

func ParseSwipeAction(value string) (SwipeAction, bool) {
	switch SwipeAction(strings.ToUpper(strings.TrimSpace(value))) {
	case SwipeActionLike:
		return SwipeActionLike, true
	case SwipeActionPass:
		return SwipeActionPass, true
	default:
		return "", false
	}
}
