package enums

type SwipeDirection string

const (
	SwipeDirectionLike SwipeDirection = "like"
	SwipeDirectionPass SwipeDirection = "pass"
)

func (d SwipeDirection) Valid() bool {
	switch d {
	case SwipeDirectionLike, SwipeDirectionPass:
		return true
	default:
		return false
	}
}
