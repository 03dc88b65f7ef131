package enums

type ClosureResolution string

const (
	ClosureResolutionTemplate ClosureResolution = "template"
	ClosureResolutionCustom   ClosureResolution = "custom"
	ClosureResolutionArchive  ClosureResolution = "archive"
)

func (r ClosureResolution) Valid() bool {
	switch r {
	case ClosureResolutionTemplate, ClosureResolutionCustom, ClosureResolutionArchive:
		return true
	default:
		return false
	}
}
