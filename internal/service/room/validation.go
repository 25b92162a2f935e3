package room

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	ActionPlay  = "play"
	ActionPause = "pause"
)

var TrackIdRule = []validation.Rule{
	validation.Required,
	validation.Length(1, 64),
	validation.Match(regexp.MustCompile("^[a-zA-Z0-9_-]+$")),
}

var RoomIdRule = []validation.Rule{
	validation.Required,
	validation.Match(regexp.MustCompile("^[a-zA-Z0-9]{8}$")),
}

var AdminNameRule = []validation.Rule{
	validation.Required,
	validation.Length(1, 32),
}

var PositionRule = []validation.Rule{
	validation.Min(0.0),
}

var ControlActionRule = []validation.Rule{
	validation.Required,
	validation.In(ActionPlay, ActionPause),
}

func validate(fields validation.Errors) error {
	if err := fields.Filter(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return nil
}
