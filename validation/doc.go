// Package validation validates configuration structs using struct tags.
//
//	type Pipeline struct {
//	    SegmentMinutes int `mapstructure:"segment_minutes" validate:"gt=0"`
//	}
//	err := validation.Validate(cfg)
//
// Field names in messages come from the mapstructure tag, then the json tag,
// then the snake_cased Go field name.
package validation
