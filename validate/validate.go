// Package validate checks inbound command parameters before they reach the
// service. It rejects:
//   - missing fields
//   - coordinates outside [0,5]
//   - orientation symbols other than NORTH, EAST, SOUTH, WEST
//   - bodies that are not a JSON object of the expected shape
//
// Every failure is reported per field, with a location, a message and a
// machine-friendly type.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wricardo/toy-robot/game/engine"
	"github.com/wricardo/toy-robot/game/service"
)

// PlaceRequest mirrors the JSON body of a place command
type PlaceRequest struct {
	X    *int    `json:"x" validate:"required,gte=0,lte=5"`
	Y    *int    `json:"y" validate:"required,gte=0,lte=5"`
	Face *string `json:"face" validate:"required,oneof=NORTH EAST SOUTH WEST"`
}

// RotateRequest mirrors the JSON body of a rotate command
type RotateRequest struct {
	Direction *string `json:"direction" validate:"required,oneof=LEFT RIGHT"`
}

// FieldError describes one invalid field
type FieldError struct {
	Loc     []string `json:"loc"`
	Field   string   `json:"field"`
	Message string   `json:"msg"`
	Type    string   `json:"type"`
}

// Error collects every FieldError found in a request
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names rather than Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// DecodePlace reads and validates a place body
func DecodePlace(r io.Reader) (service.PlaceCommand, error) {
	var req PlaceRequest
	if err := decode(r, &req); err != nil {
		return service.PlaceCommand{}, err
	}
	return req.Command()
}

// Command validates the request and converts it to a service command
func (r PlaceRequest) Command() (service.PlaceCommand, error) {
	if err := check(r); err != nil {
		return service.PlaceCommand{}, err
	}
	face, err := engine.ParseOrientation(*r.Face)
	if err != nil {
		return service.PlaceCommand{}, fieldError("face", orientationMessage, "enum")
	}
	return service.PlaceCommand{X: *r.X, Y: *r.Y, Face: face}, nil
}

// DecodeRotate reads and validates a rotate body.
// Direction is matched in any letter case.
func DecodeRotate(r io.Reader) (engine.Direction, error) {
	var req RotateRequest
	if err := decode(r, &req); err != nil {
		return 0, err
	}
	if req.Direction != nil {
		d := strings.ToUpper(*req.Direction)
		req.Direction = &d
	}
	if err := check(req); err != nil {
		return 0, err
	}
	return engine.ParseDirection(*req.Direction)
}

const orientationMessage = "Input should be 'NORTH', 'EAST', 'SOUTH' or 'WEST'"

// check runs the struct tags and translates any failures
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, translate(fe))
	}
	return out
}

// translate maps a validator failure to its user-facing message
func translate(fe validator.FieldError) FieldError {
	f := FieldError{
		Loc:   []string{"body", fe.Field()},
		Field: fe.Field(),
	}

	switch fe.Tag() {
	case "required":
		f.Message, f.Type = "Field required", "missing"
	case "gte":
		f.Message, f.Type = "Input should be greater than or equal to "+fe.Param(), "greater_than_equal"
	case "lte":
		f.Message, f.Type = "Input should be less than or equal to "+fe.Param(), "less_than_equal"
	case "oneof":
		f.Type = "enum"
		if fe.Field() == "face" {
			f.Message = orientationMessage
		} else {
			f.Message = "Input should be 'LEFT' or 'RIGHT'"
		}
	default:
		f.Message, f.Type = fmt.Sprintf("failed %s validation", fe.Tag()), fe.Tag()
	}
	return f
}

// decode unmarshals a JSON object strictly enough to report type errors
func decode(r io.Reader, target any) error {
	if r == nil {
		return fieldError("body", "Field required", "missing")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	if err := json.Unmarshal(data, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return fieldError(typeErr.Field, "Input should be a valid "+kindName(typeErr.Type), typeErr.Type.Kind().String()+"_type")
		}
		return fieldError("body", "JSON decode error: "+err.Error(), "json_invalid")
	}
	return nil
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
		return "integer"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}

func fieldError(field, msg, typ string) *Error {
	return &Error{Fields: []FieldError{{
		Loc:     []string{"body", field},
		Field:   field,
		Message: msg,
		Type:    typ,
	}}}
}
