package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type FieldKind int

const (
	KindString FieldKind = iota
	KindFloat
	KindBool
	KindUUID
)

// Field is one inline-editable attribute: the JSON key the form sends, the
// column it writes and the validation tag its value must pass.
type Field struct {
	Name   string
	Column string
	Kind   FieldKind
	Tag    string
}

// FieldSchema turns a loosely typed PATCH body into a validated column map.
// Keys that are not in the schema are ignored.
type FieldSchema struct {
	fields   map[string]Field
	validate *validator.Validate
}

func NewFieldSchema(v *validator.Validate, fields ...Field) *FieldSchema {
	s := &FieldSchema{fields: make(map[string]Field, len(fields)), validate: v}
	for _, f := range fields {
		s.fields[f.Name] = f
	}
	return s
}

func (s *FieldSchema) Apply(values map[string]any) (map[string]any, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]any)
	for _, name := range names {
		f, ok := s.fields[name]
		if !ok {
			continue
		}
		v, err := s.convert(f, values[name])
		if err != nil {
			return nil, err
		}
		out[f.Column] = v
	}
	if len(out) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "no editable fields in body")
	}
	return out, nil
}

func (s *FieldSchema) convert(f Field, raw any) (any, error) {
	invalid := func(reason string) error {
		return &FieldError{Field: f.Name, Reason: reason}
	}
	if raw == nil {
		return nil, invalid("must not be null")
	}

	switch f.Kind {
	case KindString:
		str, ok := raw.(string)
		if !ok {
			return nil, invalid("must be a string")
		}
		str = strings.TrimSpace(str)
		if err := s.check(f, str); err != nil {
			return nil, err
		}
		return str, nil

	case KindFloat:
		var num float64
		switch v := raw.(type) {
		case float64:
			num = v
		case int:
			num = float64(v)
		case int64:
			num = float64(v)
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, invalid("must be a number")
			}
			num = parsed
		default:
			return nil, invalid("must be a number")
		}
		if err := s.check(f, num); err != nil {
			return nil, err
		}
		return num, nil

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, invalid("must be a boolean")
		}
		return b, nil

	case KindUUID:
		str, ok := raw.(string)
		if !ok {
			return nil, invalid("must be an id")
		}
		if err := s.validate.Var(str, "required,uuid"); err != nil {
			return nil, invalid("must be an id")
		}
		return uuid.MustParse(str), nil
	}
	return nil, fmt.Errorf("field %s has unknown kind %d", f.Name, f.Kind)
}

func (s *FieldSchema) check(f Field, v any) error {
	if f.Tag == "" {
		return nil
	}
	if err := s.validate.Var(v, f.Tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &FieldError{Field: f.Name, Reason: "failed " + verrs[0].Tag()}
		}
		return &FieldError{Field: f.Name, Reason: err.Error()}
	}
	return nil
}

func CourseFields(v *validator.Validate) *FieldSchema {
	return NewFieldSchema(v,
		Field{Name: "title", Column: "title", Kind: KindString, Tag: "required,max=255"},
		Field{Name: "description", Column: "description", Kind: KindString, Tag: "required"},
		Field{Name: "imageUrl", Column: "image_url", Kind: KindString, Tag: "required,url"},
		Field{Name: "price", Column: "price", Kind: KindFloat, Tag: "price"},
		Field{Name: "categoryId", Column: "category_id", Kind: KindUUID},
	)
}

func ChapterFields(v *validator.Validate) *FieldSchema {
	return NewFieldSchema(v,
		Field{Name: "title", Column: "title", Kind: KindString, Tag: "required,max=255"},
		Field{Name: "description", Column: "description", Kind: KindString, Tag: "required"},
		Field{Name: "videoUrl", Column: "video_url", Kind: KindString, Tag: "required,url"},
		Field{Name: "isFree", Column: "is_free", Kind: KindBool},
	)
}
