package field

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Built-in modifiers. Each builder appends one unit of validation or
// transformation logic to the field's chain. Modifiers treat nil as
// "not present" and pass it through untouched; presence is enforced
// separately with Required.

// Required rejects nil values.
func (d *Descriptor) Required() *Descriptor {
	return d.Validate(func(ctx Context) error {
		if ctx.Value() == nil {
			return fmt.Errorf("value at '%s' should not be nil", ctx.Keypath())
		}
		return nil
	})
}

// Min clamps numeric values to the given lower bound. Values below
// min transform into min; other values pass through unchanged.
func (d *Descriptor) Min(min float64) *Descriptor {
	if !d.Info.Numeric() {
		d.err(fmt.Errorf("field %q: min requires a numeric field", d.Name))
		return d
	}
	return d.Transform(func(ctx Context) (any, error) {
		v := ctx.Value()
		if v == nil {
			return nil, nil
		}
		switch n := v.(type) {
		case int:
			if float64(n) < min {
				return int(min), nil
			}
		case int64:
			if float64(n) < min {
				return int64(min), nil
			}
		case float64:
			if n < min {
				return min, nil
			}
		case decimal.Decimal:
			if m := decimal.NewFromFloat(min); n.LessThan(m) {
				return m, nil
			}
		}
		return v, nil
	})
}

// Max rejects numeric values above the given upper bound.
func (d *Descriptor) Max(max float64) *Descriptor {
	if !d.Info.Numeric() {
		d.err(fmt.Errorf("field %q: max requires a numeric field", d.Name))
		return d
	}
	return d.Validate(func(ctx Context) error {
		n, ok := asFloat(ctx.Value())
		if ok && n > max {
			return fmt.Errorf("value '%v' at '%s' should not be greater than %v", ctx.Value(), ctx.Keypath(), max)
		}
		return nil
	})
}

// MapElems transforms every element of a list value with fn. Non-list
// values pass through unchanged.
func (d *Descriptor) MapElems(fn func(any) any) *Descriptor {
	return d.Transform(func(ctx Context) (any, error) {
		list, ok := ctx.Value().([]any)
		if !ok {
			return ctx.Value(), nil
		}
		mapped := make([]any, len(list))
		for i, v := range list {
			mapped[i] = fn(v)
		}
		return mapped, nil
	})
}

// MinLen rejects strings and lists shorter than n.
func (d *Descriptor) MinLen(n int) *Descriptor {
	return d.Validate(func(ctx Context) error {
		if l, ok := lengthOf(ctx.Value()); ok && l < n {
			return fmt.Errorf("length of value '%v' at '%s' should not be less than %d", ctx.Value(), ctx.Keypath(), n)
		}
		return nil
	})
}

// MaxLen rejects strings and lists longer than n.
func (d *Descriptor) MaxLen(n int) *Descriptor {
	return d.Validate(func(ctx Context) error {
		if l, ok := lengthOf(ctx.Value()); ok && l > n {
			return fmt.Errorf("length of value '%v' at '%s' should not be greater than %d", ctx.Value(), ctx.Keypath(), n)
		}
		return nil
	})
}

// Len rejects strings and lists whose length is not exactly n.
func (d *Descriptor) Len(n int) *Descriptor {
	return d.Validate(func(ctx Context) error {
		if l, ok := lengthOf(ctx.Value()); ok && l != n {
			return fmt.Errorf("length of value '%v' at '%s' should be %d", ctx.Value(), ctx.Keypath(), n)
		}
		return nil
	})
}

// Match rejects string values not matching the given pattern. The
// pattern is compiled once at declaration time; a bad pattern is a
// builder error surfaced at registration.
func (d *Descriptor) Match(pattern string) *Descriptor {
	re, err := regexp.Compile(pattern)
	if err != nil {
		d.err(fmt.Errorf("field %q: invalid match pattern: %w", d.Name, err))
		return d
	}
	return d.Validate(func(ctx Context) error {
		s, ok := ctx.Value().(string)
		if ok && !re.MatchString(s) {
			return fmt.Errorf("value '%v' at '%s' should match %s", ctx.Value(), ctx.Keypath(), pattern)
		}
		return nil
	})
}

// OneOf rejects string values outside the given candidates.
func (d *Descriptor) OneOf(candidates ...string) *Descriptor {
	return d.Validate(func(ctx Context) error {
		s, ok := ctx.Value().(string)
		if !ok {
			return nil
		}
		for _, c := range candidates {
			if s == c {
				return nil
			}
		}
		return fmt.Errorf("value '%v' at '%s' should be one of %v", ctx.Value(), ctx.Keypath(), candidates)
	})
}

func lengthOf(v any) (int, bool) {
	switch v := v.(type) {
	case string:
		return len(v), true
	case []any:
		return len(v), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	}
	return 0, false
}
