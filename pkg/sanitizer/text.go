package sanitizer

// Text is the result of a sanitization step.
type Text struct {
	// Value is the cleaned string.
	Value string
	// Altered reports whether cleaning changed the input.
	Altered bool
}

// String returns the cleaned value.
func (t Text) String() string {
	return t.Value
}

// IsEmpty reports whether nothing survived cleaning.
func (t Text) IsEmpty() bool {
	return t.Value == ""
}

func result(original, cleaned string) Text {
	return Text{Value: cleaned, Altered: cleaned != original}
}

// Apply runs value through transforms in order.
func Apply[T any](value T, transforms ...func(T) T) T {
	out := value
	for _, transform := range transforms {
		out = transform(out)
	}
	return out
}

// Compose builds a reusable pipeline out of transforms.
func Compose[T any](transforms ...func(T) T) func(T) T {
	return func(value T) T {
		return Apply(value, transforms...)
	}
}
