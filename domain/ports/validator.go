package ports

// GrantValidator validates a raw grants document before it is parsed.
type GrantValidator interface {
	// Validate returns an error describing every violation in data.
	Validate(data []byte) error
}
