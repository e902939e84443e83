package mock

import "github.com/fwojciec/docchat"

var _ docchat.Converter = (*Converter)(nil)

// Converter is a mock implementation of docchat.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
