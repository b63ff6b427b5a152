package mock

import "github.com/fwojciec/fieldscrape"

var _ fieldscrape.Converter = (*Converter)(nil)

// Converter is a mock implementation of fieldscrape.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
