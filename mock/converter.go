package mock

import "github.com/fwojciec/recipefeed"

var _ recipefeed.TextConverter = (*TextConverter)(nil)

// TextConverter is a mock implementation of recipefeed.TextConverter.
type TextConverter struct {
	ConvertFn func(html string) (string, error)
}

func (c *TextConverter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
