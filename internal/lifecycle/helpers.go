package lifecycle

import "github.com/LucaLeukert/toastd/internal/model"

// Success shows a success toast with the given message.
func (c *Coordinator) Success(message string, opts *model.Options) string {
	return c.showVariant(model.VariantSuccess, message, opts)
}

// Error shows an error toast with the given message.
func (c *Coordinator) Error(message string, opts *model.Options) string {
	return c.showVariant(model.VariantError, message, opts)
}

// Info shows an info toast with the given message.
func (c *Coordinator) Info(message string, opts *model.Options) string {
	return c.showVariant(model.VariantInfo, message, opts)
}

// Loading shows a loading toast with the given message. Loading toasts
// default to an infinite duration.
func (c *Coordinator) Loading(message string, opts *model.Options) string {
	return c.showVariant(model.VariantLoading, message, opts)
}

func (c *Coordinator) showVariant(v model.Variant, message string, opts *model.Options) string {
	var o model.Options
	if opts != nil {
		o = *opts
	}
	o.Variant = v
	o.Message = message
	return c.Show(o)
}
