package lifecycle

import "github.com/LucaLeukert/toastd/internal/model"

// PromiseMessages selects the message shown for each phase of a Promise.
// The Func variants take precedence over the literal strings, which lets the
// resolved value (or error) shape the final message.
type PromiseMessages[T any] struct {
	Loading     string
	Success     string
	SuccessFunc func(T) string
	Error       string
	ErrorFunc   func(error) string
}

func (m PromiseMessages[T]) successMessage(v T) string {
	if m.SuccessFunc != nil {
		return m.SuccessFunc(v)
	}
	return m.Success
}

func (m PromiseMessages[T]) errorMessage(err error) string {
	if m.ErrorFunc != nil {
		return m.ErrorFunc(err)
	}
	if m.Error != "" {
		return m.Error
	}
	return err.Error()
}

// Promise shows a loading toast, runs work, and transitions the toast to
// success or error based on the outcome. The toast's duration switches from
// infinite back to the caller's (or configured) finite default so the final
// state auto-dismisses. The result of work is always propagated unchanged.
func Promise[T any](c *Coordinator, work func() (T, error), msgs PromiseMessages[T], opts model.Options) (T, error) {
	show := opts
	show.Variant = model.VariantLoading
	show.Message = msgs.Loading
	show.Duration = nil // loading phase never auto-dismisses
	id := c.Show(show)

	settled := opts.Duration
	if settled == nil {
		d := c.Config().Duration.Duration()
		settled = &d
	}

	v, err := work()
	if err != nil {
		msg := msgs.errorMessage(err)
		c.Transition(id, model.Update{
			Variant:  model.VariantError,
			Message:  &msg,
			Duration: settled,
		})
		return v, err
	}

	msg := msgs.successMessage(v)
	c.Transition(id, model.Update{
		Variant:  model.VariantSuccess,
		Message:  &msg,
		Duration: settled,
	})
	return v, nil
}
