package middleware

import (
	tele "gopkg.in/telebot.v4"
)

// metricsContext wraps tele.Context so every outbound message bumps the
// per-update counters the summary log line reports.
type metricsContext struct{ tele.Context }

func (m metricsContext) record(err error, opts []interface{}) error {
	if err != nil {
		return err
	}
	count := 0
	if v, ok := m.Get("messages").(int); ok {
		count = v
	}
	m.Set("messages", count+1)
	if carriesKeyboard(opts) {
		m.Set("kb", true)
	}
	return nil
}

func carriesKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	return m.record(m.Context.Send(what, opts...), opts)
}

func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	return m.record(m.Context.Reply(what, opts...), opts)
}

func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	return m.record(m.Context.Edit(what, opts...), opts)
}

func (m metricsContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return m.record(m.Context.EditOrSend(what, opts...), opts)
}

// MessageMetricsMiddleware instruments the context to track sent message
// count and keyboard usage per update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set("messages", 0)
		c.Set("kb", false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters reads the message count and keyboard flag back from context.
func GetCounters(c tele.Context) (int, bool) {
	msgs, _ := c.Get("messages").(int)
	kb, _ := c.Get("kb").(bool)
	return msgs, kb
}
