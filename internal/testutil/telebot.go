package testutil

import (
	"fmt"

	tele "gopkg.in/telebot.v3"
)

// FakeContext is a telebot context that records replies instead of calling
// the Telegram API. Methods the handlers do not use panic through the nil
// embedded interface.
type FakeContext struct {
	tele.Context

	User *tele.User
	Txt  string
	Cb   *tele.Callback

	Sent      []string
	Edited    []string
	Responses []*tele.CallbackResponse
	Markups   []*tele.ReplyMarkup

	store map[string]interface{}
}

var _ tele.Context = (*FakeContext)(nil)

// NewTextContext fakes a text message from telegramID
func NewTextContext(telegramID int64, text string) *FakeContext {
	return &FakeContext{User: &tele.User{ID: telegramID, Username: "tester"}, Txt: text}
}

// NewCallbackContext fakes an inline button press carrying raw data
func NewCallbackContext(telegramID int64, data string) *FakeContext {
	return &FakeContext{
		User: &tele.User{ID: telegramID, Username: "tester"},
		Cb:   &tele.Callback{ID: "cb", Data: data},
	}
}

func (c *FakeContext) Sender() *tele.User       { return c.User }
func (c *FakeContext) Text() string             { return c.Txt }
func (c *FakeContext) Callback() *tele.Callback { return c.Cb }

func (c *FakeContext) Send(what interface{}, opts ...interface{}) error {
	c.Sent = append(c.Sent, fmt.Sprint(what))
	c.recordMarkup(opts)
	return nil
}

func (c *FakeContext) Edit(what interface{}, opts ...interface{}) error {
	c.Edited = append(c.Edited, fmt.Sprint(what))
	c.recordMarkup(opts)
	return nil
}

func (c *FakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		c.Responses = append(c.Responses, nil)
		return nil
	}
	c.Responses = append(c.Responses, resp...)
	return nil
}

func (c *FakeContext) Get(key string) interface{} {
	return c.store[key]
}

func (c *FakeContext) Set(key string, val interface{}) {
	if c.store == nil {
		c.store = make(map[string]interface{})
	}
	c.store[key] = val
}

// Last returns the most recent sent or edited text
func (c *FakeContext) Last() string {
	if c.Cb != nil && len(c.Edited) > 0 {
		return c.Edited[len(c.Edited)-1]
	}
	if len(c.Sent) == 0 {
		return ""
	}
	return c.Sent[len(c.Sent)-1]
}

// LastAlert returns the text of the most recent callback response
func (c *FakeContext) LastAlert() string {
	for i := len(c.Responses) - 1; i >= 0; i-- {
		if c.Responses[i] != nil {
			return c.Responses[i].Text
		}
	}
	return ""
}

func (c *FakeContext) recordMarkup(opts []interface{}) {
	for _, o := range opts {
		if m, ok := o.(*tele.ReplyMarkup); ok {
			c.Markups = append(c.Markups, m)
		}
	}
}
