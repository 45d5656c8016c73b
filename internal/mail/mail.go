package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/Skotchmaster/storefront/internal/mykafka"
)

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Dispatcher hands outgoing mail to the mail outbox topic; a separate sender
// consumes it.
type Dispatcher struct {
	pub  EventPublisher
	from string
}

func NewDispatcher(pub EventPublisher, from string) *Dispatcher {
	return &Dispatcher{pub: pub, from: from}
}

func (d *Dispatcher) Send(ctx context.Context, to, subject, html string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("mail: empty recipient")
	}
	msg := Message{
		From:    d.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	}
	if err := d.pub.PublishEvent(ctx, mykafka.TopicMailOutbox, to, msg); err != nil {
		return fmt.Errorf("mail: enqueue: %w", err)
	}
	return nil
}

var resetTmpl = template.Must(template.New("reset").Parse(`<div class="email" style="border: 1px solid black; padding: 20px; font-family: sans-serif; line-height: 2; font-size: 20px;">
  <h2>Hello There!</h2>
  <p>Your Password Reset Token is here!</p>
  <p><a href="{{.Link}}">Click Here to Reset</a></p>
  <p>The link stays valid for one hour.</p>
</div>`))

func ResetEmail(link string) (string, error) {
	var buf bytes.Buffer
	if err := resetTmpl.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return "", fmt.Errorf("mail: render reset email: %w", err)
	}
	return buf.String(), nil
}
