package invitation

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/async"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/email"
)

// Notifier sends invitation emails without blocking the request that
// triggered them. Parameters are validated synchronously so the caller can
// surface a warning; the actual delivery runs on a detached context and a
// failure there is logged, never returned.
type Notifier struct {
	sender  email.EmailSender
	log     *slog.Logger
	baseURL string
}

// NewNotifier creates a Notifier. baseURL is the dashboard origin used to
// build acceptance links, without a trailing slash.
func NewNotifier(sender email.EmailSender, baseURL string, log *slog.Logger) *Notifier {
	if sender == nil {
		panic("invitation: email sender cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		sender:  sender,
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// InvitationCreated dispatches the invitation email. The returned error only
// reflects parameter validation; once dispatch starts the request is done
// waiting.
func (n *Notifier) InvitationCreated(ctx context.Context, inv Invitation, orgName, roleName string) error {
	link := fmt.Sprintf("%s/invitations/%s", n.baseURL, inv.Token)
	body := fmt.Sprintf(
		`<p>You have been invited to join <strong>%s</strong> as <strong>%s</strong>.</p>`,
		orgName, roleName,
	)
	if inv.Message != "" {
		body += fmt.Sprintf(`<blockquote>%s</blockquote>`, html.EscapeString(inv.Message))
	}
	body += fmt.Sprintf(
		`<p><a href="%s">Accept the invitation</a></p><p>The invitation expires on %s.</p>`,
		link, inv.ExpiresAt.Format("Jan 2, 2006 15:04 MST"),
	)
	params := email.SendEmailParams{
		SendTo:   inv.Email,
		Subject:  fmt.Sprintf("You have been invited to join %s", orgName),
		BodyHTML: body,
		Tag:      "invitation",
	}
	if err := params.Validate(); err != nil {
		return err
	}

	return n.dispatch(ctx, inv, params)
}

// InvitationAccepted dispatches the welcome email after a successful
// acceptance.
func (n *Notifier) InvitationAccepted(ctx context.Context, inv Invitation, orgName string) error {
	params := email.SendEmailParams{
		SendTo:  inv.Email,
		Subject: fmt.Sprintf("Welcome to %s", orgName),
		BodyHTML: fmt.Sprintf(
			`<p>Your membership in <strong>%s</strong> is now active.</p>`+
				`<p><a href="%s">Open the dashboard</a></p>`,
			orgName, n.baseURL,
		),
		Tag: "invitation-accepted",
	}
	if err := params.Validate(); err != nil {
		return err
	}
	return n.dispatch(ctx, inv, params)
}

func (n *Notifier) dispatch(ctx context.Context, inv Invitation, params email.SendEmailParams) error {
	// Detached from the request context: the send must survive the response.
	future := async.Run(context.WithoutCancel(ctx), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, n.sender.SendEmail(ctx, params)
	})
	go func() {
		if _, err := future.Await(); err != nil {
			n.log.Error("failed to send invitation email",
				slog.String("invitation_id", inv.ID.String()),
				slog.String("email", inv.Email),
				slog.String("tag", params.Tag),
				slog.Any("error", err),
			)
		}
	}()
	return nil
}
