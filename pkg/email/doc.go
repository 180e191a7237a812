// Package email abstracts transactional email delivery behind the
// EmailSender interface. Production uses the Postmark client; development and
// tests use DevSender, which logs instead of sending.
package email
