// Package notifier delivers the bot's messages to the configured chat.
//
// # Transport
//
// Delivery goes through a transport.Sender (the Telegram adapter in
// production). Every attempt is logged and, when storage is enabled,
// appended to the audit trail.
//
// # History
//
// For operator visibility the service keeps a small in-memory history of
// recently delivered messages.
package notifier
