// Package homework holds the review-status domain: the shape check for API
// payloads, the status-to-message translation and the change detector that
// decides whether the latest submission is worth a notification.
//
// # Identity
//
// A submission is identified by its display name (homework_name). The review
// API has no stable id in the payload consumed here, so a renamed assignment
// looks like a new one.
package homework
