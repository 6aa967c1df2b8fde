// Package api implements the HTTP handlers of the task manager: registration and
// login, the per-user task endpoints (list, create, retrieve, update, delete,
// reorder, upcoming) and the profile, onboarding and email verification endpoints.
//
// Handlers decode and validate requests, call the service layer with the
// authenticated user's ID taken from the request context, and map errors to
// status codes with HandleAPIError. Raw errors never reach the client.
package api
