// Package domain contains the core entities of the task manager (users and their
// ordered tasks) together with the validation rules and error taxonomy shared by
// every other layer. It has no dependencies on storage or transport code.
package domain
