// Package service contains the application use cases. It orchestrates domain
// objects and the store interfaces to fulfil the task and account features.
//
// Services receive their dependencies through constructor injection and own the
// transactional boundaries: operations touching several rows run inside
// store.RunInTransaction with transaction-bound stores obtained through WithTx.
//
// Every task operation takes the requesting user's ID as an explicit argument;
// nothing is read from ambient request state.
package service
