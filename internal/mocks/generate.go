// Package mocks holds generated and hand-written test doubles.
//
// Generated mocks use go.uber.org/mock (gomock). Regenerate after interface
// changes with:
//
//	go generate ./internal/mocks
//
// Hand-written doubles for the session ports live in internal/mocks/session;
// prefer those in service tests, and the generated mocks where expectation
// ordering matters.
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_verifier_mock.go github.com/flowpos/pos-api/internal/ports CredentialVerifier

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=pin_verifier_mock.go github.com/flowpos/pos-api/internal/ports PINVerifier

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/flowpos/pos-api/internal/ports SessionStore
