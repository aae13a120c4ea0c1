package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domain "github.com/flowpos/pos-api/internal/domain/session"
	genmocks "github.com/flowpos/pos-api/internal/mocks"
	mocks "github.com/flowpos/pos-api/internal/mocks/session"
)

// Strict-expectation variant of the zombie property: the exact provider call
// sequence is pinned down, including that SignOut happens exactly once.
func TestResolveSession_ZombieCallSequence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	verifier := genmocks.NewMockCredentialVerifier(ctrl)
	principal := domain.Principal{ID: "p-ghost", Email: "ghost@nowhere.test"}
	verifier.EXPECT().CurrentPrincipal(gomock.Any()).Return(principal, true, nil)
	verifier.EXPECT().VerifyPrincipal(gomock.Any()).Return(principal, nil)
	verifier.EXPECT().SignOut(gomock.Any()).Return(nil).Times(1)

	store := &mocks.MemorySessionStore{}
	arbiter := NewSessionArbiter(SessionArbiterOptions{
		Verifier: verifier,
		Classifier: NewClassifier(ClassifierOptions{
			Admins:    &mocks.FakeAdminDirectory{},
			Operators: &mocks.FakeOperatorDirectory{},
			Members:   &mocks.FakeMemberDirectory{},
			Timeout:   time.Second,
		}),
		Loader: NewContextLoader(ContextLoaderOptions{
			Tenants:  &mocks.FakeTenantDirectory{},
			Verifier: verifier,
			Timeout:  time.Second,
		}),
		Pins:        &mocks.FakePINVerifier{},
		Tenants:     &mocks.FakeTenantDirectory{},
		Store:       store,
		Permissions: NewStaticPermissions(),
	})

	err := arbiter.ResolveSession(context.Background())

	require.ErrorIs(t, err, domain.ErrZombieSession)
	s := arbiter.GetSession()
	assert.False(t, s.Authenticated)
	assert.True(t, s.Verified)
}

// A save failure on the session store must not block logout; the in-memory
// state still clears.
func TestEndSession_StoreFailureStillClears(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := genmocks.NewMockSessionStore(ctrl)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(assert.AnError).AnyTimes()

	verifier := &mocks.FakeVerifier{}
	arbiter := NewSessionArbiter(SessionArbiterOptions{
		Verifier: verifier,
		Classifier: NewClassifier(ClassifierOptions{
			Admins:    &mocks.FakeAdminDirectory{},
			Operators: &mocks.FakeOperatorDirectory{},
			Members:   &mocks.FakeMemberDirectory{},
		}),
		Loader: NewContextLoader(ContextLoaderOptions{
			Tenants:  &mocks.FakeTenantDirectory{},
			Verifier: verifier,
		}),
		Pins:        &mocks.FakePINVerifier{},
		Tenants:     &mocks.FakeTenantDirectory{},
		Store:       store,
		Permissions: NewStaticPermissions(),
	})

	require.NoError(t, arbiter.EndActorOnly(context.Background()))
	assert.False(t, arbiter.GetSession().Authenticated)
}
