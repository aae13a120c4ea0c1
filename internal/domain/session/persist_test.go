package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersisted_StripsPrivilegedPayloads(t *testing.T) {
	s := Session{
		ActorClass:    ActorPlatformAdmin,
		PrincipalID:   "p-1",
		Authenticated: true,
		Verified:      true,
		Admin:         &PlatformAdmin{ID: "a-1", Email: "root@flowpos.test"},
		Store:         &StoreConfig{OrgID: "org-1", Slug: "acme"},
	}

	p := s.Persisted()

	assert.Equal(t, ActorPlatformAdmin, p.ActorClass)
	assert.True(t, p.Authenticated)
	assert.Nil(t, p.Member)
	require.NotNil(t, p.Store)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "root@flowpos.test",
		"privileged payloads never reach storage")
}

func TestPersisted_KeepsMemberPayload(t *testing.T) {
	s := Session{
		ActorClass:    ActorOrgMemberPIN,
		Authenticated: true,
		Member:        &OrgMember{ID: "m-1", DisplayName: "Barista"},
	}

	p := s.Persisted()

	require.NotNil(t, p.Member)
	assert.Equal(t, "m-1", p.Member.ID)
}

func TestRehydrate_MemberRestores(t *testing.T) {
	s := Rehydrate(PersistedSession{
		ActorClass:    ActorOrgMember,
		Authenticated: true,
		Member:        &OrgMember{ID: "m-1"},
		Store:         &StoreConfig{Slug: "acme"},
	})

	assert.True(t, s.Authenticated)
	assert.Equal(t, ActorOrgMember, s.ActorClass)
	require.NotNil(t, s.Member)
	require.NotNil(t, s.Store)
	assert.False(t, s.Verified, "restored state is a hint, not a verdict")
	assert.False(t, s.Verifying)
}

func TestRehydrate_PrivilegedClassNeverAuthenticatedFromDisk(t *testing.T) {
	for _, class := range []ActorClass{ActorPlatformAdmin, ActorPartnerOperator} {
		s := Rehydrate(PersistedSession{ActorClass: class, Authenticated: true})
		assert.False(t, s.Authenticated, "class %s must re-derive its payload", class)
		assert.Equal(t, class, s.ActorClass)
		assert.Equal(t, 0, s.ActorCount())
	}
}

func TestRehydrate_MemberWithoutPayloadFailsClosed(t *testing.T) {
	s := Rehydrate(PersistedSession{ActorClass: ActorOrgMember, Authenticated: true})

	assert.False(t, s.Authenticated)
	assert.Equal(t, ActorNone, s.ActorClass)
}

func TestRehydrate_EmptyRecordDefaultsSafely(t *testing.T) {
	// A record written by an older build may miss fields entirely.
	var p PersistedSession
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))

	s := Rehydrate(p)

	assert.Equal(t, ActorNone, s.ActorClass)
	assert.False(t, s.Authenticated)
	assert.Nil(t, s.Store)
}

func TestClearActor_PreservesStoreAndLifecycle(t *testing.T) {
	s := Session{
		ActorClass:    ActorOrgMemberPIN,
		Authenticated: true,
		Verified:      true,
		Member:        &OrgMember{ID: "m-1"},
		Store:         &StoreConfig{Slug: "acme"},
	}

	s.ClearActor()

	assert.Equal(t, ActorNone, s.ActorClass)
	assert.False(t, s.Authenticated)
	assert.Equal(t, 0, s.ActorCount())
	assert.True(t, s.Verified)
	require.NotNil(t, s.Store)
}
