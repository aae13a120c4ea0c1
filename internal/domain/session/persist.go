package session

// PersistedSession is the typed projection of a Session that survives process
// restarts. The partition is enforced here rather than by an ad hoc
// allow-list:
//
//   - persisted: actor class, Authenticated, the OrgMember payload (the PIN
//     value never enters the Session type, so there is no secret to strip),
//     and StoreConfig.
//   - ephemeral: Verified, Verifying, and the PlatformAdmin / PartnerOperator
//     payloads. Privileged payloads are always re-derived from the credential
//     verifier so a revocation that happened while the terminal was offline
//     cannot resurrect privileges from disk.
//
// New optional fields must default safely when absent from an older record.
type PersistedSession struct {
	ActorClass    ActorClass   `json:"actor_class"`
	Authenticated bool         `json:"authenticated"`
	Member        *OrgMember   `json:"member,omitempty"`
	Store         *StoreConfig `json:"store,omitempty"`
}

// Persisted projects the session onto its persisted partition.
func (s *Session) Persisted() PersistedSession {
	p := PersistedSession{
		ActorClass:    s.ActorClass,
		Authenticated: s.Authenticated,
		Store:         s.Store,
	}
	if s.Member != nil {
		m := *s.Member
		p.Member = &m
	}
	// Privileged classes are never trusted from storage. Persist them as
	// authenticated-unknown so the next resolution re-derives the payload.
	if s.ActorClass == ActorPlatformAdmin || s.ActorClass == ActorPartnerOperator {
		p.Member = nil
	}
	return p
}

// Rehydrate builds a fresh-process Session from a persisted record. Verified
// and Verifying always start false: restored state is a hint, not a verdict,
// until ResolveSession has run.
func Rehydrate(p PersistedSession) Session {
	s := Session{
		ActorClass:    p.ActorClass,
		Authenticated: p.Authenticated,
		Store:         p.Store,
	}
	if p.ActorClass == "" {
		s.ActorClass = ActorNone
	}
	switch s.ActorClass {
	case ActorOrgMember, ActorOrgMemberPIN:
		if p.Member != nil {
			m := *p.Member
			s.Member = &m
		} else {
			// Older or corrupted record; fail closed.
			s.ClearActor()
		}
	case ActorPlatformAdmin, ActorPartnerOperator:
		// Payload is ephemeral and must be re-derived, so the restored record
		// cannot claim authentication. The class survives as a hint only.
		s.Authenticated = false
	case ActorNone:
		s.Authenticated = false
	}
	if s.Authenticated && s.ActorClass == ActorNone {
		s.Authenticated = false
	}
	return s
}
