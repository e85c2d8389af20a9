// Package authz holds the per-resource authorization rules as a closed set
// of pure predicates. The acting principal is always passed in explicitly
// (0 means anonymous); predicates never consult request state.
package authz

import "errors"

var (
	// ErrAuthRequired: an anonymous principal attempted a write.
	ErrAuthRequired = errors.New("authentication required")
	// ErrForbidden: an authenticated principal acted outside its rights.
	ErrForbidden = errors.New("forbidden")
	// ErrEditReceivedMessage: a receiver tried to change message content.
	ErrEditReceivedMessage = errors.New("you cannot edit the message you received")
)

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) write() bool { return a != ActionRead }

type Kind string

const (
	KindPost     Kind = "post"
	KindComment  Kind = "comment"
	KindLike     Kind = "like"
	KindFollower Kind = "follower"
	KindChat     Kind = "chat"
	KindMessage  Kind = "message"
	KindReport   Kind = "report"
	KindFeedback Kind = "feedback"
)

// Record carries the controlling identities of a loaded record. Owner is set
// for owner-controlled kinds; Sender/Receiver for chats and messages. For
// collection-level actions (create) the relevant fields describe the proposed
// record.
type Record struct {
	Owner    int64
	Sender   int64
	Receiver int64
}

type Predicate func(principal int64, action Action, rec Record) error

var table = map[Kind]Predicate{
	KindPost:     ownerOrReadOnly,
	KindComment:  ownerOrReadOnly,
	KindLike:     ownerOrReadOnly,
	KindFollower: ownerOrReadOnly,
	KindReport:   ownerOrReadOnly,
	KindFeedback: open,
	KindChat:     chatAccess,
	KindMessage:  chatAccess,
}

// Check evaluates the predicate registered for kind. Unknown kinds deny.
func Check(kind Kind, principal int64, action Action, rec Record) error {
	p, ok := table[kind]
	if !ok {
		return ErrForbidden
	}
	return p(principal, action, rec)
}

// ownerOrReadOnly: anyone may read, any authenticated principal may create,
// only the record's owner may update or delete.
func ownerOrReadOnly(principal int64, action Action, rec Record) error {
	if !action.write() {
		return nil
	}
	if principal == 0 {
		return ErrAuthRequired
	}
	if action == ActionCreate {
		return nil
	}
	if rec.Owner != principal {
		return ErrForbidden
	}
	return nil
}

// open: no restriction. Feedback is writable by anonymous visitors.
func open(int64, Action, Record) error { return nil }

// chatAccess: reads require the principal to be a participant; creates
// require the principal to be the declared sender; update and delete of the
// chat record itself belong to the original sender only. Both participants
// may read, which is why the sender-only rule is a separate branch rather
// than a reuse of the participant rule.
func chatAccess(principal int64, action Action, rec Record) error {
	if principal == 0 {
		return ErrAuthRequired
	}
	participant := rec.Sender == principal || rec.Receiver == principal
	switch action {
	case ActionRead:
		if !participant {
			return ErrForbidden
		}
	case ActionCreate:
		if rec.Sender != principal {
			return ErrForbidden
		}
	case ActionUpdate, ActionDelete:
		if rec.Sender != principal {
			return ErrForbidden
		}
	}
	return nil
}

// CanReadChat reports whether principal may see the chat at all. Used to
// scope list/retrieve queries before any object-level rule runs.
func CanReadChat(principal, sender, receiver int64) bool {
	return principal != 0 && (sender == principal || receiver == principal)
}

// CheckMessageUpdate applies the asymmetric message-edit rule. The caller
// guarantees principal is a participant of the message's chat. The sender may
// change content; the other participant may only flip the seen flag and is
// rejected when the submitted content differs from the stored one.
func CheckMessageUpdate(principal, msgSender int64, contentChanged bool) error {
	if principal == msgSender {
		return nil
	}
	if contentChanged {
		return ErrEditReceivedMessage
	}
	return nil
}
