// Package board keeps the guestbook in memory: a small bounded list of
// messages with a one-message-per-address rule. Persistence happens
// only at process start and stop, through the account store.
package board

import (
	"net"
	"strings"
	"sync"

	"github.com/goliatone/go-homepage"
	"github.com/google/uuid"
)

const (
	// MessageLimit is the number of messages the board retains; the
	// oldest entry is evicted to make room.
	MessageLimit = 10
	// MaxFieldLength bounds the name and message, in bytes, after
	// trimming.
	MaxFieldLength = 1000
)

// Board is safe for concurrent use. One mutex covers the duplicate
// address check and the insert, so two concurrent submissions cannot
// both slip past the one-message-per-address rule.
type Board struct {
	mu       sync.Mutex
	messages []homepage.GuestbookMessage
}

// New returns a board seeded with previously persisted messages,
// oldest first. Excess seed messages are trimmed from the front.
func New(seed []homepage.GuestbookMessage) *Board {
	if len(seed) > MessageLimit {
		seed = seed[len(seed)-MessageLimit:]
	}
	b := &Board{}
	b.messages = append(b.messages, seed...)
	return b
}

// Messages returns a snapshot of the board, oldest first.
func (b *Board) Messages() []homepage.GuestbookMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]homepage.GuestbookMessage, len(b.messages))
	copy(out, b.messages)
	return out
}

// PostOutcome classifies a submission attempt.
type PostOutcome int

const (
	// Posted means the message is on the board.
	Posted PostOutcome = iota
	// RejectedInvalid means a field was empty or too long.
	RejectedInvalid
	// RejectedGreedy means the address already has a message up.
	RejectedGreedy
)

// Post validates and appends a message. Name and content are trimmed
// before the length check; a non-loopback address that already has a
// message on the board is turned away.
func (b *Board) Post(name, content, peerAddr string) PostOutcome {
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)

	if !validField(name) || !validField(content) {
		return RejectedInvalid
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !isLoopback(peerAddr) {
		for _, msg := range b.messages {
			if msg.PeerAddr == peerAddr {
				return RejectedGreedy
			}
		}
	}

	for len(b.messages)+1 > MessageLimit {
		b.messages = b.messages[1:]
	}

	b.messages = append(b.messages, homepage.GuestbookMessage{
		ID:       uuid.New(),
		Name:     name,
		Content:  content,
		PeerAddr: peerAddr,
	})
	return Posted
}

func validField(s string) bool {
	return len(s) >= 1 && len(s) <= MaxFieldLength
}

func isLoopback(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.IsLoopback()
}
