package homepage

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. Rows are created only by redeeming a
// registration ticket; there is no delete path.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string `bun:"name,notnull,unique" json:"name,omitempty"`
	PasswordHash  string `bun:"password_hash,notnull" json:"-"`
}

// Permissions is the capability row for a user. A missing row means no
// capabilities. Admin implies every other capability.
type Permissions struct {
	bun.BaseModel `bun:"table:user_permissions,alias:perm"`
	UserID        int64 `bun:"user_id,pk" json:"user_id,omitempty"`
	Admin         bool  `bun:"admin,notnull" json:"admin,omitempty"`
	Short         bool  `bun:"short,notnull" json:"short,omitempty"`
}

// IsAdmin reports whether the user holds the admin capability.
func (p Permissions) IsAdmin() bool {
	return p.Admin
}

// IsShort reports whether the user may manage short links.
func (p Permissions) IsShort() bool {
	return p.Admin || p.Short
}

// RegistrationTicket reserves a username until the ticket is redeemed.
// The ticket value is 128 random bytes, base64 encoded.
type RegistrationTicket struct {
	bun.BaseModel `bun:"table:registration_tickets,alias:tkt"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string `bun:"name,notnull,unique" json:"name,omitempty"`
	Ticket        string `bun:"ticket,notnull,unique" json:"-"`
}

// ShortLink maps a short code to a target URL, owned by one user.
type ShortLink struct {
	bun.BaseModel `bun:"table:short_links,alias:lnk"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        int64  `bun:"user_id,notnull" json:"user_id,omitempty"`
	URL           string `bun:"url,notnull" json:"url,omitempty"`
	Short         string `bun:"short,notnull,unique" json:"short,omitempty"`
}

// ShortLinkStat is an append-only hit log; one row per resolution.
type ShortLinkStat struct {
	bun.BaseModel `bun:"table:short_link_stats,alias:st"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	LinkID        int64  `bun:"link_id,notnull" json:"link_id,omitempty"`
	PeerAddr      string `bun:"peer_addr,notnull" json:"peer_addr,omitempty"`
}

// GuestbookMessage is one persisted board entry. The live board is kept in
// memory (board package); rows only exist between process runs.
type GuestbookMessage struct {
	bun.BaseModel `bun:"table:guestbook_messages,alias:msg"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Name          string    `bun:"name,notnull" json:"name,omitempty"`
	Content       string    `bun:"content,notnull" json:"content,omitempty"`
	PeerAddr      string    `bun:"peer_addr,notnull" json:"peer_addr,omitempty"`
}

// SiteCounters holds the single visitor counter row (id 0).
type SiteCounters struct {
	bun.BaseModel `bun:"table:site_counters,alias:cnt"`
	ID            int64 `bun:"id,pk" json:"id"`
	Visitors      int64 `bun:"visitors,notnull" json:"visitors"`
}

// UserInfo is the resolved identity handed to request handlers. It is
// request-scoped and never persisted.
type UserInfo struct {
	ID    int64
	Name  string
	Perms Permissions
}
