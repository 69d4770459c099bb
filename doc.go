// Package homepage is the data layer of a small personal website:
// ticket-gated account registration, argon2id password verification,
// capability flags, short links with hit logging, and the persisted
// guestbook and visitor counter state. All multi-statement invariants
// run inside single database transactions.
//
// HTTP concerns live in the subpackages: session management in
// session/, the login middleware in middleware/logingate/, route
// handlers in web/.
package homepage
