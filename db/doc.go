// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the SQL access layer over the game server's database.

# Store

Store implements vote.Ledger, vote.Crediter and vote.Recorder plus the
account lookups used by the account handlers:

	store := db.NewStore(conn, cfg.DatabaseType)
	id, err := store.FindUserIDByName(ctx, "Alice")
	err = store.CreditVote(ctx, id, 3, 5000)

Balances are changed with relative updates (votepoints = votepoints + ?),
never read-modify-write, so concurrent credits for the same user do not
lose updates. CreditVote wraps both updates in one transaction.

Queries use ? placeholders; on PostgreSQL they are rebound to $1, $2, ...

# Tables

Owned by the game server (read and updated, never created):

  - users: id, name, email, password (bcrypt), pic, votepoints
  - accounts: userid, nxCredit

Owned by this service:

  - vote_pingback_log: one row per processed pingback event

# Schema Creation

CreateSchema creates vote_pingback_log:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS. Only needed when the vote
audit log is enabled.
*/
package db
