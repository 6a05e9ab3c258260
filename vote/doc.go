// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote turns vote-site pingbacks into reward credits.

# Wire Shapes

A pingback arrives either as a single form-encoded vote or as a JSON batch.
Both decode into the same Notification:

	n := vote.DecodeForm(r.PostForm, opts)
	n, err := vote.DecodeBatch(body, opts)

In the batch shape every entry of Common is a list of one-key fragments:

	{"pingbackkey": "...", "Common": [[{"ip": "1.2.3.4"}, {"success": "0"}, {"pb_name": "Alice"}]]}

The fragments of one entry are merged before the fields are read. The result
indicator is normalized to its absolute value, so "-1" and "1" are both
failures and "0" and "-0" are both successes.

# Reward Decision

Processor walks every event through the same terminal states:

	no username      -> OutcomeNoUsername   (no store access)
	result != 0      -> OutcomeFailed       (no store access)
	unknown user     -> OutcomeUserNotFound
	store error      -> OutcomeErrored
	otherwise        -> OutcomeRewarded     (points and currency credited)

Events are independent; one failing event never stops the rest of a batch.
Replaying a notification credits it again: there is no deduplication.

# Ledger

The Ledger interface is the only way the processor touches storage. A
ledger that also implements Crediter gets both increments in one
transaction; otherwise they run as two statements and a failure between
them leaves the points credited without the currency.
*/
package vote
