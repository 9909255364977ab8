/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package graph serves the GraphQL API of the social network.
//
// An Executor validates a request (including a limit on the depth of the operation), then executes
// it against the store with a fresh set of batch loaders (see Loaders). Loads requested while
// resolving one level of the response are collected and dispatched together so that a list of N
// users needs one fetch of posts and one fetch of profiles, not N of each.
//
// Writes are performed by a Mutator. Subscriptions are kept symmetric: when user A subscribes to
// user B, B is appended to A's subscription list and A to B's. Deleting a user removes its profile
// and posts and drops its id from every subscription list. When a write of such multi-record
// mutation fails, the writes already made are undone and the mutation reports a storage error.
package graph
