/*
Package prefs implements typed field access on top of a transactional
document store (in this case, on top of Bolt or an in-memory adapter).

We implement:

1. Field handles, addressing one logical field of the stored document with
get/set/delete/update/watch operations, each backed by exactly one store
snapshot or transaction.

2. Flat fields, stored as typed slots of a property bag (Bag): strings,
integers, floats, booleans, string sets, plus codec-backed custom values and
enums stored by name.

3. Nested fields, addressed by a caller-supplied projection/reconstruction
pair over an arbitrary structured document.

4. Batch transactions, combining any number of field reads and writes into a
single snapshot (Read), a single atomic commit (Write), or a single
read-your-writes transaction (Edit), plus a Watch stream of read scopes.

# Technical Details

**Stores.**
The store is a collaborator, not part of this package: anything satisfying
Store (whole-document snapshot, change stream, serialized atomic transact)
works. Reference adapters live in memstore and boltstore.

**Documents are values.**
Both shapes treat the document as an immutable value: accessors return updated
copies and never mutate in place. The flat Bag enforces this; nested documents
rely on the caller's reconstruction function doing the same.

**Decode failures degrade to defaults.**
A stored representation that cannot be turned back into the field's type
(wrong slot type, unknown enum name, codec failure) reads as the field's
default, never as an error. This is deliberate: corrupted or
forward-incompatible data degrades instead of crashing. The only trace is a
decode-failure metric.

**Store faults always surface.**
I/O and cancellation errors from the store are returned to the caller of the
operation in progress; nothing is retried or swallowed. A batch block that
returns an error (or panics) aborts the whole transaction with no partial
writes.

**Change granularity is the whole document.**
Watch streams re-emit on every committed change, not just changes to the
watched field. Downstream code may rely on this coarse refresh; do not filter.
*/
package prefs
