/*
Package scan implements the parallel search for filesystem magic sequences
hidden behind a fixed XOR mask or a short-keyed RC4 stream.

# How it works:

The target file's leading window is loaded into memory once and shared
read-only by a pool of workers. Each worker receives a disjoint shard of the
search space, applies the candidate key transform, and compares the result
against every signature in the catalog at every offset of its shard. Workers
accumulate hits locally and the scanner merges them at the join point, so no
shared state is mutated during the hot loop. The merged result set is sorted
by (key, offset) to make output deterministic regardless of scheduling.

Two modes are supported:

  - Single-key: one known key tested against every buffer offset. The buffer
    is partitioned by offset across workers.
  - Exhaustive: every key in a range tested against the whole buffer. The key
    range is partitioned across workers, since per-key work is uniform and an
    offset split would leave workers idle.

# Important note:

A signature hit only proves byte equality at one position. It does not prove
that a coherent filesystem lives there, and short magics will produce false
positives in large key spaces. Treat every match as a lead for manual
follow-up, not a verdict.
*/
package scan
