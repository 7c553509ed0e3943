/*
The sync package implements mpsync's core: the session that owns the
connection to a MicroPython board, and the engine that mirrors a local
folder onto the board's filesystem.

A Session holds at most one remote filesystem capability. Connect
establishes it with a bounded number of attempts, Disconnect tears it down
idempotently, and every filesystem operation fails with a typed error while
the session is disconnected. WithSession wraps the three into a scoped
contract that guarantees a disconnect attempt on every exit path.

The sync itself is a one-shot recursive push: folders are created on the
board (creation of an existing folder is benign), files are uploaded
unconditionally, and anything that isn't a folder or a regular file is
skipped. Nothing is ever deleted from the board during the walk — Delete
exists as a primitive for callers, not as part of the push.
*/
package sync
