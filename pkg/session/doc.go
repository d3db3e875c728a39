/*
Package session multiplexes console sessions over one process.

A Manager owns one wayfinder.Router per session. The browser history of each
session lives in a ports.EntryStore, so a session can be rehydrated by any
replica: its state is rebuilt by parsing the stored location. Operations on a
session are serialized by a reference counted local lock and, optionally, a
ports.DistributedLocker.
*/
package session
