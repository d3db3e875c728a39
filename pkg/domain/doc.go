/*
Package domain contains the core state model of the Wayfinder router.

It defines the nested state tree and the pure operations the router builds on:
deep merge with tombstones, pruning, flattening into dot-joined key paths and
diffing two trees. The package is free of I/O and persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Tree: the nested application state ("where the console currently is").
  - Entries: the persisted browser history of a console session.
  - ConnectionStatus: the enumerated status of the model connection.
  - Inspector: a typed view of the gui.inspector branch.
*/
package domain
