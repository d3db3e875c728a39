/*
Package ports defines the driven ports (interfaces) of the Wayfinder router.

These interfaces decouple the router from the environment it runs in, allowing
the same state machinery to drive a real browser, a server-side session or a
test double.

# Key Interfaces

  - BrowserHistory: the browser's location and session history (push, replace, pop events).
  - EntryStore: persists the history entries of a console session.
  - DistributedLocker: distributed locking for concurrent session access.
  - ModelConnector: connects the console to a model when the URL selects one.
*/
package ports
