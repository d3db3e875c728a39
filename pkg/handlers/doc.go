// Package handlers provides the stock dispatch handlers of a console router:
// the model connection handler and the no-op registrations for keys whose
// rendering happens elsewhere.
//
//	router.Register(handlers.Standard()...)
//	router.Register(handlers.NewModelHandler(connector).Entry())
//
// LogConnector stands in for a control plane connection when there is none.
package handlers
