package ports

import "context"

// ModelConnector opens the connection to a model of the control plane.
type ModelConnector interface {
	// Connect starts connecting to the model identified by uuid. done is
	// called once the connection is ready or has failed.
	Connect(ctx context.Context, uuid string, done func(error))

	// Disconnect closes the current model connection, if any.
	Disconnect(ctx context.Context) error
}
