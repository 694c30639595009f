package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a long-running loop that returns when ctx is cancelled.
type Worker interface {
	Run(ctx context.Context) error
}
