package event

// Decorator wraps a typed handler to add cross-cutting behavior.
//
// Example:
//
//	func Counting[T any](n *atomic.Int64) event.Decorator[T] {
//	    return func(next event.HandlerFunc[T]) event.HandlerFunc[T] {
//	        return func(ctx context.Context, v T) error {
//	            n.Add(1)
//	            return next(ctx, v)
//	        }
//	    }
//	}
type Decorator[T any] func(HandlerFunc[T]) HandlerFunc[T]

// ApplyDecorators wraps fn with decorators. The first decorator is the outermost
// wrapper and runs first.
//
// Example:
//
//	handler := event.ApplyDecorators(
//	    printSuccess,
//	    event.Logging[ResultSuccess](logger),
//	    event.Timeout[ResultSuccess](time.Second),
//	)
//
// Execution order: Logging -> Timeout -> printSuccess
func ApplyDecorators[T any](fn HandlerFunc[T], decorators ...Decorator[T]) HandlerFunc[T] {
	for i := len(decorators) - 1; i >= 0; i-- {
		if decorators[i] != nil {
			fn = decorators[i](fn)
		}
	}
	return fn
}
